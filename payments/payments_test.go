package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"TeleClinic/config"
	"TeleClinic/models"
)

type fakeSessions struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1"}, nil
}

func TestStripeCreateCheckout(t *testing.T) {
	sessions := &fakeSessions{}
	g := &StripeGateway{sessions: sessions}

	out, err := g.CreateCheckout(context.Background(), CheckoutRequest{
		PaymentID: "p1", AppointmentID: "a1", Amount: 499.5, Currency: "INR", Description: "Consultation",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", out.ProviderRef)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_test_1", out.RedirectURL)

	item := sessions.params.LineItems[0]
	assert.Equal(t, int64(49950), *item.PriceData.UnitAmount)
	assert.Equal(t, "inr", *item.PriceData.Currency)
	assert.Equal(t, "a1", sessions.params.Metadata["appointment_id"])
}

func TestStripeCreateCheckoutError(t *testing.T) {
	g := &StripeGateway{sessions: &fakeSessions{err: errors.New("card network down")}}
	_, err := g.CreateCheckout(context.Background(), CheckoutRequest{Amount: 1, Currency: "INR"})
	assert.Error(t, err)
}

func signedStripeHeader(t *testing.T, payload []byte, secret string) http.Header {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)
	return h
}

func TestStripeParseWebhook(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_test_1","object":"checkout.session","payment_status":"paid"}}}`)

	evt, err := g.ParseWebhook(payload, signedStripeHeader(t, payload, "whsec_test"))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.EventID)
	assert.Equal(t, "cs_test_1", evt.ProviderRef)
	assert.True(t, evt.Paid)

	_, err = g.ParseWebhook(payload, signedStripeHeader(t, payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestStripeParseWebhookIgnoresOtherEvents(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}
	payload := []byte(`{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{}}}`)

	_, err := g.ParseWebhook(payload, signedStripeHeader(t, payload, "whsec_test"))
	assert.ErrorIs(t, err, ErrIgnoredEvent)
}

func TestStripeAsyncPaymentOutcome(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}

	pending := []byte(`{"id":"evt_3","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_test_2","object":"checkout.session","payment_status":"unpaid"}}}`)
	_, err := g.ParseWebhook(pending, signedStripeHeader(t, pending, "whsec_test"))
	assert.ErrorIs(t, err, ErrIgnoredEvent)

	succeeded := []byte(`{"id":"evt_4","object":"event","type":"checkout.session.async_payment_succeeded",
		"data":{"object":{"id":"cs_test_2","object":"checkout.session","payment_status":"paid"}}}`)
	evt, err := g.ParseWebhook(succeeded, signedStripeHeader(t, succeeded, "whsec_test"))
	require.NoError(t, err)
	assert.True(t, evt.Paid)

	failed := []byte(`{"id":"evt_5","object":"event","type":"checkout.session.async_payment_failed",
		"data":{"object":{"id":"cs_test_2","object":"checkout.session","payment_status":"unpaid"}}}`)
	evt, err = g.ParseWebhook(failed, signedStripeHeader(t, failed, "whsec_test"))
	require.NoError(t, err)
	assert.False(t, evt.Paid)
}

type fakeOrders struct {
	data  map[string]interface{}
	reply map[string]interface{}
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.data = data
	return f.reply, nil
}

func TestRazorpayCreateCheckout(t *testing.T) {
	orders := &fakeOrders{reply: map[string]interface{}{"id": "order_1"}}
	g := &RazorpayGateway{orders: orders, keyID: "rzp_test_key"}

	out, err := g.CreateCheckout(context.Background(), CheckoutRequest{PaymentID: "p1", AppointmentID: "a1", Amount: 500, Currency: "inr"})
	require.NoError(t, err)
	assert.Equal(t, "order_1", out.ProviderRef)
	assert.Equal(t, "rzp_test_key", out.PublicKey)
	assert.Equal(t, int64(50000), orders.data["amount"])
	assert.Equal(t, "INR", orders.data["currency"])

	orders.reply = map[string]interface{}{}
	_, err = g.CreateCheckout(context.Background(), CheckoutRequest{Amount: 1, Currency: "INR"})
	assert.Error(t, err)
}

func razorpaySignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayParseWebhook(t *testing.T) {
	g := &RazorpayGateway{webhookSecret: "rzp_secret"}
	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)

	h := http.Header{}
	h.Set("X-Razorpay-Signature", razorpaySignature(payload, "rzp_secret"))
	h.Set("X-Razorpay-Event-Id", "evt_rzp_1")

	evt, err := g.ParseWebhook(payload, h)
	require.NoError(t, err)
	assert.Equal(t, "order_1", evt.ProviderRef)
	assert.Equal(t, "evt_rzp_1", evt.EventID)
	assert.True(t, evt.Paid)

	h.Set("X-Razorpay-Signature", razorpaySignature(payload, "wrong"))
	_, err = g.ParseWebhook(payload, h)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestRazorpayPaymentFailed(t *testing.T) {
	g := &RazorpayGateway{webhookSecret: "rzp_secret"}
	payload := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_2","order_id":"order_2"}}}}`)
	h := http.Header{}
	h.Set("X-Razorpay-Signature", razorpaySignature(payload, "rzp_secret"))

	evt, err := g.ParseWebhook(payload, h)
	require.NoError(t, err)
	assert.False(t, evt.Paid)
	assert.Equal(t, "payment.failed:pay_2", evt.EventID)
}

func TestNewGatewaysSkipsUnconfigured(t *testing.T) {
	gateways := NewGateways(&config.AppConfig{StripeSecretKey: "sk_test"})
	assert.Contains(t, gateways, models.ProviderStripe)
	assert.NotContains(t, gateways, models.ProviderRazorpay)
}
