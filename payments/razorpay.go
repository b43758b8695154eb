package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"TeleClinic/models"
)

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates orders that the client completes with Razorpay Checkout.
type RazorpayGateway struct {
	orders        orderCreator
	keyID         string
	webhookSecret string
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order, keyID: keyID, webhookSecret: webhookSecret}
}

func (g *RazorpayGateway) Name() string { return models.ProviderRazorpay }

// CreateCheckout ignores ctx; the Razorpay client has no context-aware API.
func (g *RazorpayGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	order, err := g.orders.Create(map[string]interface{}{
		"amount":   minorUnits(req.Amount),
		"currency": strings.ToUpper(req.Currency),
		"receipt":  req.PaymentID,
		"notes": map[string]interface{}{
			"appointment_id": req.AppointmentID,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}
	id, _ := order["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order response has no id")
	}
	return &Checkout{ProviderRef: id, PublicKey: g.keyID}, nil
}

type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseWebhook checks X-Razorpay-Signature and maps order.paid, payment.captured and
// payment.failed onto the order id used as the provider reference.
func (g *RazorpayGateway) ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error) {
	signature := header.Get("X-Razorpay-Signature")
	if signature == "" || !utils.VerifyWebhookSignature(string(payload), signature, g.webhookSecret) {
		return nil, ErrBadSignature
	}

	var evt razorpayEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("decode razorpay event: %w", err)
	}

	orderID := evt.Payload.Order.Entity.ID
	if orderID == "" {
		orderID = evt.Payload.Payment.Entity.OrderID
	}

	out := &WebhookEvent{EventID: header.Get("X-Razorpay-Event-Id"), ProviderRef: orderID}
	switch evt.Event {
	case "order.paid", "payment.captured":
		out.Paid = true
	case "payment.failed":
	default:
		return nil, ErrIgnoredEvent
	}
	if out.ProviderRef == "" {
		return nil, fmt.Errorf("razorpay event %s has no order id", evt.Event)
	}
	if out.EventID == "" {
		out.EventID = evt.Event + ":" + evt.Payload.Payment.Entity.ID
	}
	return out, nil
}
