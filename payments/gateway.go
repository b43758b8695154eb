package payments

import (
	"context"
	"errors"
	"math"
	"net/http"

	"TeleClinic/config"
	"TeleClinic/models"
)

var (
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrBadSignature    = errors.New("invalid webhook signature")
	ErrIgnoredEvent    = errors.New("webhook event does not change payment state")
)

// CheckoutRequest describes what is being paid for.
type CheckoutRequest struct {
	PaymentID     string
	AppointmentID string
	Amount        float64
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// Checkout is the gateway side of a created payment.
type Checkout struct {
	ProviderRef string
	RedirectURL string
	PublicKey   string
}

// WebhookEvent is a verified provider notification reduced to what the ledger needs.
type WebhookEvent struct {
	EventID     string
	ProviderRef string
	Paid        bool
}

// Gateway creates checkouts and verifies webhooks for one provider.
type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	ParseWebhook(payload []byte, header http.Header) (*WebhookEvent, error)
}

// NewGateways builds every gateway that has credentials configured.
func NewGateways(cfg *config.AppConfig) map[string]Gateway {
	gateways := map[string]Gateway{}
	if cfg.StripeSecretKey != "" {
		gateways[models.ProviderStripe] = NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateways[models.ProviderRazorpay] = NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	}
	return gateways
}

// minorUnits converts an amount to the smallest currency unit (paise, cents).
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
