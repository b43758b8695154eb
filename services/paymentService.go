package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/cache"
	"TeleClinic/models"
	"TeleClinic/payments"
	"TeleClinic/repositories"
	"TeleClinic/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Providers retry webhooks for up to three days.
const webhookEventTTL = 72 * time.Hour

type PaymentService struct {
	appointments repositories.AppointmentRepository
	payments     repositories.PaymentRepository
	doctors      repositories.DoctorRepository
	gateways     map[string]payments.Gateway
	cache        *cache.Cache
	currency     string
	frontendURL  string
	log          *zap.Logger
}

func NewPaymentService(
	appointments repositories.AppointmentRepository,
	paymentRepo repositories.PaymentRepository,
	doctors repositories.DoctorRepository,
	gateways map[string]payments.Gateway,
	cache *cache.Cache,
	currency, frontendURL string,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		appointments: appointments,
		payments:     paymentRepo,
		doctors:      doctors,
		gateways:     gateways,
		cache:        cache,
		currency:     currency,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		log:          log,
	}
}

// Checkout opens a payment with the chosen gateway for one of the actor's appointments.
// Gateway failures are returned as dependency errors.
func (s *PaymentService) Checkout(ctx context.Context, actor Actor, appointmentID, provider string) (*models.CheckoutSession, error) {
	if err := utils.ValidateProvider(provider); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	gateway, ok := s.gateways[provider]
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidInput, fmt.Sprintf("%s payments are not enabled", provider))
	}

	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actor.ID {
		return nil, apperrors.ErrAppointmentNotFound
	}
	if appt.Cancelled {
		return nil, apperrors.ErrAlreadyCancelled
	}
	if appt.PaymentState == models.PaymentPaid {
		return nil, apperrors.ErrAlreadyPaid
	}

	description := "Consultation"
	if doctor, err := s.doctors.GetByID(ctx, appt.DoctorID); err == nil {
		description = fmt.Sprintf("Consultation with %s on %s at %s", doctor.Name, appt.SlotDate, appt.SlotTime)
	}

	paymentID := uuid.New().String()
	returnURL := fmt.Sprintf("%s/my-appointments?appointmentId=%s", s.frontendURL, appt.ID)
	checkout, err := gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		PaymentID:     paymentID,
		AppointmentID: appt.ID,
		Amount:        appt.Amount,
		Currency:      s.currency,
		Description:   description,
		SuccessURL:    returnURL + "&payment=success",
		CancelURL:     returnURL + "&payment=cancelled",
	})
	if err != nil {
		return nil, apperrors.NewDependencyError(apperrors.CodePaymentProvider, "payment provider request failed", err)
	}

	payment := &models.Payment{
		ID:            paymentID,
		AppointmentID: appt.ID,
		Provider:      provider,
		ProviderRef:   checkout.ProviderRef,
		Amount:        appt.Amount,
		Currency:      s.currency,
		Status:        models.PaymentStatusCreated,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &models.CheckoutSession{
		PaymentID:   payment.ID,
		Provider:    provider,
		ProviderRef: checkout.ProviderRef,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		RedirectURL: checkout.RedirectURL,
		PublicKey:   checkout.PublicKey,
	}, nil
}

// HandleWebhook verifies a provider callback and applies it. Events that do not change
// payment state are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, header http.Header) error {
	gateway, ok := s.gateways[provider]
	if !ok {
		return apperrors.NewValidationError(apperrors.CodeInvalidInput, "unknown payment provider")
	}

	event, err := gateway.ParseWebhook(payload, header)
	switch {
	case errors.Is(err, payments.ErrIgnoredEvent):
		return nil
	case errors.Is(err, payments.ErrBadSignature):
		return apperrors.ErrInvalidSignature
	case err != nil:
		return apperrors.NewInvalidInputError(err)
	}
	return s.Confirm(ctx, provider, *event)
}

// Confirm flips the payment and its appointment to paid, or records a failure.
// Redelivered events are dropped by event ID; the ledger state makes a second
// settlement a no-op if the redis key was lost.
func (s *PaymentService) Confirm(ctx context.Context, provider string, event payments.WebhookEvent) error {
	key := fmt.Sprintf("payment_event:%s:%s", provider, event.EventID)
	first, err := s.cache.SetOnce(ctx, key, webhookEventTTL)
	if err != nil {
		s.log.Warn("failed to record webhook event", zap.String("event_id", event.EventID), zap.Error(err))
		first = true
	}
	if !first {
		s.log.Info("duplicate webhook event ignored", zap.String("provider", provider), zap.String("event_id", event.EventID))
		return nil
	}

	err = s.apply(ctx, provider, event)
	if err != nil {
		// Let the provider's retry through.
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to release webhook event key", zap.String("event_id", event.EventID), zap.Error(delErr))
		}
	}
	return err
}

func (s *PaymentService) apply(ctx context.Context, provider string, event payments.WebhookEvent) error {
	payment, err := s.payments.GetByProviderRef(ctx, provider, event.ProviderRef)
	if err != nil {
		return err
	}

	if !event.Paid {
		s.log.Info("payment failed", zap.String("payment_id", payment.ID), zap.String("appointment_id", payment.AppointmentID))
		return s.payments.MarkFailed(ctx, payment.ID, event.EventID)
	}

	_, settled, err := s.payments.MarkPaid(ctx, payment.ID, event.EventID)
	if err != nil {
		return err
	}
	if settled {
		s.log.Info("appointment paid",
			zap.String("payment_id", payment.ID),
			zap.String("appointment_id", payment.AppointmentID),
			zap.String("provider", provider),
		)
	}
	return nil
}
