package repositories

import (
	"context"
	"errors"
	"fmt"

	"TeleClinic/apperrors"
	"TeleClinic/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByProviderRef(ctx context.Context, provider, ref string) (*models.Payment, error)
	// MarkPaid settles the payment and its appointment together. It reports false when
	// the payment was already settled.
	MarkPaid(ctx context.Context, paymentID, eventID string) (*models.Payment, bool, error)
	MarkFailed(ctx context.Context, paymentID, eventID string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByProviderRef(ctx context.Context, provider, ref string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "provider = ? AND provider_ref = ?", provider, ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) MarkPaid(ctx context.Context, paymentID, eventID string) (*models.Payment, bool, error) {
	var payment models.Payment
	settled := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment.Status == models.PaymentStatusPaid {
			return nil
		}

		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"status":   models.PaymentStatusPaid,
			"event_id": eventID,
		}).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		res := tx.Model(&models.Appointment{}).Where("id = ?", payment.AppointmentID).Updates(map[string]interface{}{
			"payment_state":    models.PaymentPaid,
			"payment_provider": payment.Provider,
			"payment_ref":      payment.ProviderRef,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to mark appointment paid: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrAppointmentNotFound
		}
		payment.Status = models.PaymentStatusPaid
		payment.EventID = eventID
		settled = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &payment, settled, nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, paymentID, eventID string) error {
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentStatusCreated).
		Updates(map[string]interface{}{"status": models.PaymentStatusFailed, "event_id": eventID}).Error
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}
