package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/cache"
	"TeleClinic/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reserveSlotSQL appends the time to slots_booked[date] only when the doctor is
// available and the time is absent. The UPDATE takes the doctor's row lock, so
// concurrent reservations for the same doctor are applied one at a time and the
// second one sees the first one's time.
const reserveSlotSQL = `UPDATE doctors
SET slots_booked = jsonb_set(
		COALESCE(slots_booked, '{}'::jsonb),
		ARRAY[?::text],
		COALESCE(slots_booked -> ?::text, '[]'::jsonb) || to_jsonb(?::text),
		true),
	updated_at = NOW()
WHERE id = ?
AND available = true
AND NOT (COALESCE(slots_booked -> ?::text, '[]'::jsonb) @> jsonb_build_array(?::text))`

// releaseSlotSQL removes the time from slots_booked[date] and drops the date key once
// its list is empty.
const releaseSlotSQL = `UPDATE doctors
SET slots_booked = CASE
		WHEN jsonb_array_length(COALESCE(slots_booked -> ?::text, '[]'::jsonb) - ?::text) = 0
			THEN COALESCE(slots_booked, '{}'::jsonb) - ?::text
		ELSE jsonb_set(slots_booked, ARRAY[?::text], (slots_booked -> ?::text) - ?::text)
	END,
	updated_at = NOW()
WHERE id = ?`

const nextTokenSQL = `SELECT COALESCE(MAX(token_number), 0) + 1 FROM appointments WHERE doctor_id = ? AND slot_date = ?`

type AppointmentRepository interface {
	// Book reserves appt's slot and inserts appt in one transaction, assigning its
	// ID and token number.
	Book(ctx context.Context, appt *models.Appointment) error
	Cancel(ctx context.Context, id string, at time.Time) (*models.Appointment, error)
	Complete(ctx context.Context, id string, at time.Time) (*models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListDoctorDay(ctx context.Context, doctorID, dateKey string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string, limit int) ([]models.Appointment, error)
}

type appointmentRepository struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *zap.Logger
}

func NewAppointmentRepository(db *gorm.DB, cache *cache.Cache, log *zap.Logger) AppointmentRepository {
	return &appointmentRepository{db: db, cache: cache, log: log}
}

func (r *appointmentRepository) Book(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(reserveSlotSQL,
			appt.SlotDate, appt.SlotDate, appt.SlotTime,
			appt.DoctorID,
			appt.SlotDate, appt.SlotTime,
		)
		if res.Error != nil {
			return fmt.Errorf("failed to reserve slot: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return explainRejectedReservation(tx, appt.DoctorID)
		}

		var token int
		if err := tx.Raw(nextTokenSQL, appt.DoctorID, appt.SlotDate).Scan(&token).Error; err != nil {
			return fmt.Errorf("failed to assign token number: %w", err)
		}
		appt.TokenNumber = token

		if err := tx.Omit(clause.Associations).Create(appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrSlotUnavailable
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateDoctor(ctx, r.cache, r.log, appt.DoctorID)
	return nil
}

// explainRejectedReservation works out which precondition the conditional update failed.
func explainRejectedReservation(tx *gorm.DB, doctorID string) error {
	var doctor models.Doctor
	err := tx.Select("id", "available").First(&doctor, "id = ?", doctorID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrDoctorNotFound
	case err != nil:
		return fmt.Errorf("failed to read doctor: %w", err)
	case !doctor.Available:
		return apperrors.ErrDoctorUnavailable
	default:
		return apperrors.ErrSlotUnavailable
	}
}

func (r *appointmentRepository) Cancel(ctx context.Context, id string, at time.Time) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAppointment(tx, id, &appt); err != nil {
			return err
		}
		if appt.Cancelled {
			return apperrors.ErrAlreadyCancelled
		}
		if appt.Completed {
			return apperrors.ErrAlreadyCompleted
		}

		if err := tx.Model(&appt).Updates(map[string]interface{}{
			"cancelled":    true,
			"cancelled_at": at,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}
		appt.Cancelled = true
		appt.CancelledAt = &at

		if err := tx.Exec(releaseSlotSQL,
			appt.SlotDate, appt.SlotTime,
			appt.SlotDate,
			appt.SlotDate, appt.SlotDate, appt.SlotTime,
			appt.DoctorID,
		).Error; err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateDoctor(ctx, r.cache, r.log, appt.DoctorID)
	return &appt, nil
}

// Complete marks a consultation done. The slot stays consumed.
func (r *appointmentRepository) Complete(ctx context.Context, id string, at time.Time) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAppointment(tx, id, &appt); err != nil {
			return err
		}
		if appt.Cancelled {
			return apperrors.ErrAlreadyCancelled
		}
		if appt.Completed {
			return apperrors.ErrAlreadyCompleted
		}

		if err := tx.Model(&appt).Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		}).Error; err != nil {
			return fmt.Errorf("failed to complete appointment: %w", err)
		}
		appt.Completed = true
		appt.CompletedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func lockAppointment(tx *gorm.DB, id string, appt *models.Appointment) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "speciality", "image_url", "address", "fee", "status", "available")
		}).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appts, nil
}

// ListDoctorDay returns the doctor's non-cancelled appointments on dateKey in token order.
func (r *appointmentRepository) ListDoctorDay(ctx context.Context, doctorID, dateKey string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND slot_date = ? AND cancelled = ?", doctorID, dateKey, false).
		Order("token_number ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor day: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID string, limit int) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appts, nil
}
