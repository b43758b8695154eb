package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/cache"
	"TeleClinic/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	PatientCacheExpiry = 7 * 24 * time.Hour
)

type PatientRepository interface {
	Upsert(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
}

type patientRepository struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *zap.Logger
}

func NewPatientRepository(db *gorm.DB, cache *cache.Cache, log *zap.Logger) PatientRepository {
	return &patientRepository{db: db, cache: cache, log: log}
}

// Upsert creates the profile on first save and overwrites the editable fields after.
func (r *patientRepository) Upsert(ctx context.Context, patient *models.Patient) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "gender", "date_of_birth", "updated_at"}),
	}).Create(patient).Error
	if err != nil {
		return fmt.Errorf("failed to save patient: %w", err)
	}
	if err := r.cache.Delete(ctx, patientCacheKey(patient.ID)); err != nil {
		r.log.Warn("failed to delete patient cache", zap.String("patient_id", patient.ID), zap.Error(err))
	}
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := patientCacheKey(id)
	var patient models.Patient
	if ok, err := r.cache.GetJSON(ctx, cacheKey, &patient); err != nil {
		r.log.Warn("failed to get patient from cache", zap.String("patient_id", id), zap.Error(err))
	} else if ok {
		return &patient, nil
	}

	err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if err := r.cache.SetJSON(ctx, cacheKey, patient, PatientCacheExpiry); err != nil {
		r.log.Warn("failed to set patient in cache", zap.String("patient_id", id), zap.Error(err))
	}
	return &patient, nil
}

func patientCacheKey(id string) string {
	return fmt.Sprintf("patient_cache:%s", id)
}
