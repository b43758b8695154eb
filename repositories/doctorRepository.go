package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/cache"
	"TeleClinic/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Doctor rows change on every booking and status update; writes invalidate, the
	// expiry only bounds staleness when an invalidation is lost.
	DoctorCacheExpiry  = 5 * time.Minute
	doctorsCachePrefix = "doctors_cache"
)

// DoctorFilter narrows the doctor listing.
type DoctorFilter struct {
	OnlyAvailable bool
	Speciality    string
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	// GetFresh reads the doctor from the database, bypassing the cache.
	GetFresh(ctx context.Context, id string) (*models.Doctor, error)
	GetAll(ctx context.Context, filter DoctorFilter) ([]models.Doctor, error)
	UpdateProfile(ctx context.Context, doctor *models.Doctor) error
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type doctorRepository struct {
	db    *gorm.DB
	cache *cache.Cache
	log   *zap.Logger
}

func NewDoctorRepository(db *gorm.DB, cache *cache.Cache, log *zap.Logger) DoctorRepository {
	return &doctorRepository{db: db, cache: cache, log: log}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	if doctor.SlotsBooked == nil {
		doctor.SlotsBooked = models.SlotsBooked{}
	}

	if err := r.db.WithContext(ctx).Create(doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDoctorExists
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	invalidateDoctor(ctx, r.cache, r.log, doctor.ID)
	return nil
}

func (r *doctorRepository) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := doctorCacheKey(id)
	var doctor models.Doctor
	if ok, err := r.cache.GetJSON(ctx, cacheKey, &doctor); err != nil {
		r.log.Warn("failed to get doctor from cache", zap.String("doctor_id", id), zap.Error(err))
	} else if ok {
		return &doctor, nil
	}

	fresh, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, cacheKey, fresh, DoctorCacheExpiry); err != nil {
		r.log.Warn("failed to set doctor in cache", zap.String("doctor_id", id), zap.Error(err))
	}
	return fresh, nil
}

func (r *doctorRepository) GetFresh(ctx context.Context, id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.load(ctx, id)
}

func (r *doctorRepository) load(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetAll(ctx context.Context, filter DoctorFilter) ([]models.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	speciality := strings.ToLower(strings.TrimSpace(filter.Speciality))
	cacheKey := fmt.Sprintf("%s:%t:%s", doctorsCachePrefix, filter.OnlyAvailable, speciality)
	var doctors []models.Doctor
	if ok, err := r.cache.GetJSON(ctx, cacheKey, &doctors); err != nil {
		r.log.Warn("failed to get doctors from cache", zap.Error(err))
	} else if ok {
		return doctors, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Doctor{})
	if filter.OnlyAvailable {
		query = query.Where("available = ?", true)
	}
	if speciality != "" {
		query = query.Where("LOWER(speciality) = ?", speciality)
	}
	if err := query.Order("name ASC").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to get all doctors: %w", err)
	}

	if err := r.cache.SetJSON(ctx, cacheKey, doctors, DoctorCacheExpiry); err != nil {
		r.log.Warn("failed to set doctors in cache", zap.Error(err))
	}
	return doctors, nil
}

// UpdateProfile writes the editable profile columns. slots_booked, status and
// availability have their own write paths and are never touched here.
func (r *doctorRepository) UpdateProfile(ctx context.Context, doctor *models.Doctor) error {
	res := r.db.WithContext(ctx).Model(&models.Doctor{ID: doctor.ID}).
		Select("name", "email", "phone", "speciality", "degree", "experience", "about", "fee", "address", "image_url", "timezone").
		Updates(doctor)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDoctorExists
		}
		return fmt.Errorf("failed to update doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrDoctorNotFound
	}
	invalidateDoctor(ctx, r.cache, r.log, doctor.ID)
	return nil
}

func (r *doctorRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	res := r.db.WithContext(ctx).Model(&models.Doctor{ID: id}).Update("available", available)
	if res.Error != nil {
		return fmt.Errorf("failed to update doctor availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrDoctorNotFound
	}
	invalidateDoctor(ctx, r.cache, r.log, id)
	return nil
}

func (r *doctorRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Doctor{ID: id}).Updates(map[string]interface{}{
		"status":            status,
		"status_updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update doctor status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrDoctorNotFound
	}
	invalidateDoctor(ctx, r.cache, r.log, id)
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Doctor{}, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return apperrors.ErrDoctorInUse
		}
		return fmt.Errorf("failed to delete doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrDoctorNotFound
	}
	invalidateDoctor(ctx, r.cache, r.log, id)
	return nil
}

func doctorCacheKey(id string) string {
	return fmt.Sprintf("doctor_cache:%s", id)
}

// invalidateDoctor drops cached copies of a doctor after a committed write. Failures are
// logged; the write already happened and the short expiry bounds the staleness.
func invalidateDoctor(ctx context.Context, c *cache.Cache, log *zap.Logger, id string) {
	if err := c.Delete(ctx, doctorCacheKey(id)); err != nil {
		log.Warn("failed to delete doctor cache", zap.String("doctor_id", id), zap.Error(err))
	}
	if err := c.DeleteAll(ctx, doctorsCachePrefix+"*"); err != nil {
		log.Warn("failed to delete doctors cache", zap.Error(err))
	}
}
