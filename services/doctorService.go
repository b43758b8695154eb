package services

import (
	"context"
	"strings"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/schedule"
	"TeleClinic/utils"
)

type DoctorService struct {
	repository repositories.DoctorRepository
	generator  schedule.Generator
	loc        *time.Location
	now        func() time.Time
}

func NewDoctorService(repository repositories.DoctorRepository, generator schedule.Generator, loc *time.Location) *DoctorService {
	return &DoctorService{repository: repository, generator: generator, loc: loc, now: time.Now}
}

func (s *DoctorService) Create(ctx context.Context, in models.DoctorInput) (*models.Doctor, error) {
	if err := utils.ValidateDoctorInput(in); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}

	doctor := &models.Doctor{
		Available:       true,
		Status:          models.StatusUnavailable,
		StatusUpdatedAt: s.now(),
		SlotsBooked:     models.SlotsBooked{},
	}
	applyDoctorInput(doctor, in, s.loc)
	if in.Available != nil {
		doctor.Available = *in.Available
	}

	if err := s.repository.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *DoctorService) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	return s.repository.GetByID(ctx, id)
}

// List returns the doctors patients can book, optionally narrowed to one speciality.
func (s *DoctorService) List(ctx context.Context, speciality string) ([]models.Doctor, error) {
	return s.repository.GetAll(ctx, repositories.DoctorFilter{OnlyAvailable: true, Speciality: speciality})
}

// ListAll includes unavailable doctors. Admin only.
func (s *DoctorService) ListAll(ctx context.Context) ([]models.Doctor, error) {
	return s.repository.GetAll(ctx, repositories.DoctorFilter{})
}

func (s *DoctorService) Update(ctx context.Context, id string, in models.DoctorInput) (*models.Doctor, error) {
	if err := utils.ValidateDoctorInput(in); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}

	doctor, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDoctorInput(doctor, in, s.loc)
	if err := s.repository.UpdateProfile(ctx, doctor); err != nil {
		return nil, err
	}

	if in.Available != nil && *in.Available != doctor.Available {
		if err := s.repository.SetAvailability(ctx, id, *in.Available); err != nil {
			return nil, err
		}
		doctor.Available = *in.Available
	}
	return doctor, nil
}

func (s *DoctorService) SetAvailability(ctx context.Context, id string, available bool) error {
	return s.repository.SetAvailability(ctx, id, available)
}

func (s *DoctorService) UpdateStatus(ctx context.Context, id, status string) (*models.DoctorStatusView, error) {
	if err := utils.ValidateStatus(status); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	at := s.now()
	if err := s.repository.UpdateStatus(ctx, id, status, at); err != nil {
		return nil, err
	}
	doctor, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return statusView(doctor), nil
}

// Status is the live status clients poll while viewing an appointment.
func (s *DoctorService) Status(ctx context.Context, id string) (*models.DoctorStatusView, error) {
	doctor, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return statusView(doctor), nil
}

func (s *DoctorService) Delete(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}

// WeekSlots is the rolling slot board for a doctor, computed in the doctor's timezone.
func (s *DoctorService) WeekSlots(ctx context.Context, id string) ([]schedule.DaySlots, error) {
	doctor, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now().In(doctor.Location(s.loc))
	return s.generator.Week(now, doctor.SlotsBooked), nil
}

// DaySlots returns the currently free slots of one date. It is served after a lost
// booking race, so it reads past the doctor cache.
func (s *DoctorService) DaySlots(ctx context.Context, id, dateKey string) (*schedule.DaySlots, error) {
	doctor, err := s.repository.GetFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	loc := doctor.Location(s.loc)
	day, err := schedule.ParseDateKey(dateKey, loc)
	if err != nil {
		return nil, apperrors.NewInvalidSlotError(err.Error())
	}
	slots := s.generator.Day(s.now().In(loc), day, doctor.SlotsBooked)
	return &slots, nil
}

func applyDoctorInput(doctor *models.Doctor, in models.DoctorInput, fallback *time.Location) {
	doctor.Name = strings.TrimSpace(in.Name)
	doctor.Email = strings.ToLower(strings.TrimSpace(in.Email))
	doctor.Phone = in.Phone
	doctor.Speciality = strings.TrimSpace(in.Speciality)
	doctor.Degree = in.Degree
	doctor.Experience = in.Experience
	doctor.About = in.About
	doctor.Fee = in.Fee
	doctor.Address = in.Address
	doctor.ImageURL = in.ImageURL
	doctor.Timezone = in.Timezone
	if doctor.Timezone == "" {
		doctor.Timezone = fallback.String()
	}
}

func statusView(doctor *models.Doctor) *models.DoctorStatusView {
	return &models.DoctorStatusView{
		DoctorID:  doctor.ID,
		Status:    doctor.Status,
		Available: doctor.Available,
		UpdatedAt: doctor.StatusUpdatedAt,
	}
}
