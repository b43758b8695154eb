package services

import (
	"context"
	"strings"

	"TeleClinic/apperrors"
	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/utils"
)

type PatientService struct {
	repository repositories.PatientRepository
}

func NewPatientService(repository repositories.PatientRepository) *PatientService {
	return &PatientService{repository: repository}
}

// Save creates or replaces the profile of the patient identified by the access token.
func (s *PatientService) Save(ctx context.Context, id string, in models.PatientInput) (*models.Patient, error) {
	if err := utils.ValidatePatientInput(in); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	patient := &models.Patient{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       in.Phone,
		Gender:      in.Gender,
		DateOfBirth: in.DateOfBirth,
	}
	if err := s.repository.Upsert(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	return s.repository.GetByID(ctx, id)
}
