package utils

import (
	"errors"
	"strings"
	"time"

	"TeleClinic/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var ErrInvalidTimezone = errors.New("must be an IANA timezone such as Asia/Kolkata")

var genders = []interface{}{"Male", "Female", "Other"}

// ValidateDoctorInput validates an admin's doctor profile payload.
func ValidateDoctorInput(in models.DoctorInput) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Phone, is.E164),
		validation.Field(&in.Speciality, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.Fee, validation.Min(0.0)),
		validation.Field(&in.ImageURL, is.URL),
		validation.Field(&in.Timezone, validation.By(validateTimezone)),
	)
}

// ValidatePatientInput validates a patient's own profile.
func ValidatePatientInput(in models.PatientInput) error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.Phone, is.E164),
		validation.Field(&in.Gender, validation.In(genders...)),
		validation.Field(&in.DateOfBirth, validation.Date("2006-01-02")),
	)
}

// ValidateProxy validates the optional booking-for-someone-else details.
func ValidateProxy(p *models.ProxyPatient) error {
	if p == nil {
		return nil
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&p.Age, validation.Min(0), validation.Max(130)),
		validation.Field(&p.Gender, validation.In(genders...)),
		validation.Field(&p.Relation, validation.Length(0, 50)),
		validation.Field(&p.Phone, is.E164),
	)
}

// ValidateStatus checks a doctor live status value.
func ValidateStatus(status string) error {
	return validation.Validate(status, validation.Required, validation.In(models.DoctorStatuses...))
}

// ValidateProvider checks a checkout provider name.
func ValidateProvider(provider string) error {
	return validation.Validate(provider, validation.Required, validation.In(models.ProviderStripe, models.ProviderRazorpay))
}

// CleanSymptoms trims entries and drops blanks.
func CleanSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func validateTimezone(value interface{}) error {
	tz, _ := value.(string)
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}
