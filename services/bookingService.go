package services

import (
	"context"
	"errors"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/models"
	"TeleClinic/notifications"
	"TeleClinic/repositories"
	"TeleClinic/schedule"
	"TeleClinic/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == utils.RoleAdmin }

// canAccess reports whether the actor may read or change appt: the booking patient,
// the appointment's doctor, or an admin.
func (a Actor) canAccess(appt *models.Appointment) bool {
	switch a.Role {
	case utils.RoleAdmin:
		return true
	case utils.RoleDoctor:
		return appt.DoctorID == a.ID
	case utils.RolePatient:
		return appt.PatientID == a.ID
	}
	return false
}

// Notifier queues an outbound message without waiting for delivery.
type Notifier interface {
	Notify(ctx context.Context, msg notifications.Message)
}

// BookingResult is returned by a successful booking.
type BookingResult struct {
	Appointment  *models.Appointment `json:"appointment"`
	Confirmation *Confirmation       `json:"confirmation,omitempty"`
}

type BookingService struct {
	doctors       repositories.DoctorRepository
	appointments  repositories.AppointmentRepository
	patients      repositories.PatientRepository
	confirmations *ConfirmationService
	notifier      Notifier
	generator     schedule.Generator
	loc           *time.Location
	now           func() time.Time
	log           *zap.Logger
}

func NewBookingService(
	doctors repositories.DoctorRepository,
	appointments repositories.AppointmentRepository,
	patients repositories.PatientRepository,
	confirmations *ConfirmationService,
	notifier Notifier,
	generator schedule.Generator,
	loc *time.Location,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		doctors:       doctors,
		appointments:  appointments,
		patients:      patients,
		confirmations: confirmations,
		notifier:      notifier,
		generator:     generator,
		loc:           loc,
		now:           time.Now,
		log:           log,
	}
}

// Book reserves a slot for patientID. Preconditions are checked in order and the first
// failure is returned: the doctor exists and is available, the date and time are well
// formed and bookable, at least one symptom is given. The reservation itself is decided
// by the repository against the stored record.
func (s *BookingService) Book(ctx context.Context, patientID string, req models.BookingRequest) (*BookingResult, error) {
	doctor, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		return nil, apperrors.ErrDoctorUnavailable
	}

	loc := doctor.Location(s.loc)
	start, err := s.generator.Validate(req.SlotDate, req.SlotTime, loc)
	if err != nil {
		return nil, apperrors.NewInvalidSlotError(err.Error())
	}
	now := s.now().In(loc)
	if !start.After(now) {
		return nil, apperrors.NewInvalidSlotError("slot has already started")
	}
	windowEnd := time.Date(now.Year(), now.Month(), now.Day()+s.generator.Days, 0, 0, 0, 0, loc)
	if !start.Before(windowEnd) {
		return nil, apperrors.NewInvalidSlotError("slot is outside the booking window")
	}

	symptoms := utils.CleanSymptoms(req.Symptoms)
	if len(symptoms) == 0 {
		return nil, apperrors.ErrMissingSymptoms
	}
	if err := utils.ValidateProxy(req.Proxy); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}

	appt := &models.Appointment{
		DoctorID:        doctor.ID,
		PatientID:       patientID,
		SlotDate:        schedule.FormatDateKey(start),
		SlotTime:        schedule.FormatSlotTime(start),
		Amount:          doctor.Fee,
		PaymentState:    models.PaymentPending,
		Symptoms:        datatypes.JSONSlice[string](symptoms),
		ReportRefs:      datatypes.JSONSlice[string](req.ReportRefs),
		PrescriptionRef: req.PrescriptionRef,
		Proxy:           req.Proxy,
	}
	if err := s.appointments.Book(ctx, appt); err != nil {
		return nil, err
	}
	s.log.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("doctor_id", appt.DoctorID),
		zap.String("slot_date", appt.SlotDate),
		zap.String("slot_time", appt.SlotTime),
		zap.Int("token_number", appt.TokenNumber),
	)

	result := &BookingResult{Appointment: appt}
	confirmation, err := s.confirmations.Issue(appt)
	if err != nil {
		s.log.Warn("failed to issue confirmation", zap.String("appointment_id", appt.ID), zap.Error(err))
	} else {
		result.Confirmation = confirmation
	}

	booking := s.bookingMessage(ctx, appt, doctor.Name)
	if confirmation != nil {
		booking.VerifyURL = confirmation.VerifyURL
	}
	s.notifier.Notify(ctx, notifications.BookingConfirmed(booking))
	return result, nil
}

// Cancel frees the appointment's slot. Token numbers of other appointments are kept.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id string) (*models.Appointment, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	appt, err := s.appointments.Cancel(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("appointment cancelled",
		zap.String("appointment_id", appt.ID),
		zap.String("cancelled_by", actor.Role),
	)

	s.notifier.Notify(ctx, notifications.BookingCancelled(s.bookingMessage(ctx, appt, s.doctorName(ctx, appt.DoctorID))))
	return appt, nil
}

// Complete closes a consultation. Only the appointment's doctor or an admin may do so.
func (s *BookingService) Complete(ctx context.Context, actor Actor, id string) (*models.Appointment, error) {
	if actor.Role == utils.RolePatient {
		return nil, apperrors.ErrForbidden
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	appt, err := s.appointments.Complete(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, notifications.ConsultationCompleted(s.bookingMessage(ctx, appt, s.doctorName(ctx, appt.DoctorID))))
	return appt, nil
}

func (s *BookingService) Get(ctx context.Context, actor Actor, id string) (*models.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(appt) {
		return nil, notVisible(actor)
	}
	return appt, nil
}

// notVisible hides other patients' appointments entirely; staff get a plain 403.
func notVisible(actor Actor) error {
	if actor.Role == utils.RolePatient {
		return apperrors.ErrAppointmentNotFound
	}
	return apperrors.ErrForbidden
}

func (s *BookingService) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

// ListForDoctorDay returns the doctor's live queue for dateKey; an empty dateKey means
// today in the doctor's timezone.
func (s *BookingService) ListForDoctorDay(ctx context.Context, doctorID, dateKey string) ([]models.Appointment, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	loc := doctor.Location(s.loc)
	if dateKey == "" {
		dateKey = schedule.FormatDateKey(s.now().In(loc))
	} else if _, err := schedule.ParseDateKey(dateKey, loc); err != nil {
		return nil, apperrors.NewInvalidSlotError(err.Error())
	}
	return s.appointments.ListDoctorDay(ctx, doctorID, dateKey)
}

func (s *BookingService) ListForDoctor(ctx context.Context, doctorID string, limit int) ([]models.Appointment, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.appointments.ListByDoctor(ctx, doctorID, limit)
}

func (s *BookingService) doctorName(ctx context.Context, doctorID string) string {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		s.log.Warn("failed to load doctor for notification", zap.String("doctor_id", doctorID), zap.Error(err))
		return ""
	}
	return doctor.Name
}

// bookingMessage resolves the patient's contact details. A missing profile still
// produces a message; the notifier decides whether it can deliver it.
func (s *BookingService) bookingMessage(ctx context.Context, appt *models.Appointment, doctorName string) notifications.Booking {
	booking := notifications.Booking{Appointment: *appt, DoctorName: doctorName}
	patient, err := s.patients.GetByID(ctx, appt.PatientID)
	switch {
	case errors.Is(err, apperrors.ErrPatientNotFound):
	case err != nil:
		s.log.Warn("failed to load patient for notification", zap.String("patient_id", appt.PatientID), zap.Error(err))
	default:
		booking.Patient = notifications.Recipient{Name: patient.Name, Phone: patient.Phone, Email: patient.Email}
	}
	if booking.Patient.Phone == "" && appt.Proxy != nil {
		booking.Patient.Phone = appt.Proxy.Phone
	}
	return booking
}
