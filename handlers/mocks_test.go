package handlers

import (
	"context"
	"net/http"

	"TeleClinic/models"
	"TeleClinic/schedule"
	"TeleClinic/services"

	"github.com/stretchr/testify/mock"
)

type mockDoctorService struct{ mock.Mock }

func (m *mockDoctorService) Create(ctx context.Context, in models.DoctorInput) (*models.Doctor, error) {
	args := m.Called(ctx, in)
	return doctorArg(args.Get(0)), args.Error(1)
}

func (m *mockDoctorService) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	args := m.Called(ctx, id)
	return doctorArg(args.Get(0)), args.Error(1)
}

func (m *mockDoctorService) List(ctx context.Context, speciality string) ([]models.Doctor, error) {
	args := m.Called(ctx, speciality)
	doctors, _ := args.Get(0).([]models.Doctor)
	return doctors, args.Error(1)
}

func (m *mockDoctorService) ListAll(ctx context.Context) ([]models.Doctor, error) {
	args := m.Called(ctx)
	doctors, _ := args.Get(0).([]models.Doctor)
	return doctors, args.Error(1)
}

func (m *mockDoctorService) Update(ctx context.Context, id string, in models.DoctorInput) (*models.Doctor, error) {
	args := m.Called(ctx, id, in)
	return doctorArg(args.Get(0)), args.Error(1)
}

func (m *mockDoctorService) SetAvailability(ctx context.Context, id string, available bool) error {
	return m.Called(ctx, id, available).Error(0)
}

func (m *mockDoctorService) UpdateStatus(ctx context.Context, id, status string) (*models.DoctorStatusView, error) {
	args := m.Called(ctx, id, status)
	view, _ := args.Get(0).(*models.DoctorStatusView)
	return view, args.Error(1)
}

func (m *mockDoctorService) Status(ctx context.Context, id string) (*models.DoctorStatusView, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*models.DoctorStatusView)
	return view, args.Error(1)
}

func (m *mockDoctorService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDoctorService) WeekSlots(ctx context.Context, id string) ([]schedule.DaySlots, error) {
	args := m.Called(ctx, id)
	week, _ := args.Get(0).([]schedule.DaySlots)
	return week, args.Error(1)
}

func (m *mockDoctorService) DaySlots(ctx context.Context, id, dateKey string) (*schedule.DaySlots, error) {
	args := m.Called(ctx, id, dateKey)
	day, _ := args.Get(0).(*schedule.DaySlots)
	return day, args.Error(1)
}

func doctorArg(v interface{}) *models.Doctor {
	doctor, _ := v.(*models.Doctor)
	return doctor
}

type mockBookingService struct{ mock.Mock }

func (m *mockBookingService) Book(ctx context.Context, patientID string, req models.BookingRequest) (*services.BookingResult, error) {
	args := m.Called(ctx, patientID, req)
	result, _ := args.Get(0).(*services.BookingResult)
	return result, args.Error(1)
}

func (m *mockBookingService) Cancel(ctx context.Context, actor services.Actor, id string) (*models.Appointment, error) {
	args := m.Called(ctx, actor, id)
	return appointmentArg(args.Get(0)), args.Error(1)
}

func (m *mockBookingService) Complete(ctx context.Context, actor services.Actor, id string) (*models.Appointment, error) {
	args := m.Called(ctx, actor, id)
	return appointmentArg(args.Get(0)), args.Error(1)
}

func (m *mockBookingService) Get(ctx context.Context, actor services.Actor, id string) (*models.Appointment, error) {
	args := m.Called(ctx, actor, id)
	return appointmentArg(args.Get(0)), args.Error(1)
}

func (m *mockBookingService) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	args := m.Called(ctx, patientID)
	list, _ := args.Get(0).([]models.Appointment)
	return list, args.Error(1)
}

func (m *mockBookingService) ListForDoctorDay(ctx context.Context, doctorID, dateKey string) ([]models.Appointment, error) {
	args := m.Called(ctx, doctorID, dateKey)
	list, _ := args.Get(0).([]models.Appointment)
	return list, args.Error(1)
}

func (m *mockBookingService) ListForDoctor(ctx context.Context, doctorID string, limit int) ([]models.Appointment, error) {
	args := m.Called(ctx, doctorID, limit)
	list, _ := args.Get(0).([]models.Appointment)
	return list, args.Error(1)
}

func appointmentArg(v interface{}) *models.Appointment {
	appt, _ := v.(*models.Appointment)
	return appt
}

type mockConfirmationService struct{ mock.Mock }

func (m *mockConfirmationService) QRCode(appt *models.Appointment) ([]byte, error) {
	args := m.Called(appt)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

func (m *mockConfirmationService) Verify(ctx context.Context, token string) (*services.VerifiedConfirmation, error) {
	args := m.Called(ctx, token)
	verified, _ := args.Get(0).(*services.VerifiedConfirmation)
	return verified, args.Error(1)
}

type mockQueueService struct{ mock.Mock }

func (m *mockQueueService) Status(ctx context.Context, actor services.Actor, appointmentID string) (*schedule.QueueStatus, error) {
	args := m.Called(ctx, actor, appointmentID)
	status, _ := args.Get(0).(*schedule.QueueStatus)
	return status, args.Error(1)
}

type mockPatientService struct{ mock.Mock }

func (m *mockPatientService) Save(ctx context.Context, id string, in models.PatientInput) (*models.Patient, error) {
	args := m.Called(ctx, id, in)
	patient, _ := args.Get(0).(*models.Patient)
	return patient, args.Error(1)
}

func (m *mockPatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	args := m.Called(ctx, id)
	patient, _ := args.Get(0).(*models.Patient)
	return patient, args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) Checkout(ctx context.Context, actor services.Actor, appointmentID, provider string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, actor, appointmentID, provider)
	session, _ := args.Get(0).(*models.CheckoutSession)
	return session, args.Error(1)
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, header http.Header) error {
	return m.Called(ctx, provider, payload, header).Error(0)
}
