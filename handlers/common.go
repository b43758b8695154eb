package handlers

import (
	"context"
	"net/http"

	"TeleClinic/apperrors"
	"TeleClinic/middlewares"
	"TeleClinic/models"
	"TeleClinic/schedule"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DoctorService interface {
	Create(ctx context.Context, in models.DoctorInput) (*models.Doctor, error)
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	List(ctx context.Context, speciality string) ([]models.Doctor, error)
	ListAll(ctx context.Context) ([]models.Doctor, error)
	Update(ctx context.Context, id string, in models.DoctorInput) (*models.Doctor, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdateStatus(ctx context.Context, id, status string) (*models.DoctorStatusView, error)
	Status(ctx context.Context, id string) (*models.DoctorStatusView, error)
	Delete(ctx context.Context, id string) error
	WeekSlots(ctx context.Context, id string) ([]schedule.DaySlots, error)
	DaySlots(ctx context.Context, id, dateKey string) (*schedule.DaySlots, error)
}

type BookingService interface {
	Book(ctx context.Context, patientID string, req models.BookingRequest) (*services.BookingResult, error)
	Cancel(ctx context.Context, actor services.Actor, id string) (*models.Appointment, error)
	Complete(ctx context.Context, actor services.Actor, id string) (*models.Appointment, error)
	Get(ctx context.Context, actor services.Actor, id string) (*models.Appointment, error)
	ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListForDoctorDay(ctx context.Context, doctorID, dateKey string) ([]models.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID string, limit int) ([]models.Appointment, error)
}

type ConfirmationService interface {
	QRCode(appt *models.Appointment) ([]byte, error)
	Verify(ctx context.Context, token string) (*services.VerifiedConfirmation, error)
}

type QueueService interface {
	Status(ctx context.Context, actor services.Actor, appointmentID string) (*schedule.QueueStatus, error)
}

type PatientService interface {
	Save(ctx context.Context, id string, in models.PatientInput) (*models.Patient, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
}

type PaymentService interface {
	Checkout(ctx context.Context, actor services.Actor, appointmentID, provider string) (*models.CheckoutSession, error)
	HandleWebhook(ctx context.Context, provider string, payload []byte, header http.Header) error
}

// actorFrom reads the caller placed on the request by the auth middlewares.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	id, err := middlewares.ExtractUserIDFromContext(c.Request.Context())
	if err != nil {
		return services.Actor{}, false
	}
	role, err := middlewares.ExtractUserRoleFromContext(c.Request.Context())
	if err != nil {
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Role: role}, true
}

// requireActor writes a 401 and returns false when the request is unauthenticated.
func requireActor(c *gin.Context, log *zap.Logger) (services.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		middlewares.HttpError(c, log, apperrors.NewUnauthorizedError("authentication required"))
	}
	return actor, ok
}

func bindJSON(c *gin.Context, log *zap.Logger, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		middlewares.HttpError(c, log, apperrors.NewValidationError(apperrors.CodeInvalidInput, "Invalid request body"))
		return false
	}
	return true
}
