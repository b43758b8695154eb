package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"TeleClinic/apperrors"
	"TeleClinic/middlewares"
	"TeleClinic/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultDoctorHistoryLimit = 50

type AppointmentHandler struct {
	booking       BookingService
	doctors       DoctorService
	confirmations ConfirmationService
	log           *zap.Logger
}

func NewAppointmentHandler(booking BookingService, doctors DoctorService, confirmations ConfirmationService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{booking: booking, doctors: doctors, confirmations: confirmations, log: log}
}

// BookAppointment reserves a slot for the calling patient. A lost race answers
// 409 with the fresh free slots of that day so the client can re-render.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req models.BookingRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	result, err := h.booking.Book(c.Request.Context(), actor.ID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrSlotUnavailable) {
			extra := gin.H{"refreshSlots": true}
			if day, dayErr := h.doctors.DaySlots(c.Request.Context(), req.DoctorID, req.SlotDate); dayErr == nil {
				extra["availableSlots"] = day.Slots
			} else {
				h.log.Warn("failed to load slots for conflict response", zap.String("doctor_id", req.DoctorID), zap.Error(dayErr))
			}
			middlewares.HttpError(c, h.log, err, extra)
			return
		}
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	appointments, err := h.booking.ListForPatient(c.Request.Context(), actor.ID)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	appointment, err := h.booking.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// CancelAppointment is mounted for patients, doctors and admins; ownership is
// decided by the booking service.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	appointment, err := h.booking.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	appointment, err := h.booking.Complete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// GetMyDayAppointments lists the calling doctor's appointments for ?date=,
// defaulting to today.
func (h *AppointmentHandler) GetMyDayAppointments(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	appointments, err := h.booking.ListForDoctorDay(c.Request.Context(), actor.ID, c.Query("date"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetDoctorAppointments(c *gin.Context) {
	limit := defaultDoctorHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middlewares.HttpError(c, h.log, apperrors.NewValidationError(apperrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	appointments, err := h.booking.ListForDoctor(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// GetAppointmentQR renders the signed confirmation link as a PNG.
func (h *AppointmentHandler) GetAppointmentQR(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	appointment, err := h.booking.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	png, err := h.confirmations.QRCode(appointment)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *AppointmentHandler) VerifyConfirmation(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		middlewares.HttpError(c, h.log, apperrors.ErrInvalidConfirmation)
		return
	}
	verified, err := h.confirmations.Verify(c.Request.Context(), token)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, verified)
}
