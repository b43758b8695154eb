package handlers

import (
	"net/http"

	"TeleClinic/apperrors"
	"TeleClinic/middlewares"
	"TeleClinic/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DoctorHandler struct {
	service DoctorService
	log     *zap.Logger
}

func NewDoctorHandler(service DoctorService, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{service: service, log: log}
}

func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var in models.DoctorInput
	if !bindJSON(c, h.log, &in) {
		return
	}
	doctor, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, doctor)
}

func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctor, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

// GetAvailableDoctors lists bookable doctors, optionally ?speciality=.
func (h *DoctorHandler) GetAvailableDoctors(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context(), c.Query("speciality"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *DoctorHandler) GetAllDoctors(c *gin.Context) {
	doctors, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var in models.DoctorInput
	if !bindJSON(c, h.log, &in) {
		return
	}
	doctor, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetDoctorAvailability is the admin toggle for any doctor.
func (h *DoctorHandler) SetDoctorAvailability(c *gin.Context) {
	h.setAvailability(c, c.Param("id"))
}

// SetMyAvailability lets a doctor open or close their own booking.
func (h *DoctorHandler) SetMyAvailability(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	h.setAvailability(c, actor.ID)
}

func (h *DoctorHandler) setAvailability(c *gin.Context, id string) {
	var req models.AvailabilityRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if req.Available == nil {
		middlewares.HttpError(c, h.log, apperrors.NewValidationError(apperrors.CodeInvalidInput, "available is required"))
		return
	}
	if err := h.service.SetAvailability(c.Request.Context(), id, *req.Available); err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"docId": id, "available": *req.Available})
}

// UpdateMyStatus sets the calling doctor's live status.
func (h *DoctorHandler) UpdateMyStatus(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req models.StatusRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	view, err := h.service.UpdateStatus(c.Request.Context(), actor.ID, req.Status)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetDoctorStatus serves both /doctor-status?docId= and /doctors/:id/status.
func (h *DoctorHandler) GetDoctorStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("docId")
	}
	if id == "" {
		middlewares.HttpError(c, h.log, apperrors.NewValidationError(apperrors.CodeInvalidInput, "docId is required"))
		return
	}
	view, err := h.service.Status(c.Request.Context(), id)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetDoctorSlots returns the seven day slot board. It is advisory; booking re-checks.
func (h *DoctorHandler) GetDoctorSlots(c *gin.Context) {
	week, err := h.service.WeekSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"docId": c.Param("id"), "days": week})
}
