package handlers

import (
	"net/http"

	"TeleClinic/middlewares"
	"TeleClinic/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientHandler struct {
	service PatientService
	log     *zap.Logger
}

func NewPatientHandler(service PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{service: service, log: log}
}

func (h *PatientHandler) SaveMyProfile(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var in models.PatientInput
	if !bindJSON(c, h.log, &in) {
		return
	}
	patient, err := h.service.Save(c.Request.Context(), actor.ID, in)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *PatientHandler) GetMyProfile(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	patient, err := h.service.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}
