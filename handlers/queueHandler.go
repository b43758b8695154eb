package handlers

import (
	"net/http"

	"TeleClinic/apperrors"
	"TeleClinic/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QueueHandler struct {
	service QueueService
	log     *zap.Logger
}

func NewQueueHandler(service QueueService, log *zap.Logger) *QueueHandler {
	return &QueueHandler{service: service, log: log}
}

// GetQueueStatus answers GET /queue-status?appointmentId=. Clients poll it.
func (h *QueueHandler) GetQueueStatus(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	id := c.Query("appointmentId")
	if id == "" {
		middlewares.HttpError(c, h.log, apperrors.NewValidationError(apperrors.CodeInvalidInput, "appointmentId is required"))
		return
	}
	status, err := h.service.Status(c.Request.Context(), actor, id)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, status)
}
