package handlers

import (
	"io"
	"net/http"

	"TeleClinic/apperrors"
	"TeleClinic/middlewares"
	"TeleClinic/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Provider webhooks are small JSON documents.
const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	service PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, log: log}
}

func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	session, err := h.service.Checkout(c.Request.Context(), actor, c.Param("id"), req.Provider)
	if err != nil {
		middlewares.HttpError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Webhook returns the handler for one provider's callback. The raw body is
// passed through untouched since signatures are computed over it.
func (h *PaymentHandler) Webhook(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			middlewares.HttpError(c, h.log, apperrors.NewValidationError(apperrors.CodeInvalidInput, "unreadable webhook body"))
			return
		}
		if err := h.service.HandleWebhook(c.Request.Context(), provider, payload, c.Request.Header); err != nil {
			middlewares.HttpError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
