package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	log *zap.Logger
}

func NewSessionHandler(log *zap.Logger) *SessionHandler {
	return &SessionHandler{log: log}
}

// GetSession echoes the caller behind the presented access token.
func (h *SessionHandler) GetSession(c *gin.Context) {
	actor, ok := requireActor(c, h.log)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": actor.ID, "role": actor.Role})
}
