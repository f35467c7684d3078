package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialoguecafe/models"
	"dialoguecafe/services/assistant"
	"dialoguecafe/utils"
)

type AssistantHandler struct {
	Service assistant.Service
	Logger  *zap.Logger
}

func NewAssistantHandler(svc assistant.Service, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{Service: svc, Logger: logger}
}

// Chat routes one visitor message through the cafe assistant.
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req models.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Text) == "" {
		utils.JSONError(c, http.StatusBadRequest, "user_id and text are required", "")
		return
	}

	resp, err := h.Service.ProcessUserInput(c.Request.Context(), req)
	if err != nil {
		h.Logger.Error("assistant chat failed", zap.String("userID", req.UserID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "assistant is unavailable right now", "")
		return
	}
	c.JSON(http.StatusOK, resp)
}
