package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialoguecafe/models"
	"dialoguecafe/services/prefs"
	"dialoguecafe/utils"
)

type PrefsHandler struct {
	Store  prefs.Store
	Logger *zap.Logger
}

func NewPrefsHandler(store prefs.Store, logger *zap.Logger) *PrefsHandler {
	return &PrefsHandler{Store: store, Logger: logger}
}

// GetPrefs returns the accessibility settings for a device, with defaults
// for devices we have never seen.
func (h *PrefsHandler) GetPrefs(c *gin.Context) {
	deviceID := c.Param("deviceID")
	p, err := h.Store.Get(c.Request.Context(), deviceID)
	if err != nil {
		h.Logger.Error("load prefs failed", zap.String("deviceID", deviceID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load preferences", "")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePrefs stores the accessibility settings for a device.
func (h *PrefsHandler) UpdatePrefs(c *gin.Context) {
	deviceID := c.Param("deviceID")

	var p models.AccessibilityPrefs
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if p.FontScale <= 0 {
		p.FontScale = 100
	}

	if err := h.Store.Set(c.Request.Context(), deviceID, p); err != nil {
		h.Logger.Error("save prefs failed", zap.String("deviceID", deviceID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to save preferences", "")
		return
	}
	c.JSON(http.StatusOK, p)
}
