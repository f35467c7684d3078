package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialoguecafe/database/repository/menu"
	"dialoguecafe/utils"
)

type MenuHandler struct {
	Repo   menu.Repository
	Logger *zap.Logger
}

func NewMenuHandler(repo menu.Repository, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{Repo: repo, Logger: logger}
}

// ListMenu returns the cafe menu, optionally filtered by category or
// restricted to popular items.
func (h *MenuHandler) ListMenu(c *gin.Context) {
	var (
		items interface{}
		err   error
	)
	if c.Query("popular") == "true" {
		items, err = h.Repo.ListPopular(c.Request.Context())
	} else {
		items, err = h.Repo.List(c.Request.Context(), c.Query("category"))
	}
	if err != nil {
		h.Logger.Error("list menu failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load menu", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
