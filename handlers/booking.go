package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialoguecafe/database/repository/booking"
	"dialoguecafe/models"
	bookingsvc "dialoguecafe/services/booking"
	"dialoguecafe/utils"
)

type BookingHandler struct {
	Service bookingsvc.Service
	Logger  *zap.Logger
}

func NewBookingHandler(svc bookingsvc.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// CreateBooking registers a table booking. Sending the same Idempotency-Key
// twice returns the original booking instead of creating a duplicate.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONErrorCode(c, http.StatusBadRequest, "invalid booking payload", "INVALID_PAYLOAD")
		return
	}

	created, err := h.Service.Create(c.Request.Context(), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		var svcErr *bookingsvc.Error
		if errors.As(err, &svcErr) {
			utils.JSONErrorCode(c, svcErr.Status, svcErr.Message, svcErr.Code)
			return
		}
		h.Logger.Error("create booking failed", zap.Error(err))
		utils.JSONErrorCode(c, http.StatusInternalServerError, "Failed to create booking", "INTERNAL")
		return
	}

	c.JSON(http.StatusCreated, models.BookingResponse{
		ID:        created.ID,
		Date:      created.Date,
		Timeslots: created.Timeslots,
	})
}

// GetBooking fetches a booking by its id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	found, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			utils.JSONErrorCode(c, http.StatusNotFound, "booking not found", "NOT_FOUND")
			return
		}
		h.Logger.Error("get booking failed", zap.String("id", id), zap.Error(err))
		utils.JSONErrorCode(c, http.StatusInternalServerError, "failed to load booking", "INTERNAL")
		return
	}
	c.JSON(http.StatusOK, found)
}
