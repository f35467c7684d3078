package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dialoguecafe/services/confirmation"
	"dialoguecafe/services/dictation"
	"dialoguecafe/utils"
)

// ConfirmationHandler exposes the booking confirmation flow. Each session
// wraps one controller, driven by the page on the other side.
type ConfirmationHandler struct {
	registry  *confirmation.Registry
	provider  dictation.Provider
	locale    string
	submitter confirmation.Submitter
	logger    *zap.Logger
}

func NewConfirmationHandler(registry *confirmation.Registry, provider dictation.Provider, locale string, submitter confirmation.Submitter, logger *zap.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		registry:  registry,
		provider:  provider,
		locale:    locale,
		submitter: submitter,
		logger:    logger,
	}
}

// StartSession opens a confirmation session for a slot selection coming from
// the calendar page. A missing selection is allowed and shows as
// "No date selected".
func (h *ConfirmationHandler) StartSession(c *gin.Context) {
	var input struct {
		SelectedSlots []string `json:"selectedSlots"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err != io.EOF {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	locale := requestLocale(c.GetHeader("Accept-Language"), h.locale)
	capture := dictation.NewCapture(h.provider, locale, h.logger)
	ctrl, err := confirmation.NewController(input.SelectedSlots, capture, h.submitter, h.logger)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid slot selection", err.Error())
		return
	}

	id := h.registry.Add(ctrl)
	snap := ctrl.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"sessionID": id,
		"details":   snap.Details,
	})
}

// GetSession returns the current snapshot of a session.
func (h *ConfirmationHandler) GetSession(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshotJSON(ctrl.Snapshot()))
}

// UpdateField applies a typed field change.
func (h *ConfirmationHandler) UpdateField(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	var input struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := ctrl.SetField(dictation.Field(input.Field), input.Value); err != nil {
		h.flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotJSON(ctrl.Snapshot()))
}

// Dictate runs one voice capture for a field: the uploaded audio is
// transcribed and written into the field. Any session already recording is
// superseded first.
func (h *ConfirmationHandler) Dictate(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	field := dictation.Field(c.PostForm("field"))
	if !dictation.ValidField(field) {
		utils.JSONError(c, http.StatusBadRequest, "unknown form field", string(field))
		return
	}

	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	// Read one byte past the cap so an oversized upload is rejected rather
	// than silently truncated.
	audio, err := io.ReadAll(io.LimitReader(file, dictation.MaxAudioBytes+1))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to read audio", err.Error())
		return
	}
	if len(audio) > dictation.MaxAudioBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "audio recording is too long", "")
		return
	}

	done, err := ctrl.StartDictation(c.Request.Context(), field, audio)
	if err != nil {
		h.flowError(c, err)
		return
	}

	select {
	case <-done:
	case <-c.Request.Context().Done():
		ctrl.StopDictation()
	}
	c.JSON(http.StatusOK, snapshotJSON(ctrl.Snapshot()))
}

// StopDictation terminates the active voice capture, if any.
func (h *ConfirmationHandler) StopDictation(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	ctrl.StopDictation()
	c.JSON(http.StatusOK, snapshotJSON(ctrl.Snapshot()))
}

// Submit runs the submit transition. On success it returns the redirect
// payload and tears the session down.
func (h *ConfirmationHandler) Submit(c *gin.Context) {
	id := c.Param("sessionID")
	ctrl, err := h.registry.Get(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "confirmation session not found", id)
		return
	}

	snap, err := ctrl.Submit(c.Request.Context())
	if err != nil {
		h.flowError(c, err)
		return
	}
	if snap.Redirect != nil {
		h.registry.Remove(id)
	}
	c.JSON(http.StatusOK, snapshotJSON(snap))
}

// Cancel abandons the session and sends the visitor back to the calendar.
func (h *ConfirmationHandler) Cancel(c *gin.Context) {
	id := c.Param("sessionID")
	ctrl, err := h.registry.Get(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "confirmation session not found", id)
		return
	}

	snap, err := ctrl.Cancel()
	if err != nil {
		h.flowError(c, err)
		return
	}
	h.registry.Remove(id)
	c.JSON(http.StatusOK, snapshotJSON(snap))
}

// requestLocale picks the visitor's preferred language tag from an
// Accept-Language header, falling back to the configured default. Dictation
// then recognizes speech in the language the visitor's platform reports.
func requestLocale(header, fallback string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag != "" && tag != "*" {
			return tag
		}
	}
	return fallback
}

func (h *ConfirmationHandler) lookup(c *gin.Context) (*confirmation.Controller, bool) {
	id := c.Param("sessionID")
	ctrl, err := h.registry.Get(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "confirmation session not found", id)
		return nil, false
	}
	return ctrl, true
}

func (h *ConfirmationHandler) flowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dictation.ErrUnavailable):
		utils.JSONError(c, http.StatusServiceUnavailable, "Speech recognition is not supported on this server.", "")
	case errors.Is(err, confirmation.ErrUnknownField):
		utils.JSONError(c, http.StatusBadRequest, "unknown form field", err.Error())
	case errors.Is(err, confirmation.ErrSubmitInFlight), errors.Is(err, confirmation.ErrNotEditing):
		utils.JSONError(c, http.StatusConflict, err.Error(), "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "confirmation action failed", err.Error())
	}
}

func snapshotJSON(snap confirmation.Snapshot) gin.H {
	out := gin.H{
		"state":   snap.State.String(),
		"details": snap.Details,
		"fields": gin.H{
			"name":  snap.Name,
			"email": snap.Email,
		},
		"errors":         snap.FieldErrors,
		"errorMessage":   snap.ErrorMessage,
		"recordingField": string(snap.Recording),
	}
	if snap.Redirect != nil {
		out["redirect"] = snap.Redirect
	}
	return out
}
