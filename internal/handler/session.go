package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RachedNaguez/PcBuilder/internal/model"
	"github.com/RachedNaguez/PcBuilder/internal/service"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// statusFor maps controller sentinels onto HTTP statuses. Input
// rejections are the caller's fault; an in-flight collision is a
// conflict; everything else is treated as a missing session.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrModeNotSet),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrNoBuild):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRequestInFlight):
		return http.StatusConflict
	default:
		return http.StatusNotFound
	}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	// An empty body is fine; the default build type applies.
	_ = c.ShouldBindJSON(&req)

	state, err := h.sessions.CreateSession(req.BuildType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	state, err := h.sessions.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	state, err := h.sessions.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   state.Messages,
	})
}

func (h *SessionHandler) GetSessionList(c *gin.Context) {
	sessions, err := h.sessions.ListSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.sessions.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *SessionHandler) ClearAllSessions(c *gin.Context) {
	if err := h.sessions.ClearAllSessions(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All sessions cleared successfully"})
}

// SendMessage forwards one chat turn through the controller.
func (h *SessionHandler) SendMessage(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessions.Send(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// BuildPC starts a budget-initiated build.
func (h *SessionHandler) BuildPC(c *gin.Context) {
	var req model.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessions.BuildPC(c.Request.Context(), req.SessionID, req.Budget, req.BuildType)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) SwitchMode(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req model.SwitchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessions.SwitchMode(sessionID, req.Mode)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) ToggleView(c *gin.Context) {
	sessionID := c.Param("session_id")

	state, err := h.sessions.ToggleView(sessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) Back(c *gin.Context) {
	sessionID := c.Param("session_id")

	state, err := h.sessions.Back(sessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID := c.Param("session_id")

	state, err := h.sessions.Reset(sessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// ConfirmBuild accepts the current build and returns the clipboard text
// alongside the refreshed state.
func (h *SessionHandler) ConfirmBuild(c *gin.Context) {
	sessionID := c.Param("session_id")

	state, clipboard, err := h.sessions.ConfirmBuild(sessionID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":          state,
		"clipboard_text": clipboard,
	})
}
