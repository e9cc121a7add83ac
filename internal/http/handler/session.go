package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/internal/http/dto"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/service"
)

type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), req.Body, req.Selection)
	if err != nil {
		writeError(c, "create session", err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSessionResponse(sess))
}

func (h *SessionHandler) Get(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		writeError(c, "get session", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

func (h *SessionHandler) UpdateDocument(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sess, err := h.sessions.UpdateDocument(c.Request.Context(), sid, req.Body, req.Selection)
	if err != nil {
		writeError(c, "update document", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

func (h *SessionHandler) Delete(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), sid); err != nil {
		writeError(c, "delete session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Check(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	// An empty body checks with the saved defaults.
	var req dto.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.sessions.Check(c.Request.Context(), sid, req.Task())
	if err != nil {
		writeError(c, "check", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCheckResponse(result))
}

func (h *SessionHandler) Accept(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req dto.AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: old_text is required"})
		return
	}

	sess, err := h.sessions.Accept(c.Request.Context(), sid, req.OldText, req.NewText)
	if err != nil {
		writeError(c, "accept suggestion", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

func (h *SessionHandler) Dismiss(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	var req dto.DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: category and text are required"})
		return
	}

	sess, err := h.sessions.Dismiss(c.Request.Context(), sid, model.Category(req.Category), req.Text)
	if err != nil {
		writeError(c, "dismiss suggestion", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess))
}

func (h *SessionHandler) Runs(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.sessions.Runs(c.Request.Context(), sid, limit)
	if err != nil {
		writeError(c, "list runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": dto.ToRunResponses(runs)})
}
