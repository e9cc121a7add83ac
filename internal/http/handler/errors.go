package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youngsunson/updatev2/common/id"
	"github.com/youngsunson/updatev2/internal/proofread"
	"github.com/youngsunson/updatev2/internal/service"
	"github.com/youngsunson/updatev2/internal/settings"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, proofread.ErrMutationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, proofread.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, proofread.ErrConfigurationMissing):
		return http.StatusPreconditionFailed
	case errors.Is(err, proofread.ErrEmptyScope),
		errors.Is(err, proofread.ErrInvalidTask),
		errors.Is(err, settings.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, proofread.ErrAnalysisUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, proofread.ErrUnknownCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with a transient notice when the user should see one.
func writeError(c *gin.Context, action string, err error) {
	ctx := c.Request.Context()
	status := statusFor(err)

	body := gin.H{"error": err.Error()}
	if notice := proofread.Notice(err); notice != "" {
		body["notice"] = notice
	}

	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		slog.ErrorContext(ctx, action+" failed", "error", err)
		body["error"] = action + " failed"
	} else {
		slog.WarnContext(ctx, action+" rejected", "error", err, "status", status)
	}

	c.JSON(status, body)
}

func sessionID(c *gin.Context) (int64, bool) {
	sid, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return sid, true
}
