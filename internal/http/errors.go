package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"finance-ledger-go/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation: 400,
	apperr.KindNotFound:   404,
	apperr.KindConflict:   409,
	apperr.KindAuth:       401,
	apperr.KindStorage:    500,
}

// fail writes err as {"error", "field"?, "retryable"?} with the status of its
// kind. Untyped errors are logged and answered with a generic 500.
func (s *Server) fail(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		s.log.Error("unexpected error", "request_id", requestID(c), "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
		return
	}

	status := statusByKind[e.Kind]
	if status >= 500 {
		s.log.Error("request failed", "request_id", requestID(c), "path", c.FullPath(), "error", err, "retryable", e.Retryable)
	}
	body := gin.H{"error": e.Message}
	if e.Field != "" {
		body["field"] = e.Field
	}
	if e.Retryable {
		body["retryable"] = true
	}
	c.AbortWithStatusJSON(status, body)
}
