package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wordflow/internal/batch"
	"wordflow/internal/server/middleware"
	"wordflow/internal/server/service"
)

// Errors writes the JSON error envelope shared by every handler.
type Errors struct {
	Debug  bool
	Logger *zap.Logger
}

func (e Errors) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Respond maps err to a status code and aborts the request.
func (e Errors) Respond(c *gin.Context, err error) {
	var verr *service.ValidationError
	var cerr *service.CollaboratorError

	switch {
	case errors.As(err, &verr):
		abort(c, http.StatusBadRequest, verr.Message)
	case errors.As(err, &cerr):
		e.logger().Error("collaborator failure", zap.String("path", c.FullPath()), zap.Error(cerr.Err))
		abort(c, http.StatusBadGateway, cerr.Message)
	case errors.Is(err, batch.ErrSessionNotFound):
		abort(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, batch.ErrNoImages),
		errors.Is(err, batch.ErrTooManyImages):
		abort(c, http.StatusBadRequest, err.Error())
	default:
		e.Internal(c, err, err.Error())
	}
}

// Internal logs err and writes a 500 whose details are shown only in debug mode.
func (e Errors) Internal(c *gin.Context, err error, details string) {
	e.logger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	if !e.Debug {
		details = middleware.DebugHint
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"details": details,
	})
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
