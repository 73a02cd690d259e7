package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorHandler formats the last error attached to the context. It is the
// only place that turns failures into responses, so it must be registered
// before any handler that can fail.
func ErrorHandler(log *zap.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, message := classify(err, c.Writer.Status())

		fields := []zap.Field{
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}

		if c.Writer.Written() {
			return
		}

		body := ErrorResponse{Message: message}
		if !production {
			body.Detail = err.Error()
		}
		c.JSON(status, body)
	}
}

// classify maps err to a status and client message. A failure status set by
// the handler before returning an unclassified error is kept.
func classify(err error, current int) (int, string) {
	var e *apperror.Error
	if errors.As(err, &e) && e.Kind != apperror.KindUnknown {
		return e.Kind.Status(), e.Message
	}

	status := http.StatusInternalServerError
	if current >= http.StatusBadRequest {
		status = current
	}
	if status >= http.StatusInternalServerError {
		return status, http.StatusText(status)
	}
	return status, err.Error()
}

// NotFound reports an unmatched route through the error path.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperror.NotFound("Not Found - " + c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// Recovery turns a panic into an error on the context so ErrorHandler
// reports it like any other failure.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error("panic recovered",
					zap.Any("panic", recovered),
					zap.ByteString("stack", debug.Stack()),
				)
				_ = c.Error(fmt.Errorf("panic: %v", recovered))
				c.Abort()
			}
		}()
		c.Next()
	}
}
