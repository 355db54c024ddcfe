package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/vsinha/supplyadvisor/pkg/domain/errors"
)

const (
	ContextKeyRequestID = "requestId"
	HeaderRequestID     = "X-Request-ID"
)

// HTTPMetrics receives per-request measurements
type HTTPMetrics interface {
	IncrementHTTPRequestsInFlight()
	DecrementHTTPRequestsInFlight()
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// APIErrorResponse is the body of every failed request
type APIErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Timestamp string            `json:"timestamp"`
	Path      string            `json:"path"`
}

// RequestID propagates X-Request-ID or generates a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger logs every request except the excluded paths
func Logger(logger *slog.Logger, excludePaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int64("latencyMs", latency.Milliseconds()),
			slog.String("clientIP", c.ClientIP()),
			slog.String("requestId", requestIDOf(c)),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", attrs...)
		default:
			logger.Info("HTTP request", attrs...)
		}
	}
}

// Recovery turns panics into a 500 response
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("path", c.Request.URL.Path),
					slog.String("requestId", requestIDOf(c)),
				)
				abortWithAppError(c, apperrors.ErrInternal("An unexpected error occurred"))
			}
		}()
		c.Next()
	}
}

// ErrorHandler renders the last error attached to the context
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperrors.AsAppError(c.Errors.Last().Err)

		level := slog.LevelError
		if appErr.HTTPStatus < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		attrs := []any{
			slog.String("code", appErr.Code),
			slog.String("message", appErr.Message),
			slog.Int("status", appErr.HTTPStatus),
			slog.String("path", c.Request.URL.Path),
			slog.String("requestId", requestIDOf(c)),
		}
		if appErr.Err != nil {
			attrs = append(attrs, slog.String("error", appErr.Err.Error()))
		}
		logger.Log(c.Request.Context(), level, "API error", attrs...)

		c.JSON(appErr.HTTPStatus, errorResponse(c, appErr))
	}
}

// Metrics records request counts and latency by route pattern
func Metrics(m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// NoRoute answers unknown paths in the API error format
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, APIErrorResponse{
			Code:      "ROUTE_NOT_FOUND",
			Message:   "The requested resource was not found",
			RequestID: requestIDOf(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request.URL.Path,
		})
	}
}

func abortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, errorResponse(c, appErr))
}

func errorResponse(c *gin.Context, appErr *apperrors.AppError) APIErrorResponse {
	return APIErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: requestIDOf(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
	}
}

func requestIDOf(c *gin.Context) string {
	id, _ := c.Get(ContextKeyRequestID)
	s, _ := id.(string)
	return s
}
