package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hr-backoffice/internal/common/auth"
	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/metrics"
	"hr-backoffice/internal/common/observability"
	"hr-backoffice/internal/models"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ctxSession = "hr.session"
	ctxToken   = "hr.token"
)

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func tracing(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, span := obs.StartSpan(c.Request.Context(), fmt.Sprintf("%s %s", c.Request.Method, routeOf(c)),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", routeOf(c)),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		obs.RecordOperation(ctx, routeOf(c), strconv.Itoa(status), time.Since(start))
	}
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := routeOf(c)
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       routeOf(c),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if traceID := observability.TraceID(c.Request.Context()); traceID != "" {
			fields["trace_id"] = traceID
		}
		if s, ok := c.Get(ctxSession); ok {
			fields["staff"] = s.(*models.Session).Email
		}
		log.Info("request completed", fields)
	}
}

func limitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// requestToken prefers an explicit bearer token over the session cookie.
func (h *handlers) requestToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	token, err := c.Cookie(h.cfg.CookieName)
	if err != nil {
		return ""
	}
	return token
}

func (h *handlers) requireStaff(c *gin.Context) {
	token := h.requestToken(c)
	if token == "" {
		h.errs.Respond(c, apperrors.NewAuthenticationError("login required"))
		return
	}

	session, err := h.svc.Sessions.Lookup(c.Request.Context(), token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionNotFound):
		h.errs.Respond(c, apperrors.NewAuthenticationError("session is invalid or expired"))
		return
	case err != nil:
		h.errs.Respond(c, apperrors.NewInternalError(fmt.Errorf("session lookup: %w", err)))
		return
	}

	c.Set(ctxSession, session)
	c.Set(ctxToken, token)
	c.Next()
}
