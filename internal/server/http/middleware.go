package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	ctxUserID        = "uid"
	ctxParticipantID = "pid"
)

// bearerToken reads the identity token from the Authorization header,
// falling back to the cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(common.TokenCookieName); err == nil {
		return cookie
	}
	return ""
}

// identify attaches uid/pid from a valid token. Missing or bad tokens
// leave the request anonymous; the require* guards decide what that means.
func (h *Handler) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearerToken(c); tok != "" {
			if claims, err := h.svc.Users.Authenticate(tok); err == nil {
				if claims.UserID != "" {
					c.Set(ctxUserID, claims.UserID)
				}
				if claims.ParticipantID != "" {
					c.Set(ctxParticipantID, claims.ParticipantID)
				}
			}
		}
		c.Next()
	}
}

func requireUser(c *gin.Context) {
	if userID(c) == "" {
		fail(c, http.StatusUnauthorized, "login required")
		return
	}
	c.Next()
}

func requireParticipant(c *gin.Context) {
	if participantID(c) == "" {
		fail(c, http.StatusUnauthorized, "not in a session")
		return
	}
	c.Next()
}

func userID(c *gin.Context) string        { return c.GetString(ctxUserID) }
func participantID(c *gin.Context) string { return c.GetString(ctxParticipantID) }

// accessLog writes one structured line per request.
func accessLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// instrument opens a server span per request and records its duration.
func instrument() gin.HandlerFunc {
	tracer := otel.Tracer("huntplanur/http")
	duration, _ := otel.Meter("huntplanur/http").Float64Histogram(
		"http.server.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of HTTP server requests."),
	)

	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", c.Writer.Status()),
		}
		span.SetAttributes(attrs...)
		if duration != nil {
			duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
		}
	}
}
