package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"workshop/api/response"
	"workshop/config"
	"workshop/infrastructure/persistence"
	"workshop/pkg/errors"
	"workshop/pkg/logger"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

func passThrough(c *gin.Context) { c.Next() }

// RequestIDMiddleware keeps the caller's X-Request-ID or issues a UUID. The id
// goes on the gin context, the request context and the response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(persistence.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// LoggingMiddleware writes one access line per request, leveled by status.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := logger.Ctx(c.Request.Context()).With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(begin)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		)
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http request")
		case status >= http.StatusBadRequest:
			log.Warn("http request")
		default:
			log.Info("http request")
		}
	}
}

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				logger.Ctx(c.Request.Context()).Error("panic recovered",
					zap.Any("panic", p),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				response.Abort(c, http.StatusInternalServerError, errors.CodeInternal, "internal server error")
			}
		}()
		c.Next()
	}
}

// CORSMiddleware echoes allowed origins and answers preflight requests itself.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	static := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowHeaders, ", "),
		"Access-Control-Max-Age":       strconv.Itoa(cfg.MaxAge),
	}
	if cfg.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}
	wildcard := slices.Contains(cfg.AllowOrigins, "*")

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && (wildcard || slices.Contains(cfg.AllowOrigins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		for k, v := range static {
			c.Header(k, v)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// clientLimiters holds one token bucket per client IP.
type clientLimiters struct {
	buckets sync.Map
	limit   rate.Limit
	burst   int
}

func (l *clientLimiters) allow(ip string) bool {
	b, ok := l.buckets.Load(ip)
	if !ok {
		b, _ = l.buckets.LoadOrStore(ip, rate.NewLimiter(l.limit, l.burst))
	}
	return b.(*rate.Limiter).Allow()
}

func RateLimitMiddleware(cfg *config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	limiters := &clientLimiters{limit: rate.Limit(cfg.Rate), burst: cfg.Burst}

	return func(c *gin.Context) {
		if limiters.allow(c.ClientIP()) {
			c.Next()
			return
		}
		logger.Ctx(c.Request.Context()).Warn("rate limit exceeded", zap.String("client_ip", c.ClientIP()))
		response.Abort(c, http.StatusTooManyRequests, errors.CodeTooManyRequests, "too many requests, please try again later")
	}
}

// GzipMiddleware compresses responses when enabled; health checks are left alone.
func GzipMiddleware(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/health"}))
}

// TracingMiddleware starts a server span per request on tp.
func TracingMiddleware(serviceName string, tp trace.TracerProvider) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithTracerProvider(tp))
}
