package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/trainbooking/internal/authz"
	"github.com/Domenick1991/trainbooking/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AdminHeader carries the shared admin secret.
	AdminHeader = "x-admin-auth"
	identityKey = "identity"
)

type AccessGate interface {
	Allow(ctx context.Context, req authz.Request) (bool, error)
}

type TokenParser interface {
	Parse(token string) (*authz.Identity, error)
}

// Identity resolves an optional bearer token. Requests without one pass through
// anonymously; a token that does not verify is rejected.
func Identity(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || parser == nil {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		id, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) *authz.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*authz.Identity)
	return id
}

// RequireAdmin asks the gate whether the request may mutate the catalog.
func RequireAdmin(gate AccessGate, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := gate.Allow(c.Request.Context(), authz.Request{
			Method:     c.Request.Method,
			Path:       c.FullPath(),
			AdminToken: c.GetHeader(AdminHeader),
			Identity:   identityFrom(c),
		})
		if err != nil {
			log.Error("access gate evaluation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized as admin"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request and counts it by route.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// Timeout bounds the context handed to services.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
