package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/pkg/auth"
)

const (
	headerRequestID = "X-Request-ID"
	keyRequestID    = "request_id"
	keyIdentity     = "identity"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(keyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String(keyRequestID, c.GetString(keyRequestID)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func recovery(s *Server) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		s.logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String(keyRequestID, c.GetString(keyRequestID)),
		)
		s.writeError(c, fmt.Errorf("panic: %v", recovered))
	})
}

// requireWrite runs the auth gate. Rejected requests never reach a tier.
func (s *Server) requireWrite(c *gin.Context) {
	identity, err := s.gate.Authorize(credentials(c))
	if err != nil {
		s.writeError(c, err)
		c.Abort()
		return
	}
	c.Set(keyIdentity, identity)
	c.Request = c.Request.WithContext(content.WithActor(c.Request.Context(), actorOf(identity)))
	c.Next()
}

func credentials(c *gin.Context) auth.Credentials {
	creds := auth.Credentials{Bearer: auth.BearerToken(c.GetHeader("Authorization"))}
	if cookie, err := c.Cookie(auth.CookieName); err == nil {
		creds.Session = cookie
	}
	return creds
}

func actorOf(identity auth.Identity) string {
	if identity.Subject != "" {
		return identity.Subject
	}
	return identity.Method
}

func actorFrom(ctx context.Context) string {
	return content.ActorFromContext(ctx)
}
