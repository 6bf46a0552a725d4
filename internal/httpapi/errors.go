package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/pkg/auth"
	"github.com/goliatone/go-content/pkg/contact"
	"github.com/goliatone/go-content/pkg/media"
	"github.com/goliatone/go-content/pkg/redeploy"
)

// Failure codes reported in error bodies.
const (
	codeValidation         = "validation"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeStorageUnavailable = "storage_unavailable"
	codeNeedsConfiguration = "needs_configuration"
	codeUpstream           = "upstream"
	codeInternal           = "internal"
)

type failure struct {
	Success            bool                 `json:"success"`
	Error              string               `json:"error"`
	Code               string               `json:"code"`
	Field              string               `json:"field,omitempty"`
	Details            []contact.FieldError `json:"details,omitempty"`
	NeedsConfiguration bool                 `json:"needsConfiguration,omitempty"`
	Message            string               `json:"message,omitempty"`
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, failure{Error: message, Code: code})
}

// writeError maps err onto a status and failure body. Internal detail is
// only exposed in development.
func (s *Server) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		validationErr *content.ValidationError
		storageErr    *content.StorageError
		upstreamErr   *content.UpstreamError
		formErrs      contact.FormErrors
	)
	body := failure{}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &validationErr):
		status, body.Code = http.StatusBadRequest, codeValidation
		body.Error = validationErr.Error()
		body.Field = validationErr.Field
	case errors.As(err, &formErrs):
		status, body.Code = http.StatusBadRequest, codeValidation
		body.Error = "Validation failed"
		body.Details = formErrs
	case errors.Is(err, content.ErrUnknownSection):
		status, body.Code = http.StatusBadRequest, codeValidation
		body.Error = "Invalid section. Must be: hero, portfolio, or contact"
		body.Field = "section"
	case errors.Is(err, content.ErrUnauthorized), errors.Is(err, auth.ErrInvalidCredentials):
		status, body.Code = http.StatusUnauthorized, codeUnauthorized
		body.Error = "Unauthorized"
	case errors.As(err, &storageErr):
		if storageErr.NeedsConfiguration {
			status, body.Code = http.StatusServiceUnavailable, codeNeedsConfiguration
			body.Error = "Content storage is not configured. Set KV_REST_API_URL and KV_REST_API_TOKEN or provide a writable CONTENT_DIR."
			body.NeedsConfiguration = true
		} else {
			body.Code = codeStorageUnavailable
			body.Error = "Failed to update content"
		}
	case errors.As(err, &upstreamErr):
		status, body.Code = http.StatusBadGateway, codeUpstream
		body.Error = upstreamErr.Message
		if body.Error == "" {
			body.Error = "Upstream service failed"
		}
	case errors.Is(err, redeploy.ErrNotConfigured):
		status, body.Code = http.StatusServiceUnavailable, codeNeedsConfiguration
		body.Error = "Vercel configuration missing"
		body.NeedsConfiguration = true
	case errors.Is(err, media.ErrNotConfigured):
		status, body.Code = http.StatusServiceUnavailable, codeNeedsConfiguration
		body.Error = "Cloudinary not configured"
		body.NeedsConfiguration = true
	case errors.Is(err, contact.ErrNotConfigured):
		status, body.Code = http.StatusServiceUnavailable, codeNeedsConfiguration
		body.Error = "Web3Forms access key is not configured"
		body.NeedsConfiguration = true
	case errors.Is(err, auth.ErrNoSecret):
		status, body.Code = http.StatusServiceUnavailable, codeNeedsConfiguration
		body.Error = "Admin login is not configured"
		body.NeedsConfiguration = true
	default:
		body.Code = codeInternal
		body.Error = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("code", body.Code),
			zap.String(keyRequestID, c.GetString(keyRequestID)),
			zap.Error(err),
		)
		if s.development {
			body.Message = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}
