package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/contact"
	"github.com/goliatone/go-content/pkg/media"
	"github.com/goliatone/go-content/pkg/redeploy"
)

func (s *Server) redeployStatus(c *gin.Context) {
	if s.redeployer == nil {
		c.JSON(http.StatusOK, redeploy.Status{Message: "Vercel configuration missing"})
		return
	}
	c.JSON(http.StatusOK, s.redeployer.Status())
}

func (s *Server) triggerRedeploy(c *gin.Context) {
	if s.redeployer == nil {
		s.writeError(c, redeploy.ErrNotConfigured)
		return
	}
	ctx := c.Request.Context()
	deployment, err := s.redeployer.Trigger(ctx)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.emit(ctx, activity.BuildRedeployTriggeredEvent(actorFrom(ctx), deployment.ID, "manual"))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Redeploy triggered successfully",
		"deployment": deployment,
	})
}

func (s *Server) upload(c *gin.Context) {
	if s.media == nil || !s.media.Configured() {
		s.writeError(c, media.ErrNotConfigured)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, codeValidation, "File too large")
			return
		}
		fail(c, http.StatusBadRequest, codeValidation, "No file provided")
		return
	}
	file, err := header.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	asset, err := s.media.Upload(ctx, file, media.UploadOptions{
		Folder:   c.PostForm("folder"),
		Filename: header.Filename,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.emit(ctx, activity.BuildMediaUploadedEvent(actorFrom(ctx), asset.PublicID, asset.URL))
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"url":          asset.URL,
		"publicId":     asset.PublicID,
		"format":       asset.Format,
		"resourceType": asset.ResourceType,
	})
}

type signatureRequest struct {
	Timestamp int64  `json:"timestamp"`
	Folder    string `json:"folder"`
}

func (s *Server) uploadSignature(c *gin.Context) {
	if s.media == nil || !s.media.Configured() {
		s.writeError(c, media.ErrNotConfigured)
		return
	}
	var req signatureRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, codeValidation, "Invalid signature request")
			return
		}
	}
	params, err := s.media.Sign(req.Folder, req.Timestamp)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, params)
}

func (s *Server) submitContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, http.StatusBadRequest, codeValidation, "Validation failed")
		return
	}
	if s.relay == nil {
		if err := form.Normalize().Validate(); err != nil {
			s.writeError(c, err)
			return
		}
		s.writeError(c, contact.ErrNotConfigured)
		return
	}
	ctx := c.Request.Context()
	if err := s.relay.Send(ctx, form); err != nil {
		s.writeError(c, err)
		return
	}
	s.emit(ctx, activity.BuildContactSubmittedEvent(uuid.NewString(), form.Normalize().Country))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}
