package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/internal/render"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/auth"
	"github.com/goliatone/go-content/schema"
)

func (s *Server) home(c *gin.Context) {
	if s.renderer == nil {
		fail(c, http.StatusNotFound, codeNotFound, "Not found")
		return
	}
	site, err := s.resolver.ReadAll(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Home(&buf, render.Page{Site: site, WhatsApp: s.whatsapp}); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) healthz(c *gin.Context) {
	state := "disabled"
	if s.health != nil {
		state = s.health()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "kv": state})
}

func (s *Server) getContent(c *gin.Context) {
	section, err := content.ParseSection(c.Query("section"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	doc, trace, err := s.resolver.ReadWithTrace(c.Request.Context(), section)
	if err != nil {
		s.writeError(c, err)
		return
	}
	body := gin.H{"success": true, "data": doc, "source": trace.Source}
	if traced, _ := strconv.ParseBool(c.Query("trace")); traced {
		body["trace"] = trace
	}
	c.JSON(http.StatusOK, body)
}

type putContentRequest struct {
	Section string         `json:"section"`
	Data    map[string]any `json:"data"`
}

func (s *Server) putContent(c *gin.Context) {
	var req putContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, &content.ValidationError{Reason: "request body must be a JSON object with section and data", Err: err})
		return
	}
	section, err := content.ParseSection(req.Section)
	if err != nil {
		s.writeError(c, err)
		return
	}
	doc, err := content.DecodePayload(section, req.Data,
		content.WithSource("request"),
		content.WithPayloadHook(content.AssignItemIDs),
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	result, err := s.resolver.Write(ctx, section, doc)
	if err != nil {
		s.writeError(c, err)
		return
	}

	triggered := s.scheduleRedeploy(ctx, string(section))
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           fmt.Sprintf("%s content updated successfully", section),
		"store":             result.Store,
		"file":              result.File,
		"redeployTriggered": triggered,
	})
}

// scheduleRedeploy starts a detached deployment when auto redeploy is on.
// Its outcome is only logged.
func (s *Server) scheduleRedeploy(ctx context.Context, reason string) bool {
	if !s.autoRedeploy || s.redeployer == nil || !s.redeployer.Status().Configured {
		return false
	}
	actor := actorFrom(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.redeployTimeout)
		defer cancel()
		deployment, err := s.redeployer.Trigger(runCtx)
		if err != nil {
			s.logger.Warn("auto redeploy failed", zap.String("reason", reason), zap.Error(err))
			return
		}
		s.logger.Info("auto redeploy triggered", zap.String("deployment", deployment.ID), zap.String("reason", reason))
		s.emit(runCtx, activity.BuildRedeployTriggeredEvent(actor, deployment.ID, "content."+reason))
	}()
	return true
}

func (s *Server) getSchema(c *gin.Context) {
	raw := c.Query("section")
	if raw == "" {
		all, err := schema.All()
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
		return
	}
	section, err := content.ParseSection(raw)
	if err != nil {
		s.writeError(c, err)
		return
	}
	doc, err := schema.For(section)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) authStatus(c *gin.Context) {
	c.JSON(http.StatusOK, auth.NewStatus(!s.gate.Open(), s.development))
}
