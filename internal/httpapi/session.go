package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-content/pkg/auth"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (s *Server) login(c *gin.Context) {
	if s.sessions == nil || !s.admin.Configured() {
		s.writeError(c, auth.ErrNoSecret)
		return
	}
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.writeError(c, auth.ErrInvalidCredentials)
		return
	}
	if err := s.admin.Verify(req.Username, req.Password); err != nil {
		s.logger.Warn("login rejected", zap.String(keyRequestID, c.GetString(keyRequestID)))
		s.writeError(c, err)
		return
	}
	token, expires, err := s.sessions.Issue(s.admin.Username)
	if err != nil {
		s.writeError(c, err)
		return
	}
	http.SetCookie(c.Writer, s.sessions.Cookie(token, expires))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"name": s.admin.Username},
		"expires": expires.UTC(),
	})
}

func (s *Server) logout(c *gin.Context) {
	if s.sessions != nil {
		http.SetCookie(c.Writer, s.sessions.ClearCookie())
	} else {
		http.SetCookie(c.Writer, &http.Cookie{Name: auth.CookieName, Path: "/", MaxAge: -1, HttpOnly: true})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) session(c *gin.Context) {
	if s.sessions != nil {
		if raw, err := c.Cookie(auth.CookieName); err == nil && raw != "" {
			if claims, err := s.sessions.Verify(raw); err == nil {
				c.JSON(http.StatusOK, gin.H{
					"authenticated": true,
					"user":          gin.H{"name": claims.Name},
					"expires":       claims.ExpiresAt.Time.UTC(),
				})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}
