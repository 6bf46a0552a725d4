// Package httpapi exposes the landing page, the editor API and the visitor
// endpoints over gin.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/internal/render"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/auth"
	"github.com/goliatone/go-content/pkg/contact"
	"github.com/goliatone/go-content/pkg/media"
	"github.com/goliatone/go-content/pkg/redeploy"
)

// Redeployer requests site rebuilds.
type Redeployer interface {
	Status() redeploy.Status
	Trigger(ctx context.Context) (redeploy.Deployment, error)
}

// MediaHost stores uploaded assets.
type MediaHost interface {
	Configured() bool
	Upload(ctx context.Context, r io.Reader, opts media.UploadOptions) (media.Asset, error)
	Sign(folder string, timestamp int64) (media.SignedParams, error)
}

// InquiryRelay delivers request-access forms.
type InquiryRelay interface {
	Configured() bool
	Send(ctx context.Context, form contact.Form) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.Named("http")
		}
	}
}

// WithGate sets the write authorization gate.
func WithGate(gate auth.Gate) Option {
	return func(s *Server) {
		s.gate = gate
	}
}

// WithAdmin enables the login endpoints.
func WithAdmin(admin auth.Admin, sessions *auth.SessionManager) Option {
	return func(s *Server) {
		s.admin = admin
		s.sessions = sessions
	}
}

// WithRedeployer wires deployment triggers. autoAfterWrite schedules one
// after every successful content write.
func WithRedeployer(r Redeployer, autoAfterWrite bool, timeout time.Duration) Option {
	return func(s *Server) {
		s.redeployer = r
		s.autoRedeploy = autoAfterWrite
		if timeout > 0 {
			s.redeployTimeout = timeout
		}
	}
}

// WithMediaHost wires asset uploads. maxBytes bounds the request body.
func WithMediaHost(host MediaHost, maxBytes int64) Option {
	return func(s *Server) {
		s.media = host
		if maxBytes > 0 {
			s.maxUpload = maxBytes
		}
	}
}

// WithInquiryRelay wires the contact form.
func WithInquiryRelay(relay InquiryRelay) Option {
	return func(s *Server) {
		s.relay = relay
	}
}

// WithRenderer serves the home page.
func WithRenderer(renderer *render.Renderer, whatsapp render.WhatsApp) Option {
	return func(s *Server) {
		s.renderer = renderer
		s.whatsapp = whatsapp
	}
}

// WithEmitter publishes activity for uploads, inquiries and deployments.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(s *Server) {
		s.emitter = emitter
	}
}

// WithHealth reports the store connection state on /healthz.
func WithHealth(fn func() string) Option {
	return func(s *Server) {
		s.health = fn
	}
}

// WithDevelopment includes internal error detail in responses and relaxes
// the admin status.
func WithDevelopment(development bool) Option {
	return func(s *Server) {
		s.development = development
	}
}

// Server holds the handlers' dependencies.
type Server struct {
	resolver        *content.Resolver
	gate            auth.Gate
	admin           auth.Admin
	sessions        *auth.SessionManager
	redeployer      Redeployer
	autoRedeploy    bool
	redeployTimeout time.Duration
	media           MediaHost
	maxUpload       int64
	relay           InquiryRelay
	renderer        *render.Renderer
	whatsapp        render.WhatsApp
	emitter         *activity.Emitter
	health          func() string
	development     bool
	logger          *zap.Logger
	now             func() time.Time

	background sync.WaitGroup
}

// New returns a server reading and writing through resolver.
func New(resolver *content.Resolver, opts ...Option) *Server {
	s := &Server{
		resolver:        resolver,
		redeployTimeout: 20 * time.Second,
		maxUpload:       10 << 20,
		logger:          zap.NewNop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s))
	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, codeNotFound, "Not found")
	})

	r.GET("/", s.home)
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.GET("/content", s.getContent)
	api.PUT("/content", s.requireWrite, s.putContent)
	api.GET("/content/schema", s.getSchema)
	api.GET("/content/auth", s.authStatus)

	api.POST("/auth/login", s.login)
	api.POST("/auth/logout", s.logout)
	api.GET("/auth/session", s.session)

	api.GET("/redeploy", s.redeployStatus)
	api.POST("/redeploy", s.requireWrite, s.triggerRedeploy)

	api.POST("/upload", s.requireWrite, s.upload)
	api.POST("/upload/signature", s.requireWrite, s.uploadSignature)

	api.POST("/contact", s.submitContact)
	return r
}

// Wait blocks until detached work such as automatic redeploys finishes or
// ctx ends.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) emit(ctx context.Context, event activity.Event) {
	if !s.emitter.Enabled() {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("activity hook failed", zap.String("verb", event.Verb), zap.Error(err))
	}
}
