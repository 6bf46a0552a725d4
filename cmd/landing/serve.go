package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/internal/httpapi"
	"github.com/goliatone/go-content/internal/render"
	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/auth"
	"github.com/goliatone/go-content/pkg/contact"
	"github.com/goliatone/go-content/pkg/media"
	"github.com/goliatone/go-content/pkg/redeploy"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the landing page and editor API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	cmd.Flags().BoolVar(&watch, "watch", false, "report external edits to the content directory")
	return cmd
}

func (a *app) serve(ctx context.Context, watch bool) error {
	svc, err := a.services()
	if err != nil {
		return err
	}
	defer svc.close()

	if a.cfg.KV.Configured() {
		if err := svc.conn.Connect(ctx); err != nil {
			a.logger.Warn("content store unavailable, reads fall back to files", zap.Error(err))
		}
	}

	api, err := a.httpServer(svc)
	if err != nil {
		return err
	}
	if !a.cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	if watch {
		go a.watchFiles(ctx, svc)
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", a.cfg.Addr), zap.Bool("development", a.cfg.Development()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return api.Wait(shutdownCtx)
}

func (a *app) httpServer(svc *services) (*httpapi.Server, error) {
	cfg := a.cfg

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	var sessions *auth.SessionManager
	if cfg.Auth.SessionSecret != "" {
		sessions, err = auth.NewSessionManager(cfg.Auth.SessionSecret,
			auth.WithMaxAge(cfg.Auth.SessionMaxAge),
			auth.WithSecureCookie(!cfg.Development()),
		)
		if err != nil {
			return nil, err
		}
	}

	uploader, err := media.New(cfg.Media)
	if err != nil {
		return nil, err
	}

	opts := []httpapi.Option{
		httpapi.WithLogger(a.logger),
		httpapi.WithDevelopment(cfg.Development()),
		httpapi.WithGate(auth.Gate{EditToken: cfg.Content.EditToken, Sessions: sessions}),
		httpapi.WithAdmin(auth.NewAdmin(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash), sessions),
		httpapi.WithRedeployer(redeploy.New(cfg.Redeploy, nil), cfg.Content.AutoRedeploy, cfg.Content.RedeployTimeout),
		httpapi.WithMediaHost(uploader, cfg.Server.MaxUpload),
		httpapi.WithInquiryRelay(contact.NewRelay(cfg.Contact, nil)),
		httpapi.WithRenderer(renderer, render.WhatsApp{Phone: cfg.WhatsApp.Phone, Message: cfg.WhatsApp.Message}),
		httpapi.WithEmitter(svc.emitter),
		httpapi.WithHealth(func() string { return svc.conn.State().String() }),
	}
	return httpapi.New(svc.resolver, opts...), nil
}

func (a *app) watchFiles(ctx context.Context, svc *services) {
	logger := a.logger.Named("watch")
	err := svc.files.Watch(ctx, func(section content.Section, path string) {
		logger.Info("content file changed", zap.String("section", string(section)), zap.String("path", path))
		event := activity.BuildFileChangedEvent(string(section), path, time.Now())
		if err := svc.emitter.Emit(ctx, event); err != nil {
			logger.Warn("activity hook failed", zap.Error(err))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("content watch stopped", zap.Error(err))
	}
}
