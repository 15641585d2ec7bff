package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/cache"
	"yatube/internal/engine"
	"yatube/internal/handlers"
	"yatube/internal/media"
	"yatube/internal/middleware"
	"yatube/internal/render"
	"yatube/internal/seed"

	"github.com/spf13/cobra"
)

var seedPosts int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  withApp(serve),
}

func init() {
	serveCmd.Flags().IntVar(&seedPosts, "seed", 0, "seed this many demo posts before serving")
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string, a *app) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if seedPosts > 0 {
		config := seed.DefaultConfig()
		config.NumPosts = seedPosts
		stats, err := seed.New(a.svc, config, a.logger).Run(ctx)
		if err != nil {
			a.logger.Warn("seeding finished with errors", "error", err)
		}
		a.logger.Info("seeded store", "users", stats.Users, "posts", stats.Posts, "duration", stats.Duration)
		if mem, ok := a.store.(*engine.Engine); ok {
			if count, err := mem.PostCount(ctx); err == nil {
				a.logger.Info("in-memory store ready", "posts", count)
			}
		}
	}

	renderer, err := render.New(a.svc.MediaURL)
	if err != nil {
		return err
	}
	sessions := middleware.NewSessions(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenExpiration, !a.cfg.Debug)
	pageCache := cache.New(cache.WithMetrics(a.metrics))

	server := handlers.NewServer(a.svc, renderer, sessions, pageCache, a.metrics, a.logger)
	server.PageCacheTTL = a.cfg.Server.PageCacheTTL
	server.MetricsEnabled = a.cfg.Server.MetricsEnabled
	server.RequestTimeout = a.cfg.Server.RequestTimeout
	if local, ok := a.storage.(*media.LocalStorage); ok {
		server.Media = local.Handler()
		server.MediaPrefix = local.BaseURL
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", httpServer.Addr, "store", a.cfg.Database.Type, "media", a.cfg.Media.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
