package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

const sessionName = "ibrox-admin"

// Server is the dashboard HTTP server.
type Server struct {
	app          *App
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
}

// NewServer creates a server for app.
func NewServer(app *App) *Server {
	sessionStore := sessions.NewCookieStore([]byte(app.cfg.SessionSecret))
	sessionStore.MaxAge(86400) // one day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Secure = false

	return &Server{
		app:          app,
		sessionStore: sessionStore,
		port:         app.cfg.Port,
		watch:        app.cfg.Watch,
	}
}

// Routes returns the router with every dashboard, API and admin route.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleDashboard)
	r.Get("/h2h", s.handleHeadToHead)
	r.Get("/team", s.handleTeam)
	r.Get("/season", s.handleSeason)
	r.Get("/players/{name}/matches.csv", s.handlePlayerMatchesCSV)

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handleAPIPlayers)
		r.Get("/players/{name}", s.handleAPIPlayer)
		r.Get("/h2h", s.handleAPIHeadToHead)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", s.handleAdmin)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/matches", s.handleAddMatch)
			r.Post("/matches/{row}", s.handleUpdateMatch)
			r.Post("/matches/{row}/delete", s.handleDeleteMatch)
			r.Post("/import", s.handleImport)
			r.Get("/export", s.handleExport)
			r.Post("/clear", s.handleClear)
		})
	})
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.app.logger.Info("starting dashboard", "addr", fmt.Sprintf("http://localhost:%d", s.port), "data", s.app.store.Path())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return watchDataFile(egctx, s.app.store, s.app.logger)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.app.logger.Debug("shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
