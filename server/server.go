// Package server hosts the conversation agent over HTTP: one chat endpoint,
// session history and lifecycle routes, health and metrics. Each session's
// turns are serialized through a weighted semaphore so the brain never sees
// concurrent input.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/planwise/planwise/agent/brain"
	"github.com/planwise/planwise/agent/metrics"
	"github.com/planwise/planwise/agent/session"
	"github.com/planwise/planwise/internal/profile"
	"github.com/planwise/planwise/store"
)

// sessionEntry is one hosted session: its brain plus the semaphore that
// serializes turns.
type sessionEntry struct {
	brain *brain.Brain
	sem   *semaphore.Weighted
}

type Server struct {
	e *echo.Echo

	profile  *profile.Profile
	store    *store.Store
	sessions *session.Manager
	exporter *metrics.PrometheusExporter

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewServer wires the HTTP layer over the given store. A nil store disables
// persistence; sessions then live only in memory.
func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	sessions := session.NewManager(session.NewMemoryStore(), session.Config{
		HistoryLimit: profile.SessionHistoryLimit,
		FollowUpTTL:  time.Duration(profile.FollowUpTTLSeconds) * time.Second,
	})

	s := &Server{
		e:        e,
		profile:  profile,
		store:    st,
		sessions: sessions,
		exporter: metrics.NewPrometheusExporter(metrics.DefaultConfig()),
		entries:  make(map[string]*sessionEntry),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if profile.ChatRatePerSecond > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				// Health and metrics scrapes are never throttled.
				return c.Path() == "/healthz" || c.Path() == "/metrics"
			},
			Store: middleware.NewRateLimiterMemoryStore(rate.Limit(profile.ChatRatePerSecond)),
		}))
	}

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(s.exporter.Handler()))

	g := e.Group("/api/v1")
	g.POST("/chat", s.handleChat)
	g.GET("/sessions/:id/history", s.handleHistory)
	g.GET("/sessions/:id", s.handleSessionInfo)
	g.DELETE("/sessions/:id", s.handleSessionDelete)

	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to migrate store")
		}
	}

	return s, nil
}

// entry returns the session's brain and turn semaphore, creating both on
// first use.
func (s *Server) entry(sessionID string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[sessionID]; ok {
		return e
	}
	b := brain.New(sessionID, s.sessions)
	b.SetMetrics(s.exporter)
	e := &sessionEntry{
		brain: b,
		sem:   semaphore.NewWeighted(1),
	}
	s.entries[sessionID] = e
	s.exporter.SessionOpened()
	return e
}

func (s *Server) dropEntry(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[sessionID]; ok {
		delete(s.entries, sessionID)
		s.exporter.SessionClosed()
	}
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Start launches the HTTP listener and returns. The caller owns the
// lifecycle; call Shutdown to drain.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	go func() {
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http listener stopped", "error", err)
		}
	}()
	return nil
}

// Shutdown drains the listener and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.e.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown http server")
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}
