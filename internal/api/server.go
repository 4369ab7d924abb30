// Package api exposes the booking widget's JSON HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"posada/internal/availability"
	"posada/internal/config"
	"posada/internal/events"
	"posada/internal/feed"
	"posada/internal/models"
	"posada/internal/notify"
	"posada/internal/selection"
)

// Server wires the feed loader, availability engine and selection sessions
// behind HTTP handlers.
type Server struct {
	loader   *feed.Loader
	sessions *selection.SessionStore
	notifier notify.Notifier
	bus      *events.Bus
	logger   *zerolog.Logger

	limiter *rate.Limiter
	mirador int

	mu    sync.RWMutex
	rooms []models.RoomConfig

	server *http.Server
}

// NewServer builds the server. rooms may later be refreshed via SetRooms.
func NewServer(cfg *config.Config, loader *feed.Loader, rooms []models.RoomConfig, notifier notify.Notifier, bus *events.Bus, logger *zerolog.Logger) *Server {
	s := &Server{
		loader:   loader,
		sessions: selection.NewSessionStore(cfg.SessionTimeout()),
		notifier: notifier,
		bus:      bus,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(float64(cfg.Booking.RatePerMinute)/60.0), cfg.Booking.Burst),
		mirador:  cfg.Rooms.MiradorRoom,
		rooms:    rooms,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/availability", s.handleAvailability)
	mux.HandleFunc("GET /api/rooms", s.handleRooms)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/{id}/pick", s.handleSessionPick)
	mux.HandleFunc("POST /api/sessions/{id}/clear", s.handleSessionClear)
	mux.HandleFunc("GET /api/sessions/{id}/calendar", s.handleSessionCalendar)
	mux.HandleFunc("POST /api/booking", s.handleBooking)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.logRequests(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe blocks serving requests.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Sessions exposes the session store so main can run expiry cleanup.
func (s *Server) Sessions() *selection.SessionStore {
	return s.sessions
}

// SetRooms swaps the static room metadata; called by the rooms.yaml watcher.
func (s *Server) SetRooms(rooms []models.RoomConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms = rooms
}

func (s *Server) roomConfigs() []models.RoomConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms
}

// index builds the availability index over the current snapshot. A nil
// snapshot (nothing loaded yet) resolves to an empty one: fully occupied.
func (s *Server) index() *availability.Index {
	snap := s.loader.Snapshot()
	if snap == nil {
		now := time.Now().UTC()
		snap = &models.AvailabilitySnapshot{Start: models.MonthOf(now)}
	}
	opts := []availability.Option{}
	if s.mirador != 0 {
		opts = append(opts, availability.WithSingleRoom(s.mirador))
	}
	return availability.NewIndex(snap, s.roomConfigs(), opts...)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
