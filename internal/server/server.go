package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/duelforge/arena-server/internal/config"
	"github.com/duelforge/arena-server/internal/engine"
)

// Server is the HTTP front of the match engine: a WebSocket endpoint for
// match play and a small REST surface for the lobby.
type Server struct {
	cfg    config.ServerConfig
	engine *engine.Engine
	hub    *Hub
	logger *zap.Logger
	http   *http.Server
}

// New wires a server around an engine.
func New(cfg config.ServerConfig, eng *engine.Engine, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		engine: eng,
		hub:    NewHub(eng, cfg, logger),
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.ServeWS)
	mux.HandleFunc("/matches", s.handleCreateMatch)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Run starts the hub and the HTTP listener, blocking until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.cfg.Address))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// createMatchRequest is the lobby's match bootstrap payload. Deck
// validation happened upstream; the engine still refuses unknown card ids.
type createMatchRequest struct {
	MatchID string                   `json:"matchId"`
	Seed    int64                    `json:"seed,omitempty"`
	Sides   map[engine.Side]sideSpec `json:"sides"`
}

type sideSpec struct {
	Name string   `json:"name"`
	Deck []string `json:"deck"`
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b := engine.Bootstrap{
		MatchID: req.MatchID,
		Seed:    req.Seed,
		Sides:   make(map[engine.Side]engine.SideBootstrap, len(req.Sides)),
	}
	for side, spec := range req.Sides {
		b.Sides[side] = engine.SideBootstrap{Name: spec.Name, Deck: spec.Deck}
	}

	m, err := s.engine.CreateMatch(b)
	if err != nil {
		if rej, ok := engine.AsRejection(err); ok {
			writeJSON(w, http.StatusConflict, RejectedMsg{Type: "rejected", Reason: rej.Reason, Detail: rej.Detail})
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"matchId": m.ID,
		"phase":   string(m.Phase),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
