// Package server exposes a completed or running analysis over HTTP for the
// viewer shell.
//
// # Routes
//
//   - GET /healthz        liveness probe
//   - GET /api/state      current pipeline state
//   - GET /api/snapshot   analysis snapshot (503 until the pipeline is ready)
//   - GET /api/prefs      persisted view preferences
//   - PUT /api/prefs      update view preferences
//
// The server only reads the pipeline's published state; it never touches
// the artifact tree before the pipeline reaches its ready state. View
// preferences belong to the shell, not the analyzer core, and are persisted
// through a [prefs.Store].
package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archmap/pkg/pipeline"
	"github.com/matzehuels/archmap/pkg/server/prefs"
	"github.com/matzehuels/archmap/pkg/snapshot"
)

// Server serves one pipeline's results and the shell's preferences.
type Server struct {
	ctrl   *pipeline.Controller
	prefs  prefs.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server for the given controller. A nil prefs store falls
// back to in-memory storage; a nil logger falls back to log.Default().
func New(ctrl *pipeline.Controller, store prefs.Store, logger *log.Logger) *Server {
	if store == nil {
		store = prefs.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{ctrl: ctrl, prefs: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/state", s.handleState)
	r.Get("/api/snapshot", s.handleSnapshot)
	r.Get("/api/prefs", s.handleGetPrefs)
	r.Put("/api/prefs", s.handlePutPrefs)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// stateResponse is the wire form of a pipeline state.
type stateResponse struct {
	Kind    string `json:"kind"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.State()
	s.writeJSON(w, http.StatusOK, stateResponse{
		Kind:    state.Kind.String(),
		Step:    state.Step.String(),
		Message: state.Message,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.State()
	if state.Kind != pipeline.StateReady || state.Result == nil {
		s.writeError(w, http.StatusServiceUnavailable, "analysis not ready: "+state.Describe())
		return
	}
	data, err := snapshot.Marshal(state.Result.Snapshot)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := s.prefs.Get(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var p prefs.Prefs
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid preferences: "+err.Error())
		return
	}
	if err := s.prefs.Set(r.Context(), p); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "cause", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
