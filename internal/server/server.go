// Package server provides the HTTP surface of the MCP server: the SSE
// stream, the message intake endpoint, the documentation page, and the
// JSON-RPC method routing behind them.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"toolbelt-mcp/internal/mcp"
	"toolbelt-mcp/internal/session"
	"toolbelt-mcp/internal/tool"
)

const messagesPath = "/messages"

// Config contains server configuration values.
type Config struct {
	Port         string
	MaxBodyBytes int64
	Version      string
}

// Server contains the configured router, tool registry, dispatch
// engine, and session manager.
type Server struct {
	cfg      Config
	router   *chi.Mux
	logger   *slog.Logger
	registry *tool.Registry
	engine   *tool.Engine
	sessions *session.Manager
}

// New constructs a Server with middleware and routes configured. A nil
// logger falls back to slog.Default().
func New(cfg Config, reg *tool.Registry, engine *tool.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		registry: reg,
		engine:   engine,
	}
	s.sessions = session.NewManager(s.route, logger)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// The stream must outlive any request timeout, so /sse mounts
	// outside the Timeout group.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", s.handleDocs)
		r.Get("/healthz", s.handleHealth)
		r.Post(messagesPath, s.handleMessages)
	})
	s.router.Get("/sse", s.handleSSE)

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// Sessions exposes the session manager for lifecycle control.
func (s *Server) Sessions() *session.Manager { return s.sessions }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	s.sessions.ServeSSE(w, r, messagesPath)
}

// handleMessages accepts one JSON-RPC message and enqueues it on the
// session named by ?sessionId=. The response travels over the SSE
// stream, so a successful enqueue answers 202.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req mcp.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json-rpc payload")
		return
	}
	if req.Method == "" {
		writeJSONError(w, http.StatusBadRequest, "missing method")
		return
	}

	switch err := s.sessions.Deliver(r.Context(), sessionID, &req); {
	case errors.Is(err, session.ErrUnknownSession), errors.Is(err, session.ErrClosed):
		writeJSONError(w, http.StatusNotFound, "unknown session")
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, "enqueue failed")
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
