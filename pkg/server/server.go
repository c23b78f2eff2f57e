package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/suggestbox/suggestbox/pkg/shortcut"
	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// Server exposes the shortcut repository over HTTP.
type Server struct {
	repo   *shortcut.Repository
	router chi.Router
	log    *zap.Logger
	port   int
}

// New creates a new HTTP server around the repository.
func New(repo *shortcut.Repository, log *zap.Logger, port int) *Server {
	if port == 0 {
		port = 8080
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{repo: repo, log: log, port: port}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}

// Run starts the HTTP server and drains it cleanly once ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("server listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/clicks", s.handleReportClick)
		r.Get("/shortcuts", s.handleShortcuts)
		r.Post("/shortcuts/refresh", s.handleRefresh)
		r.Post("/shortcuts/invalidate", s.handleInvalidate)
		r.Get("/ranking", s.handleRanking)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok := true
	if _, err := s.repo.HasHistory(r.Context()); err != nil {
		ok = false
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "store": ok})
}

type clickRequest struct {
	Query      string             `json:"query"`
	Suggestion suggest.Suggestion `json:"suggestion"`
	At         *time.Time         `json:"at,omitempty"`
}

func (s *Server) handleReportClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Suggestion.Source == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "suggestion.source is required"})
		return
	}

	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	if err := s.repo.ReportClickAt(r.Context(), req.Query, req.Suggestion, at); err != nil {
		s.log.Error("report click", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	shortcuts, err := s.repo.ShortcutsFor(r.Context(), query, time.Now())
	if err != nil {
		s.log.Error("get shortcuts", zap.Error(err), zap.String("query", query))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  shortcuts,
		"count": len(shortcuts),
	})
}

type refreshRequest struct {
	Source     suggest.SourceID    `json:"source"`
	ShortcutID string              `json:"shortcut_id"`
	Suggestion *suggest.Suggestion `json:"suggestion,omitempty"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Source == "" || req.ShortcutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source and shortcut_id are required"})
		return
	}

	if err := s.repo.RefreshShortcut(r.Context(), req.Source, req.ShortcutID, req.Suggestion); err != nil {
		s.log.Error("refresh shortcut", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Source == "" || req.ShortcutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source and shortcut_id are required"})
		return
	}

	if err := s.repo.InvalidateShortcut(r.Context(), req.Source, req.ShortcutID); err != nil {
		s.log.Error("invalidate shortcut", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	ranks, err := s.repo.SourceRanking(r.Context(), time.Now())
	if err != nil {
		s.log.Error("source ranking", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  ranks,
		"count": len(ranks),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	has, err := s.repo.HasHistory(r.Context())
	if err != nil {
		s.log.Error("has history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"has_history": has})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.ClearHistory(r.Context()); err != nil {
		s.log.Error("clear history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
