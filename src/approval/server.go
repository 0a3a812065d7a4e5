package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// maxCallbackBodySize bounds decision payloads (64KB is generous for a
// three-field JSON body).
const maxCallbackBodySize = 64 << 10

// decisionPayload is the workflow service's callback body.
type decisionPayload struct {
	Status         string `json:"status"`
	SelectedOption string `json:"selectedOption"`
	Message        string `json:"message"`
}

// Server is the callback ingress: a minimal HTTP listener that receives the
// workflow service's decision and feeds it into the tracker. It runs on its
// own goroutine so it never blocks the turn-processing path.
type Server struct {
	tracker *Tracker
	logger  *slog.Logger
	httpSrv *http.Server
}

// NewServer creates the ingress bound to the given tracker.
func NewServer(tracker *Tracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{tracker: tracker, logger: logger}
}

// Routes builds the ingress router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Route("/api/approval", func(r chi.Router) {
		r.Post("/callback/{approvalID}", s.handleCallback)
		r.Get("/status/{approvalID}", s.handleStatus)
		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/clear", s.handleClearNotifications)
	})
	return r
}

// Start begins serving on addr in a background goroutine.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("callback server failed", "error", err)
			ln <- err
		}
	}()

	// Give an immediate bind failure a moment to surface.
	select {
	case err := <-ln:
		return err
	case <-time.After(100 * time.Millisecond):
	}

	s.logger.Info("callback server started", "addr", addr)
	return nil
}

// Shutdown stops the ingress gracefully. Safe to call when never started.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	approvalID := chi.URLParam(r, "approvalID")
	if approvalID == "" {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":  "invalid callback URL format",
			"status": "error",
		})
		return
	}

	var payload decisionPayload
	body := http.MaxBytesReader(w, r.Body, maxCallbackBodySize)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		s.logger.Error("invalid JSON in callback", "approval_id", approvalID, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  fmt.Sprintf("invalid JSON: %v", err),
			"status": "error",
		})
		return
	}

	rec, err := s.tracker.Resolve(approvalID, payload.Status, payload.SelectedOption, payload.Message)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":  fmt.Sprintf("Approval ID %s not found", approvalID),
				"status": "error",
			})
			return
		}
		s.logger.Error("error handling approval decision", "approval_id", approvalID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"status": "error",
		})
		return
	}

	s.logger.Info("approval processed", "approval_id", approvalID, "status", payload.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"message":       fmt.Sprintf("Approval %s processed: %s", approvalID, payload.Status),
		"approval_data": rec,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	approvalID := chi.URLParam(r, "approvalID")

	state, rec, err := s.tracker.Status(approvalID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status":  "error",
			"message": fmt.Sprintf("Approval ID %s not found", approvalID),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"approval_status": state,
		"data":            rec,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notifications := s.tracker.Drain()
	writeJSON(w, http.StatusOK, NotificationsResult(notifications))
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearShown()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Notifications cleared",
	})
}

// NotificationsResult is the check_notifications response shape shared by the
// HTTP endpoint and the agent tool.
func NotificationsResult(notifications []Notification) map[string]any {
	if notifications == nil {
		notifications = []Notification{}
	}
	return map[string]any{
		"status":            "success",
		"has_notifications": len(notifications) > 0,
		"notifications":     notifications,
		"count":             len(notifications),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
