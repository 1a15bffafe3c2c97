package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Post("/sessions", startSessionHandler(cfg))
	r.Get("/sessions", listSessionsHandler(cfg))
	r.Get("/sessions/{id}", getSessionHandler(cfg))
	r.Post("/sessions/{id}/messages", postMessageHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func startSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, reply, err := cfg.Orchestrator.Start(r.Context())
		if err != nil {
			cfg.Logger.Error("start session", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to start session", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusCreated, StartSessionResponse{
			Session: SessionToResponse(session),
			Reply:   reply,
		})
	}
}

func listSessionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := cfg.Sessions.List()
		if err != nil {
			cfg.Logger.Error("list sessions", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to list sessions", "INTERNAL_ERROR")
			return
		}

		resp := SessionsResponse{Sessions: make([]SessionResponse, 0, len(ids))}
		for _, id := range ids {
			session, err := cfg.Sessions.Load(id)
			if err != nil {
				cfg.Logger.Warn("skip unreadable session", "session", id, "error", err)
				continue
			}
			resp.Sessions = append(resp.Sessions, SessionToResponse(session))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := cfg.Sessions.Load(chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(session))
	}
}

func postMessageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			WriteError(w, http.StatusBadRequest, "text is required", "BAD_REQUEST")
			return
		}

		session, reply, err := cfg.Orchestrator.HandleMessage(r.Context(), id, req.Text)
		if err != nil {
			if session == nil {
				WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
				return
			}
			// The workflow failed but the session itself is intact;
			// report the failure as the turn's reply.
			WriteJSON(w, http.StatusOK, MessageResponse{
				Session: SessionToResponse(session),
				Reply:   "Workflow failed: " + err.Error(),
			})
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{
			Session: SessionToResponse(session),
			Reply:   reply,
		})
	}
}
