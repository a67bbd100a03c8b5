package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/services"
)

// LoginRequest for POST /api/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionHandler exposes the Knora session: login, logout, the current status
// and a server-sent event stream of status changes.
type SessionHandler struct {
	lexicon services.LexiconService
	logger  *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(lexicon services.LexiconService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		lexicon: lexicon,
		logger:  logger.Named("session_handler"),
	}
}

// RegisterRoutes registers the session handler's routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/session", h.Status)
	mux.HandleFunc("GET /api/session/events", h.Events)
}

// Login handles POST /api/login. Rejected credentials are a successful HTTP
// exchange whose data reports success=false.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.lexicon.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, "login", err)
		return
	}

	resp := ApiResponse{Success: result.Success, Data: result}
	if !result.Success {
		resp.Error = "login_failed"
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Logout handles POST /api/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	result, err := h.lexicon.Logout(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, "logout", err)
		return
	}

	resp := ApiResponse{Success: result.Success, Data: result}
	if !result.Success {
		resp.Error = "logout_failed"
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Status handles GET /api/session
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, h.lexicon.Session().Status())
}

// Events handles GET /api/session/events. The current status is sent first,
// then every change. A slow client only sees the latest status.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		if err := ErrorResponse(w, http.StatusInternalServerError, "streaming_unsupported", "streaming is not supported"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Deliveries are serialized by the session, so this is the only sender.
	updates := make(chan models.SessionStatus, 1)
	unsubscribe := h.lexicon.Session().Subscribe(func(status models.SessionStatus) {
		select {
		case <-updates:
		default:
		}
		updates <- status
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("Session event stream closed")
			return
		case status := <-updates:
			data, err := json.Marshal(status)
			if err != nil {
				h.logger.Error("Failed to encode session status", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
