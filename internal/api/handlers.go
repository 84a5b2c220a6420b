package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Zerr0-C00L/EventCast/internal/auth"
	"github.com/Zerr0-C00L/EventCast/internal/config"
	"github.com/Zerr0-C00L/EventCast/internal/services"
)

type Handler struct {
	cfg       *config.Config
	refresher *services.Refresher
	logger    *slog.Logger
}

func NewHandler(cfg *config.Config, refresher *services.Refresher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		refresher: refresher,
		logger:    logger,
	}
}

// GetPlaylist serves the latest refreshed playlist.
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	data := h.refresher.Playlist()
	if data == nil {
		http.Error(w, "Playlist not generated yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Write(data)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStatus returns the refresher state and last-run statistics.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.refresher.Status())
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := auth.CheckCredentials(req.Username, req.Password,
		h.cfg.AdminUsername, h.cfg.AdminPasswordHash); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("Token generation failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// TriggerRefresh starts a refresh pass in the background.
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher.Status().Running {
		writeJSON(w, http.StatusConflict, map[string]string{"status": "already running"})
		return
	}

	go func() {
		if err := h.refresher.Run(context.Background()); err != nil {
			h.logger.Error("Triggered refresh failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
