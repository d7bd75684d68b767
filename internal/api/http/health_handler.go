package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository/mongodb"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	store *mongodb.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *mongodb.Store) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

// RegisterRoutes attaches the probe endpoints to the router
func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HandleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.HandleReadiness).Methods(http.MethodGet)
}

// HandleLiveness reports that the process is up
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadiness reports whether the database is reachable
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.Error("Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
