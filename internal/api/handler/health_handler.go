package handler

import (
	"context"
	"net/http"
	"time"

	"ecommerce_api/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	storage Pinger
	version string
	log     *zap.Logger
}

// NewHealthHandler accepts a nil storage for the in-memory backend.
func NewHealthHandler(storage Pinger, version string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, version: version, log: log}
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage,omitempty"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.root)
	r.Get("/health", h.live)
	r.Get("/health/ready", h.ready)
}

func (h *HealthHandler) root(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "E-commerce catalog API",
		"version": h.version,
	})
}

func (h *HealthHandler) live(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: h.version})
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		common.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Storage: "memory"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.storage.PingContext(ctx); err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		common.RespondWithJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Storage: "postgres"})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Storage: "postgres"})
}
