package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/config"
)

// readyTimeout bounds the Knora check behind GET /ready.
const readyTimeout = 5 * time.Second

// UpstreamChecker checks that the Knora API is reachable.
type UpstreamChecker interface {
	Health(ctx context.Context) error
}

// PingResponse describes this process and the Knora instance it talks to.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	KnoraURL    string `json:"knora_url"`
	Ontology    string `json:"ontology"`
}

// ReadyResponse is the body of GET /ready.
type ReadyResponse struct {
	Ready bool   `json:"ready"`
	Knora string `json:"knora"`
	Error string `json:"error,omitempty"`
}

// HealthHandler serves liveness, readiness, process info and metrics.
type HealthHandler struct {
	cfg      *config.Config
	upstream UpstreamChecker
	logger   *zap.Logger
}

func NewHealthHandler(cfg *config.Config, upstream UpstreamChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, upstream: upstream, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /ping", h.Ping)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Health is the liveness check. It never touches Knora.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready answers 200 when Knora is reachable and 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := ReadyResponse{Ready: true, Knora: h.cfg.Knora.BaseURL()}
	status := http.StatusOK
	if err := h.upstream.Health(ctx); err != nil {
		h.logger.Warn("Knora is not reachable", zap.String("knora", resp.Knora), zap.Error(err))
		resp.Ready = false
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	if err := WriteJSON(w, status, resp); err != nil {
		h.logger.Error("Failed to write ready response", zap.Error(err))
	}
}

// Ping reports build and deployment details.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "mls-app-ng",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		KnoraURL:    h.cfg.Knora.BaseURL(),
		Ontology:    h.cfg.Knora.MLSOntology(),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
