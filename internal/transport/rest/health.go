package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/binia1/hyobinwiki/internal/service/wiki"
)

// storePinger defines the minimal interface for document store health checks.
type storePinger interface {
	Ping(ctx context.Context) error
}

// syncStatus reports the local cache's load state.
type syncStatus interface {
	Status() wiki.Status
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store   storePinger
	sync    syncStatus
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(store storePinger, sync syncStatus, version string) *HealthHandler {
	return &HealthHandler{store: store, sync: sync, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 once the store answers and the cache
// has finished its first load, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil || h.sync.Status().Loading {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check with store latency, sync state and version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	err := h.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		components["store"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		components["store"] = CompStatus{
			Status:  "ok",
			Latency: latency.String(),
		}
	}

	switch st := h.sync.Status(); {
	case st.Error != "":
		components["sync"] = CompStatus{Status: "down", Error: st.Error}
		overallStatus = "down"
	case st.Loading:
		components["sync"] = CompStatus{Status: "loading"}
		if overallStatus == "ok" {
			overallStatus = "loading"
		}
	default:
		components["sync"] = CompStatus{Status: "ok"}
	}

	status := http.StatusOK
	if overallStatus == "down" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
