// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 5 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name   string
	pinger Pinger
}

// Handler serves liveness and readiness. Readiness pings every registered
// dependency concurrently; liveness only reports the shutdown flag so the
// orchestrator keeps routing away from a draining instance.
type Handler struct {
	deps     []dependency
	draining atomic.Bool
}

func NewHandler(db, redis Pinger) *Handler {
	return &Handler{
		deps: []dependency{
			{name: "database", pinger: db},
			{name: "redis", pinger: redis},
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// SetDraining flips both probes to failing ahead of graceful shutdown.
func (h *Handler) SetDraining() {
	h.draining.Store(true)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		writeStatus(w, http.StatusServiceUnavailable, probeResponse{
			Status: "shutting_down",
		})
		return
	}

	writeStatus(w, http.StatusOK, probeResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		writeStatus(w, http.StatusServiceUnavailable, probeResponse{
			Status: "shutting_down",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.pingAll(ctx)

	status, code := "ok", http.StatusOK
	for _, check := range checks {
		if !check.Healthy {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, code, probeResponse{Status: status, Checks: checks})
}

func (h *Handler) pingAll(ctx context.Context) []checkResult {
	results := make([]checkResult, len(h.deps))

	var wg sync.WaitGroup
	for i, dep := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = ping(ctx, dep)
		}()
	}
	wg.Wait()

	return results
}

func ping(ctx context.Context, dep dependency) checkResult {
	result := checkResult{Name: dep.name, Healthy: true}

	if dep.pinger == nil {
		result.Healthy = false
		result.Message = "not configured"
		return result
	}

	start := time.Now()
	if err := dep.pinger.Ping(ctx); err != nil {
		result.Healthy = false
		result.Message = "ping failed"
	}
	result.Latency = time.Since(start).String()

	return result
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type probeResponse struct {
	Status string        `json:"status"`
	Checks []checkResult `json:"checks,omitempty"`
}

type checkResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
