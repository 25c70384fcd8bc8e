package observability

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	StatusHealthy  = "healthy"
	StatusStarting = "starting"
)

// RunStatus describes the most recent check run
type RunStatus struct {
	Outcome     string    `json:"outcome"`
	Files       int       `json:"files"`
	Diagnostics int       `json:"diagnostics"`
	FinishedAt  time.Time `json:"finished_at"`
}

// HealthStatus is the body of the health endpoints
type HealthStatus struct {
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	LastRun   *RunStatus `json:"last_run,omitempty"`
}

// HealthChecker reports liveness and readiness of watch mode. It is
// ready once the first run has finished.
type HealthChecker struct {
	mu      sync.RWMutex
	lastRun *RunStatus
}

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

// RecordRun stores the status of a finished run
func (h *HealthChecker) RecordRun(status RunStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = &status
}

// LastRun returns the most recent run, if any
func (h *HealthChecker) LastRun() (RunStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.lastRun == nil {
		return RunStatus{}, false
	}
	return *h.lastRun, true
}

// Liveness always returns 200 while the process is running
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now()})
}

// Readiness returns 503 until the first run has finished
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	run, ok := h.LastRun()
	if !ok {
		writeHealth(w, http.StatusServiceUnavailable, HealthStatus{Status: StatusStarting, Timestamp: time.Now()})
		return
	}
	writeHealth(w, http.StatusOK, HealthStatus{Status: StatusHealthy, Timestamp: time.Now(), LastRun: &run})
}

// RegisterHealthEndpoints registers /healthz and /readyz
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Liveness)
	mux.HandleFunc("/readyz", h.Readiness)
}

func writeHealth(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
