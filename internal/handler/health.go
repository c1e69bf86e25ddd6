package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"cambiacartas-api/internal/repository"
	"cambiacartas-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	mirror repository.CardMirrorRepository
	pinger func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. pinger checks the cache
// backend and may be nil when no external cache is configured.
func NewHealthHandler(mirror repository.CardMirrorRepository, pinger func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{mirror: mirror, pinger: pinger}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}
	response.OK(w, resp)
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Ready handles GET /api/v1/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := []Check{{Name: "api", Status: "ok"}}

	if h.mirror != nil {
		status := "ok"
		if _, err := h.mirror.CountCards(r.Context()); err != nil {
			status = "error"
		}
		checks = append(checks, Check{Name: "mirror", Status: status})
	}

	if h.pinger != nil {
		status := "ok"
		if err := h.pinger(r.Context()); err != nil {
			status = "error"
		}
		checks = append(checks, Check{Name: "cache", Status: status})
	}

	allReady := true
	for _, check := range checks {
		if check.Status != "ok" {
			allReady = false
		}
	}

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
	if !allReady {
		response.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	response.OK(w, resp)
}

// StatusResponse represents runtime status details.
type StatusResponse struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	MemoryMB   uint64 `json:"memory_mb"`
}

// Status handles GET /api/v1/status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response.OK(w, StatusResponse{
		Uptime:     time.Since(StartTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		MemoryMB:   mem.Alloc / 1024 / 1024,
	})
}
