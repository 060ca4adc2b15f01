package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/response"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(timeout time.Duration, checks map[string]Check) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{
		checks:  checks,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready runs every dependency check and reports 503 if any fails
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			status.Status = "error"
			status.Checks[name] = "failed"
			logger.Warn("Readiness check failed", logger.String("check", name), logger.ErrorField(err))
			continue
		}
		status.Checks[name] = "ok"
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}
