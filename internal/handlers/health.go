package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	IsHealthy() bool
}

// HealthHandler serves GET /healthz.
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a handler over the named checks.
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health returns 200 when every check passes, 503 otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if check.IsHealthy() {
			body[name] = "ok"
			continue
		}
		body[name] = "unhealthy"
		body["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, body)
}
