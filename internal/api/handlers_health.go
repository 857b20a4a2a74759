// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filedrop/backend/internal/tracker"
)

// HealthHandlerImpl implements the HealthHandler interface.
type HealthHandlerImpl struct {
	version string
	tracker *tracker.Tracker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string, trk *tracker.Tracker) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		tracker: trk,
	}
}

// HandleHealth returns server health status.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"version":      h.version,
		"trackedFiles": h.tracker.Len(),
	})
}
