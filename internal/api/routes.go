// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/filedrop/backend/internal/notify"
	"github.com/filedrop/backend/internal/preview"
	"github.com/filedrop/backend/internal/tracker"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Tracker *tracker.Tracker
	Store   preview.Store
	Hub     *notify.Hub
	Version string
}

// Handlers holds all handler instances.
type Handlers struct {
	Health HealthHandler
	Files  FileHandler
	Events *WebSocketHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.Tracker),
		Files:  NewFileHandler(deps.Tracker, deps.Store, deps.Hub),
		Events: NewWebSocketHandler(deps.Tracker, deps.Hub),
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)

	apiGroup := e.Group("/api")

	// WebSocket event feed
	apiGroup.GET("/ws/events", handlers.Events.HandleEvents)

	// Drop zone file routes
	filesGroup := apiGroup.Group("/files")
	filesGroup.POST("/upload", handlers.Files.HandleIntake)
	filesGroup.POST("/upload/binary", handlers.Files.HandleIntakeBinary)
	filesGroup.GET("", handlers.Files.HandleListFiles)
	filesGroup.GET("/msgpack", handlers.Files.HandleListFilesMsgpack)
	filesGroup.GET("/:id", handlers.Files.HandleGetFile)
	filesGroup.GET("/:id/progress", handlers.Files.HandleProgressStream)
	filesGroup.GET("/:id/download", handlers.Files.HandleDownloadFile)
	filesGroup.DELETE("/:id", handlers.Files.HandleRemoveFile)
}
