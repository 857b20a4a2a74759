package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/filedrop/backend/internal/api"
	"github.com/filedrop/backend/internal/config"
	"github.com/filedrop/backend/internal/notify"
	"github.com/filedrop/backend/internal/preview"
	"github.com/filedrop/backend/internal/tracker"
	"github.com/filedrop/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("FILEDROP_CONFIG")
	if configPath == "" {
		configPath = "filedrop.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	embeddedMode := web.HasEmbeddedFiles()

	store := preview.NewMemStore()
	hub := notify.NewHub()
	trk := tracker.New(tracker.Config{
		TickInterval:  cfg.TickInterval(),
		CompleteDelay: cfg.CompleteDelay(),
	}, store, hub)
	defer trk.Close()

	handlers := api.NewHandlers(&api.Dependencies{
		Tracker: trk,
		Store:   store,
		Hub:     hub,
		Version: Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/health" ||
				strings.HasSuffix(path, "/progress") ||
				strings.HasPrefix(path, "/api/ws/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Accept") == "text/event-stream" ||
				strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)

	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded widget from binary")
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("FileDrop server %s (built %s)\n", Version, BuildTime)
	fmt.Printf("  Config: %s\n", configPath)
	fmt.Printf("  Listen: http://%s\n", cfg.GetServerAddr())
	fmt.Printf("  Widget tick: %s, completion delay: %s\n", cfg.TickInterval(), cfg.CompleteDelay())
	if embeddedMode {
		fmt.Printf("\nOpen http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}
