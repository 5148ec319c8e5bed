// Package admin exposes the operational HTTP surface: liveness and readiness
// probes plus Prometheus metrics. It is entirely separate from the client
// protocol and never touches domain state beyond read-only counts.
package admin

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// StoreStats reports entity counts from the domain store.
type StoreStats interface {
	Stats() (users, songs, comments int)
}

// StorageChecker verifies the snapshot path is usable.
type StorageChecker interface {
	Check() error
}

// ConnectionCounter reports the number of live client connections.
type ConnectionCounter interface {
	Count() int
}

// NewRouter builds the Echo instance with all admin routes registered.
func NewRouter(stats StoreStats, storage StorageChecker, conns ConnectionCounter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("jukebox_admin"))

	e.GET("/health", liveness)
	e.GET("/health/ready", readiness(stats, storage, conns))
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

func liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
	Users        int                         `json:"users"`
	Songs        int                         `json:"songs"`
	Comments     int                         `json:"comments"`
	Connections  int                         `json:"connections"`
}

// readiness reports degraded when the snapshot directory is not writable.
// The in-memory store itself cannot be "down", so its counts are advisory.
func readiness(stats StoreStats, storage StorageChecker, conns ConnectionCounter) echo.HandlerFunc {
	return func(c echo.Context) error {
		deps := make(map[string]dependencyStatus)
		healthy := true

		if err := storage.Check(); err != nil {
			deps["storage"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["storage"] = dependencyStatus{Status: "ok"}
		}

		users, songs, comments := stats.Stats()
		status := "ok"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		return c.JSON(httpStatus, readinessResponse{
			Status:       status,
			Dependencies: deps,
			Users:        users,
			Songs:        songs,
			Comments:     comments,
			Connections:  conns.Count(),
		})
	}
}
