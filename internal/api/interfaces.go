// interfaces.go - Handler interface definitions
package api

import "github.com/labstack/echo/v4"

// FileHandler handles drop zone file operations.
type FileHandler interface {
	HandleIntake(c echo.Context) error
	HandleIntakeBinary(c echo.Context) error
	HandleListFiles(c echo.Context) error
	HandleListFilesMsgpack(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleProgressStream(c echo.Context) error
	HandleDownloadFile(c echo.Context) error
	HandleRemoveFile(c echo.Context) error
}

// HealthHandler handles health check operations.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
