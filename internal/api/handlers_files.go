// handlers_files.go - Drop zone file operation handlers
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/filedrop/backend/internal/models"
	"github.com/filedrop/backend/internal/notify"
	"github.com/filedrop/backend/internal/preview"
	"github.com/filedrop/backend/internal/tracker"
)

// FileHandlerImpl implements the FileHandler interface.
type FileHandlerImpl struct {
	tracker *tracker.Tracker
	store   preview.Store
	hub     *notify.Hub
}

// NewFileHandler creates a new file handler instance.
func NewFileHandler(trk *tracker.Tracker, store preview.Store, hub *notify.Hub) FileHandler {
	return &FileHandlerImpl{
		tracker: trk,
		store:   store,
		hub:     hub,
	}
}

// HandleIntake accepts a batch of files as base64 JSON and starts tracking
// them. Files of any type and size are accepted.
func (h *FileHandlerImpl) HandleIntake(c echo.Context) error {
	var req intakeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	batch := make([]tracker.IntakeFile, 0, len(req.Files))
	for _, f := range req.Files {
		decoded, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return NewBadRequestError(fmt.Sprintf("invalid base64 data for %s", f.Name), err)
		}
		batch = append(batch, tracker.IntakeFile{
			Name:     f.Name,
			MimeType: f.Type,
			Data:     decoded,
		})
	}

	records := h.tracker.Intake(batch)
	return c.JSON(http.StatusCreated, records)
}

// HandleIntakeBinary accepts raw files via multipart/form-data. Multiple
// "files" parts make up one intake batch.
func (h *FileHandlerImpl) HandleIntakeBinary(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}

	parts := form.File["files"]
	if len(parts) == 0 {
		return NewValidationError("files")
	}

	batch := make([]tracker.IntakeFile, 0, len(parts))
	for _, part := range parts {
		src, err := part.Open()
		if err != nil {
			return NewInternalError("failed to open uploaded file", err)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return NewInternalError("failed to read uploaded file", err)
		}
		batch = append(batch, tracker.IntakeFile{
			Name:     part.Filename,
			MimeType: part.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	records := h.tracker.Intake(batch)
	return c.JSON(http.StatusCreated, records)
}

// HandleListFiles returns the current snapshot of tracked records.
func (h *FileHandlerImpl) HandleListFiles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.tracker.Snapshot())
}

// HandleListFilesMsgpack returns the snapshot msgpack-encoded for clients
// polling at high frequency.
func (h *FileHandlerImpl) HandleListFilesMsgpack(c echo.Context) error {
	data, err := msgpack.Marshal(h.tracker.Snapshot())
	if err != nil {
		return NewInternalError("failed to encode snapshot", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleGetFile returns a single tracked record.
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, ok := h.tracker.Get(id)
	if !ok {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleProgressStream streams a record's progress via SSE until it
// completes or disappears.
func (h *FileHandlerImpl) HandleProgressStream(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	rec, ok := h.tracker.Get(id)
	if !ok {
		h.sendSSEError(c, "record not found")
		return nil
	}
	h.sendSSEData(c, rec)
	if rec.Progress >= 100 {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			rec, ok := h.tracker.Get(id)
			if !ok {
				h.sendSSEError(c, "record removed")
				return nil
			}
			h.sendSSEData(c, rec)
			if rec.Progress >= 100 {
				return nil
			}
		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

// HandleDownloadFile serves a completed record's bytes under its original
// name. Records still uploading cannot be downloaded.
func (h *FileHandlerImpl) HandleDownloadFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, blob, err := h.tracker.Retrieve(id)
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrNotFound):
			return NewNotFoundError("file", id)
		case errors.Is(err, tracker.ErrNotComplete):
			return NewConflictError("upload still in progress")
		default:
			return NewInternalError("failed to retrieve file", err)
		}
	}

	rc, err := h.store.Open(blob.ID)
	if err != nil {
		return NewInternalError("failed to open preview blob", err)
	}
	defer rc.Close()

	h.hub.Publish(notify.DownloadStarted(rec.ID, rec.Name))

	contentType := rec.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, rec.Name))
	return c.Stream(http.StatusOK, contentType, rc)
}

// HandleRemoveFile removes a record. Removing an unknown id is still a 204;
// the operation must never fail.
func (h *FileHandlerImpl) HandleRemoveFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	h.tracker.Remove(id)
	return c.NoContent(http.StatusNoContent)
}

// SSE helpers

func (h *FileHandlerImpl) sendSSEData(c echo.Context, rec models.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Response(), "data: %s\n\n", data)
	c.Response().Flush()
}

func (h *FileHandlerImpl) sendSSEError(c echo.Context, message string) {
	fmt.Fprintf(c.Response(), "event: error\ndata: {\"message\":%q}\n\n", message)
	c.Response().Flush()
}

// Request types

type intakeFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"` // Base64-encoded content
}

type intakeRequest struct {
	Files []intakeFile `json:"files"`
}

func (r *intakeRequest) validate() error {
	if len(r.Files) == 0 {
		return NewValidationError("files")
	}
	for _, f := range r.Files {
		if f.Name == "" {
			return NewValidationError("name")
		}
	}
	return nil
}
