// handlers_files_test.go - Tests for drop zone file handlers
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/filedrop/backend/internal/models"
	"github.com/filedrop/backend/internal/testutil"
)

func newFileHandler(t *testing.T) (FileHandler, *testutil.Fixture) {
	t.Helper()
	fx := testutil.NewFixture(t)
	return NewFileHandler(fx.Tracker, fx.Store, fx.Hub), fx
}

func TestFileHandler_HandleIntake(t *testing.T) {
	tests := []struct {
		name       string
		request    intakeRequest
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{
			name: "single file",
			request: intakeRequest{Files: []intakeFile{
				{Name: "test.txt", Type: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("hello"))},
			}},
			wantStatus: http.StatusCreated,
		},
		{
			name: "batch keeps order",
			request: intakeRequest{Files: []intakeFile{
				{Name: "a.png", Type: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("a"))},
				{Name: "b.mp4", Type: "video/mp4", Data: base64.StdEncoding.EncodeToString([]byte("b"))},
			}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty batch",
			request:    intakeRequest{},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name: "missing name",
			request: intakeRequest{Files: []intakeFile{
				{Name: "", Data: base64.StdEncoding.EncodeToString([]byte("x"))},
			}},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name: "invalid base64",
			request: intakeRequest{Files: []intakeFile{
				{Name: "test.txt", Data: "not-valid-base64!!!"},
			}},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newFileHandler(t)

			e := echo.New()
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/api/files/upload", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleIntake(c)

			if tt.wantErr {
				require.Error(t, err)
				apiErr, ok := err.(*APIError)
				require.True(t, ok, "expected APIError, got %T", err)
				assert.Equal(t, tt.wantStatus, apiErr.Status)
				assert.Equal(t, tt.errCode, apiErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var records []models.Record
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
			require.Len(t, records, len(tt.request.Files))
			for i, r := range records {
				assert.Equal(t, tt.request.Files[i].Name, r.Name)
				assert.Equal(t, 0, r.Progress)
				assert.NotEmpty(t, r.ID)
			}
		})
	}
}

func TestFileHandler_HandleIntakeBinary(t *testing.T) {
	handler, fx := newFileHandler(t)
	e := echo.New()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, name := range []string{"first.txt", "second.txt"} {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		part.Write([]byte("content of " + name))
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload/binary", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.HandleIntakeBinary(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var records []models.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "first.txt", records[0].Name)
	assert.Equal(t, "second.txt", records[1].Name)
	assert.Equal(t, 2, fx.Store.Len())
}

func TestFileHandler_HandleIntakeBinary_NoFiles(t *testing.T) {
	handler, _ := newFileHandler(t)
	e := echo.New()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	writer.WriteField("unrelated", "value")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload/binary", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.HandleIntakeBinary(c)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestFileHandler_HandleListFiles(t *testing.T) {
	handler, fx := newFileHandler(t)
	fx.IntakeOne(t, "a.txt", "text/plain", []byte("x"))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.HandleListFiles(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "a.txt", snap.Records[0].Name)
	assert.Greater(t, snap.Version, int64(0))
}

func TestFileHandler_HandleListFilesMsgpack(t *testing.T) {
	handler, fx := newFileHandler(t)
	fx.IntakeOne(t, "a.txt", "text/plain", []byte("x"))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/files/msgpack", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.HandleListFilesMsgpack(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))

	var snap models.Snapshot
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, fx.Tracker.Snapshot().Version, snap.Version)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "a.txt", snap.Records[0].Name)
}

func TestFileHandler_HandleGetFile(t *testing.T) {
	handler, fx := newFileHandler(t)
	id := fx.IntakeOne(t, "a.txt", "text/plain", []byte("x"))
	e := echo.New()

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(id)

		require.NoError(t, handler.HandleGetFile(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"a.txt"`)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.HandleGetFile(c)
		require.Error(t, err)
		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	})
}

func TestFileHandler_HandleDownloadFile(t *testing.T) {
	handler, fx := newFileHandler(t)
	id := fx.IntakeOne(t, "a.txt", "text/plain", []byte("hello world"))
	e := echo.New()

	download := func(target string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(target)
		return rec, handler.HandleDownloadFile(c)
	}

	// Still uploading: download is rejected.
	_, err := download(id)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	// Unknown id: 404.
	_, err = download("missing")
	require.Error(t, err)
	apiErr, ok = err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	// Completed: bytes stream back under the original name.
	fx.Tracker.Complete(id)
	rec, err := download(id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `"a.txt"`)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/plain")
}

func TestFileHandler_HandleRemoveFile(t *testing.T) {
	handler, fx := newFileHandler(t)
	id := fx.IntakeOne(t, "a.txt", "text/plain", []byte("x"))
	e := echo.New()

	remove := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(target)
		require.NoError(t, handler.HandleRemoveFile(c))
		return rec
	}

	// Removing an absent id is still a 204 and changes nothing.
	rec := remove("missing")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, fx.Tracker.Len())

	rec = remove(id)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, fx.Tracker.Len())
	assert.Equal(t, 0, fx.Store.Len())
}
