package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustaka-id/book-ingest/internal/models"
	"github.com/pustaka-id/book-ingest/pkg/logger"
	"github.com/pustaka-id/book-ingest/pkg/queue"
)

type fakeIngester struct {
	task   *models.IngestTask
	result *models.IngestResult
	err    error
}

func (f *fakeIngester) IngestFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, bookID string) (*models.IngestTask, error) {
	return f.task, f.err
}

func (f *fakeIngester) IngestBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.IngestTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.IngestTask{f.task}, nil
}

func (f *fakeIngester) GetStatus(ctx context.Context, taskID string) (*models.IngestTask, error) {
	return f.task, f.err
}

func (f *fakeIngester) GetResult(ctx context.Context, taskID string) (*models.IngestResult, error) {
	return f.result, f.err
}

func (f *fakeIngester) HandleIngest(ctx context.Context, task *queue.Task) error {
	return f.err
}

func (f *fakeIngester) CancelTask(ctx context.Context, taskID string) error {
	return f.err
}

func setupRouter(svc *fakeIngester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookHandler(svc, logger.NewTestLogger())

	r := gin.New()
	r.POST("/ingest", h.IngestBook)
	r.GET("/status/:taskId", h.GetStatus)
	r.GET("/result/:taskId", h.GetResult)
	r.DELETE("/task/:taskId", h.CancelTask)
	return r
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestIngestBook(t *testing.T) {
	svc := &fakeIngester{
		task: &models.IngestTask{
			ID:        "task-1",
			BookID:    "book-1",
			Status:    models.StatusPending,
			CreatedAt: time.Now(),
		},
	}
	r := setupRouter(svc)

	body, contentType := multipartBody(t, "file", "buku.pdf", "%PDF-1.4 fake")
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-1", resp.TaskID)
	assert.Equal(t, "book-1", resp.BookID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "buku.pdf", resp.Filename)
	assert.Equal(t, ".pdf", resp.FileType)
}

func TestIngestBook_MissingFile(t *testing.T) {
	r := setupRouter(&fakeIngester{})

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString("no file here"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestBook_ServiceError(t *testing.T) {
	r := setupRouter(&fakeIngester{err: fmt.Errorf("unsupported file type: .txt")})

	body, contentType := multipartBody(t, "file", "notes.txt", "plain text")
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "unsupported file type")
}

func TestGetStatus(t *testing.T) {
	svc := &fakeIngester{
		task: &models.IngestTask{
			ID:       "task-1",
			Status:   models.StatusRunning,
			Progress: 0.5,
		},
	}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/status/task-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "task-1", resp["taskId"])
	assert.Equal(t, "running", resp["status"])
	assert.Equal(t, 0.5, resp["progress"])
}

func TestGetResult(t *testing.T) {
	svc := &fakeIngester{
		result: &models.IngestResult{
			BookID:      "book-1",
			PagesFolder: "book_images/book-1_a1b2c3d4",
			CoverPath:   "covers/cover_book-1_a1b2c3d4.png",
			PageCount:   12,
			Keywords:    []string{"sejarah", "nusantara"},
		},
	}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/result/task-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.PageCount)
	assert.Equal(t, []string{"sejarah", "nusantara"}, resp.Keywords)
	assert.Equal(t, "book_images/book-1_a1b2c3d4", resp.PagesFolder)
}

func TestCancelTask(t *testing.T) {
	r := setupRouter(&fakeIngester{})

	req := httptest.NewRequest(http.MethodDelete, "/task/task-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
