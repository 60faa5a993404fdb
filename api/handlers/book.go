package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/pustaka-id/book-ingest/internal/service/book"
	"github.com/pustaka-id/book-ingest/pkg/logger"
)

type BookHandler struct {
	service book.Ingester
	logger  logger.Logger
}

// IngestResponse describes one accepted upload.
type IngestResponse struct {
	TaskID    string `json:"taskId"`
	BookID    string `json:"bookId"`
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"fileSize"`
	FileType  string `json:"fileType"`
	CreatedAt string `json:"createdAt"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewBookHandler(service book.Ingester, logger logger.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger,
	}
}

// IngestBook accepts a single PDF upload and queues it for analysis. An
// optional bookId form field ties the task to an existing catalog record.
func (h *BookHandler) IngestBook(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	bookID := c.PostForm("bookId")

	task, err := h.service.IngestFile(c.Request.Context(), file, header, bookID)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to ingest file", err)
		return
	}

	c.JSON(http.StatusOK, IngestResponse{
		TaskID:    task.ID,
		BookID:    task.BookID,
		Status:    string(task.Status),
		Filename:  header.Filename,
		FileSize:  header.Size,
		FileType:  filepath.Ext(header.Filename),
		CreatedAt: task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// IngestBatch queues several PDF uploads at once.
func (h *BookHandler) IngestBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid form data", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.handleError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	tasks, err := h.service.IngestBatch(c.Request.Context(), files)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to ingest files", err)
		return
	}

	responses := make([]IngestResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = IngestResponse{
			TaskID:    task.ID,
			BookID:    task.BookID,
			Status:    string(task.Status),
			Filename:  task.Metadata["filename"],
			CreatedAt: task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Ingesting %d books", len(tasks)),
		"tasks":   responses,
	})
}

// GetStatus reports where a task is in the queue.
func (h *BookHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	task, err := h.service.GetStatus(c.Request.Context(), taskID)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to get status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskId":    task.ID,
		"status":    string(task.Status),
		"progress":  task.Progress,
		"error":     task.Error,
		"metadata":  task.Metadata,
		"createdAt": task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"updatedAt": task.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetResult returns the ingest result for a completed task: page folder,
// cover path, page count, and keywords.
func (h *BookHandler) GetResult(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	result, err := h.service.GetResult(c.Request.Context(), taskID)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to get result", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelTask removes a pending ingest task.
func (h *BookHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	if err := h.service.CancelTask(c.Request.Context(), taskID); err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to cancel task", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task cancelled successfully",
		"taskId":  taskID,
	})
}

func (h *BookHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
