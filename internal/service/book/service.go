package book

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cfg "github.com/pustaka-id/book-ingest/config"
	"github.com/pustaka-id/book-ingest/internal/models"
	"github.com/pustaka-id/book-ingest/internal/pipeline"
	"github.com/pustaka-id/book-ingest/pkg/logger"
	"github.com/pustaka-id/book-ingest/pkg/queue"
	"github.com/pustaka-id/book-ingest/pkg/storage"
)

type Service struct {
	analyzer Analyzer
	queue    queue.Queue
	storage  storage.Storage
	logger   logger.Logger
	config   *ServiceConfig
}

type ServiceConfig struct {
	MaxFileSize   int64
	ScratchDir    string
	QueuePriority int
	MaxKeywords   int
}

func NewService(
	analyzer Analyzer,
	q queue.Queue,
	store storage.Storage,
	log logger.Logger,
	config *ServiceConfig,
) Ingester {
	if config == nil {
		config = &ServiceConfig{
			MaxFileSize: 50 * 1024 * 1024, // 50MB
			ScratchDir:  os.TempDir(),
			MaxKeywords: 10,
		}
	}

	return &Service{
		analyzer: analyzer,
		queue:    q,
		storage:  store,
		logger:   log,
		config:   config,
	}
}

// GetService wires the service from environment and pipeline configuration.
func GetService(log logger.Logger) (Ingester, error) {
	backend := storage.Type(os.Getenv("STORAGE_BACKEND"))
	if backend == "" {
		backend = storage.TypeLocal
	}
	store, err := storage.NewStorage(backend, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	q, err := queue.GetQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	media := cfg.GetMediaConfig()
	pipelineCfg := cfg.GetPipelineConfig()

	var extractorOpts []pipeline.ExtractorOption
	if pipelineCfg.EnableOCR {
		extractorOpts = append(extractorOpts,
			pipeline.WithOCR(pipeline.NewOCREngine(log, pipelineCfg.OCRLanguages...)))
	}
	var rankerOpts []pipeline.RankerOption
	if len(pipelineCfg.ExtraStopwords) > 0 {
		rankerOpts = append(rankerOpts,
			pipeline.WithExtraStopwords(pipelineCfg.ExtraStopwords))
	}

	analyzer := pipeline.New(media.Root, log,
		pipeline.WithZoom(pipelineCfg.PageZoom, pipelineCfg.CoverZoom),
		pipeline.WithExtractor(pipeline.NewExtractor(log, extractorOpts...)),
		pipeline.WithRanker(pipeline.NewRanker(log, rankerOpts...)),
	)

	config := &ServiceConfig{
		MaxFileSize: 50 * 1024 * 1024, // 50MB
		ScratchDir:  media.ScratchDir,
		MaxKeywords: pipelineCfg.MaxKeywords,
	}

	return NewService(analyzer, q, store, log, config), nil
}

// IngestFile validates and stores an uploaded PDF and enqueues its
// ingestion. bookID may be empty for uploads that have no identifier yet.
func (s *Service) IngestFile(
	ctx context.Context,
	file multipart.File,
	header *multipart.FileHeader,
	bookID string,
) (*models.IngestTask, error) {
	s.logger.Info("Starting book ingestion",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if err := s.validateUpload(header); err != nil {
		s.logger.Error("Upload validation failed",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	taskID := uuid.New().String()
	if bookID == "" {
		bookID = taskID[:8]
	}

	fileID, err := s.storage.Store(ctx, file, header.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	task := &models.IngestTask{
		ID:        taskID,
		BookID:    bookID,
		Status:    models.StatusPending,
		Type:      queue.TaskTypeBookIngest,
		Priority:  s.config.QueuePriority,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Metadata: map[string]string{
			"filename": header.Filename,
			"bookId":   bookID,
			"size":     fmt.Sprintf("%d", header.Size),
		},
	}

	queueTask := &queue.Task{
		ID:       taskID,
		Type:     task.Type,
		Priority: task.Priority,
		Payload: map[string]interface{}{
			"fileId":   fileID,
			"bookId":   bookID,
			"filename": header.Filename,
		},
		Metadata:  task.Metadata,
		CreatedAt: task.CreatedAt,
	}

	if err := s.queue.Enqueue(ctx, queueTask); err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	if err := s.queue.SaveStatus(ctx, &queue.TaskStatus{
		TaskID:    taskID,
		Status:    string(models.StatusPending),
		StartedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to save initial status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}

	s.logger.Info("Ingest task created",
		logger.String("taskId", taskID),
		logger.String("bookId", bookID),
	)
	return task, nil
}

// IngestBatch ingests several uploads concurrently.
func (s *Service) IngestBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.IngestTask, error) {
	tasks := make([]*models.IngestTask, 0, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, header := range files {
		header := header
		g.Go(func() error {
			file, err := header.Open()
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", header.Filename, err)
			}
			defer file.Close()

			task, err := s.IngestFile(ctx, file, header, "")
			if err != nil {
				return fmt.Errorf("failed to ingest file %s: %w", header.Filename, err)
			}

			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return tasks, err
	}
	return tasks, nil
}

// HandleIngest runs the analysis pipeline for one queued task. Pipeline
// steps never fail hard; a malformed book yields a degraded result with
// zero page count, no folder/cover, and fallback keywords.
func (s *Service) HandleIngest(ctx context.Context, task *queue.Task) error {
	if task == nil {
		return fmt.Errorf("invalid task: missing payload")
	}
	if task.Payload == nil {
		return s.markFailed(ctx, task.ID, fmt.Errorf("invalid task: missing payload"))
	}

	fileID, _ := task.Payload["fileId"].(string)
	bookID, _ := task.Payload["bookId"].(string)
	filename, _ := task.Payload["filename"].(string)
	if fileID == "" || bookID == "" {
		return s.markFailed(ctx, task.ID, fmt.Errorf("invalid task: missing fileId or bookId"))
	}

	s.logger.Info("Processing book",
		logger.String("taskId", task.ID),
		logger.String("bookId", bookID),
		logger.String("filename", filename),
	)

	if err := s.queue.SaveStatus(ctx, &queue.TaskStatus{
		TaskID:    task.ID,
		Status:    string(models.StatusRunning),
		Progress:  0.5,
		StartedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to save running status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	localPath, cleanup, err := s.materialize(ctx, fileID, filename)
	if err != nil {
		return s.markFailed(ctx, task.ID, fmt.Errorf("failed to fetch upload: %w", err))
	}
	defer cleanup()

	result := &models.IngestResult{
		BookID:      bookID,
		PageCount:   s.analyzer.PageCount(localPath),
		PagesFolder: s.analyzer.ConvertToImages(localPath, bookID),
		CoverPath:   s.analyzer.ExtractCover(localPath, bookID),
		Keywords:    s.analyzer.AnalyzeKeywords(localPath, s.config.MaxKeywords),
		SourceFile:  filename,
		ProcessedAt: time.Now(),
	}

	resultData, err := json.Marshal(result)
	if err != nil {
		return s.markFailed(ctx, task.ID, fmt.Errorf("failed to marshal result: %w", err))
	}
	if _, err := s.storage.Store(ctx, bytes.NewReader(resultData), resultKey(task.ID)); err != nil {
		return s.markFailed(ctx, task.ID, fmt.Errorf("failed to store result: %w", err))
	}

	s.logger.Info("Book ingestion completed",
		logger.String("taskId", task.ID),
		logger.String("bookId", bookID),
		logger.Int("pageCount", result.PageCount),
		logger.String("folder", result.PagesFolder),
		logger.Strings("keywords", result.Keywords),
	)

	if err := s.queue.SaveStatus(ctx, &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     string(models.StatusCompleted),
		Progress:   1.0,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to save final status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}

	return nil
}

// GetStatus reads the task state from the queue.
func (s *Service) GetStatus(ctx context.Context, taskID string) (*models.IngestTask, error) {
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	var taskStatus models.IngestStatus
	switch status.Status {
	case "pending":
		taskStatus = models.StatusPending
	case "running", "active":
		taskStatus = models.StatusRunning
	case "completed":
		taskStatus = models.StatusCompleted
	case "failed":
		taskStatus = models.StatusFailed
	default:
		taskStatus = models.StatusPending
	}

	return &models.IngestTask{
		ID:        status.TaskID,
		Status:    taskStatus,
		Type:      queue.TaskTypeBookIngest,
		Progress:  status.Progress,
		Error:     status.Error,
		Metadata:  make(map[string]string),
		CreatedAt: status.StartedAt,
		UpdatedAt: status.FinishedAt,
	}, nil
}

// GetResult fetches the stored ingest result for a completed task.
func (s *Service) GetResult(ctx context.Context, taskID string) (*models.IngestResult, error) {
	status, err := s.GetStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if status.Status != models.StatusCompleted {
		return nil, fmt.Errorf("task is not completed: %s", status.Status)
	}

	reader, err := s.storage.Get(ctx, resultKey(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	defer reader.Close()

	var result models.IngestResult
	if err := json.NewDecoder(reader).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}

// CancelTask removes a pending task from the queue.
func (s *Service) CancelTask(ctx context.Context, taskID string) error {
	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}

	s.logger.Info("Task cancelled", logger.String("taskId", taskID))
	return nil
}

// markFailed mirrors a failed status into the queue so status reads do not
// report a task as pending after its attempts are exhausted, then returns
// cause for the queue's retry accounting.
func (s *Service) markFailed(ctx context.Context, taskID string, cause error) error {
	if taskID == "" {
		return cause
	}
	if err := s.queue.SaveStatus(ctx, &queue.TaskStatus{
		TaskID:     taskID,
		Status:     string(models.StatusFailed),
		Error:      cause.Error(),
		FinishedAt: time.Now(),
	}); err != nil {
		s.logger.Error("Failed to save failed status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}
	return cause
}

// materialize copies a stored upload to a scratch file the pipeline can
// open. The original filename is preserved inside a private directory
// because the pipeline's last extraction fallback derives keywords from it.
func (s *Service) materialize(ctx context.Context, fileID, filename string) (string, func(), error) {
	reader, err := s.storage.Get(ctx, fileID)
	if err != nil {
		return "", nil, err
	}
	defer reader.Close()

	dir, err := os.MkdirTemp(s.config.ScratchDir, "ingest-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	name := filepath.Base(filename)
	if name == "." || name == "" {
		name = "upload.pdf"
	}
	localPath := filepath.Join(dir, name)

	f, err := os.Create(localPath)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("copy upload to scratch: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close scratch file: %w", err)
	}

	return localPath, cleanup, nil
}

func (s *Service) validateUpload(header *multipart.FileHeader) error {
	if header.Size > s.config.MaxFileSize {
		return fmt.Errorf("file size exceeds maximum limit of %d bytes", s.config.MaxFileSize)
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".pdf" {
		return fmt.Errorf("unsupported file type: %s", ext)
	}
	return nil
}

func resultKey(taskID string) string {
	return fmt.Sprintf("result_%s.json", taskID)
}
