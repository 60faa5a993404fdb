package book

import (
	"context"
	"mime/multipart"

	"github.com/pustaka-id/book-ingest/internal/models"
	"github.com/pustaka-id/book-ingest/pkg/queue"
)

// Ingester is the book ingestion surface exposed to the API layer and the
// worker.
type Ingester interface {
	IngestFile(ctx context.Context, file multipart.File, header *multipart.FileHeader, bookID string) (*models.IngestTask, error)
	IngestBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.IngestTask, error)
	GetStatus(ctx context.Context, taskID string) (*models.IngestTask, error)
	GetResult(ctx context.Context, taskID string) (*models.IngestResult, error)
	HandleIngest(ctx context.Context, task *queue.Task) error
	CancelTask(ctx context.Context, taskID string) error
}

// Analyzer is what the service needs from the PDF pipeline. All four
// operations are total: they report failure through sentinel values, never
// through errors.
type Analyzer interface {
	ConvertToImages(pdfPath, bookID string) string
	PageCount(pdfPath string) int
	ExtractCover(pdfPath, bookID string) string
	AnalyzeKeywords(pdfPath string, maxKeywords int) []string
}
