package models

import (
	"time"
)

// IngestResult is everything the analysis pipeline recovered from one
// uploaded book. The persistence layer outside this service stores these
// fields on the book record; empty string / zero values mean the
// corresponding step failed and the caller should degrade gracefully.
type IngestResult struct {
	BookID      string    `json:"bookId"`
	PagesFolder string    `json:"pagesFolder,omitempty"`
	CoverPath   string    `json:"coverPath,omitempty"`
	PageCount   int       `json:"pageCount"`
	Keywords    []string  `json:"keywords"`
	SourceFile  string    `json:"sourceFile"`
	ProcessedAt time.Time `json:"processedAt"`
}

// IngestTask tracks one queued ingestion job.
type IngestTask struct {
	ID        string            `json:"id"`
	BookID    string            `json:"bookId"`
	Status    IngestStatus      `json:"status"`
	Type      string            `json:"type"`
	Priority  int               `json:"priority"`
	Progress  float64           `json:"progress"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}

type IngestStatus string

const (
	StatusPending   IngestStatus = "pending"
	StatusRunning   IngestStatus = "running"
	StatusCompleted IngestStatus = "completed"
	StatusFailed    IngestStatus = "failed"
	StatusCancelled IngestStatus = "cancelled"
)
