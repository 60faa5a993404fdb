package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pustaka-id/book-ingest/internal/service/book"
	"github.com/pustaka-id/book-ingest/pkg/logger"
	"github.com/pustaka-id/book-ingest/pkg/queue"
)

// BookWorker consumes book:ingest tasks and runs the analysis pipeline.
type BookWorker struct {
	BaseWorker
	ingest book.Ingester
}

func NewBookWorker(cfg *Config, ingest book.Ingester, log logger.Logger) (*BookWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &BookWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		ingest: ingest,
	}

	w.mux.HandleFunc(queue.TaskTypeBookIngest, w.handleBookIngest)
	return w, nil
}

func (w *BookWorker) handleBookIngest(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	if task.ID == "" || task.Metadata == nil || task.Payload == nil {
		w.logger.Error("Invalid task data",
			logger.String("taskId", task.ID),
		)
		return fmt.Errorf("invalid task data: missing required fields")
	}

	w.logger.Info("Processing ingest task",
		logger.String("taskId", task.ID),
		logger.String("filename", task.Metadata["filename"]),
	)

	if err := w.ingest.HandleIngest(ctx, &task); err != nil {
		w.logger.Error("Ingest task failed",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
		return err
	}

	return nil
}

func (w *BookWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	// stopChan releases the watcher when Stop is called directly, so the
	// goroutine does not linger until the context is cancelled
	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	return nil
}
