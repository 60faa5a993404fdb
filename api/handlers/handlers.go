package handlers

import (
	"github.com/pustaka-id/book-ingest/internal/service/book"
	"github.com/pustaka-id/book-ingest/pkg/logger"
)

type Handlers struct {
	Book *BookHandler
}

func NewHandlers(
	ingestService book.Ingester,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Book: NewBookHandler(ingestService, logger),
	}
}
