package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pustaka-id/book-ingest/api/handlers"
	"github.com/pustaka-id/book-ingest/api/middleware"
)

// SetupRoutes wires all API routes.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	v1.Use(middleware.CORS())

	books := v1.Group("/books")
	{
		books.POST("/ingest", h.Book.IngestBook)
		books.POST("/batch", h.Book.IngestBatch)
		books.GET("/status/:taskId", h.Book.GetStatus)
		books.GET("/result/:taskId", h.Book.GetResult)
		books.DELETE("/task/:taskId", h.Book.CancelTask)
	}
}
