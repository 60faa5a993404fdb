package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/pustaka-id/book-ingest/config"
	"github.com/pustaka-id/book-ingest/internal/service/book"
	"github.com/pustaka-id/book-ingest/pkg/logger"
	"github.com/pustaka-id/book-ingest/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ingestService, err := book.GetService(log)
	if err != nil {
		log.Error("Failed to create ingest service", logger.Error(err))
		os.Exit(1)
	}

	redisCfg := cfg.GetRedisConfig()
	workerCfg := &worker.Config{
		RedisAddr:   redisCfg.Addr,
		RedisDB:     redisCfg.DB,
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}

	bookWorker, err := worker.NewBookWorker(workerCfg, ingestService, log)
	if err != nil {
		log.Error("Failed to create book worker", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bookWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	bookWorker.Stop()
	log.Info("Worker stopped")
}
