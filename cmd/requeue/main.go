package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigbinary/pub-sub-with-sqs/internal/config"
	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/internal/requeue"
	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"

	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.Logging.Level)
	logger := observability.GetLogger()

	sourceQueue := flag.String("source", cfg.Requeue.SourceQueue, "dead-letter queue to drain")
	destQueue := flag.String("destination", cfg.Requeue.DestQueue, "queue to republish messages to")
	batchSize := flag.Int("batch-size", cfg.Requeue.BatchSize, "messages per receive, 1-10")
	delaySeconds := flag.Int("delay", cfg.Requeue.DelaySeconds, "delay seconds applied to republished messages")
	waitSeconds := flag.Int("wait", cfg.Requeue.WaitSeconds, "long-poll wait seconds")
	budget := flag.Int("budget", cfg.Requeue.Budget, "max messages to requeue, 0 drains until empty")
	deleteAfterSend := flag.Bool("delete", cfg.Requeue.DeleteAfterSend, "delete republished messages from the source")
	maxIdle := flag.Int("max-idle-receives", cfg.Requeue.MaxIdleReceives, "stop after this many consecutive empty receives, 0 keeps polling")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := sqs.NewClient(ctx, sqs.Options{
		Region:   cfg.AWS.Region,
		Endpoint: cfg.AWS.Endpoint,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to initialize SQS client")
		os.Exit(1)
	}

	sourceURL, err := client.ResolveQueueURL(ctx, *sourceQueue)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve source queue")
		os.Exit(1)
	}
	destURL, err := client.ResolveQueueURL(ctx, *destQueue)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve destination queue")
		os.Exit(1)
	}

	runCfg := requeue.Config{
		SourceQueueURL:  sourceURL,
		DestQueueURL:    destURL,
		BatchSize:       *batchSize,
		DelaySeconds:    *delaySeconds,
		WaitSeconds:     *waitSeconds,
		DeleteAfterSend: *deleteAfterSend,
		Budget:          *budget,
		MaxIdleReceives: *maxIdle,
		RunID:           uuid.NewString(),
	}
	if err := runCfg.Validate(); err != nil {
		logger.WithError(err).Error("Invalid configuration")
		os.Exit(1)
	}

	runner := requeue.NewRunner(client, runCfg, observability.NewInMemoryMetrics())
	stats := runner.Run(ctx)

	fmt.Printf("Requeue run %s: %s\n", runCfg.RunID, stats.Report())
}
