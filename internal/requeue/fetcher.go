package requeue

import (
	"context"
	"errors"

	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"
)

// QueueClient is the queue surface consumed by the requeue run.
// *sqs.Client implements it; tests use sqs.MockQueue.
type QueueClient interface {
	Receive(ctx context.Context, queueURL string, max, waitSeconds int) ([]models.Message, error)
	Send(ctx context.Context, queueURL, body string, attrs map[string]models.Attribute, delaySeconds int) (string, error)
	DeleteBatch(ctx context.Context, queueURL string, entries []sqs.DeleteEntry) (sqs.DeleteResult, error)
}

// errBudgetReached signals that the run's message budget leaves no room
// for another receive.
var errBudgetReached = errors.New("message budget reached")

// Fetcher pulls bounded batches from the source queue.
type Fetcher struct {
	queue QueueClient
	cfg   Config
}

func NewFetcher(queue QueueClient, cfg Config) *Fetcher {
	return &Fetcher{queue: queue, cfg: cfg}
}

// NextBatch issues one long-poll receive sized to the remaining budget.
// It returns errBudgetReached instead of issuing a request once the
// budget leaves no headroom. An empty batch with a nil error means the
// source had nothing to give within the wait window.
func (f *Fetcher) NextBatch(ctx context.Context, stats Stats) ([]models.Message, error) {
	size := f.cfg.BatchSize
	if f.cfg.Budget > 0 {
		remaining := f.cfg.Budget - stats.Sent
		if remaining <= 0 {
			return nil, errBudgetReached
		}
		if remaining < size {
			size = remaining
		}
	}
	return f.queue.Receive(ctx, f.cfg.SourceQueueURL, size, f.cfg.WaitSeconds)
}
