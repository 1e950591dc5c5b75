package requeue

import (
	"context"

	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/sirupsen/logrus"
)

// DeleteReport summarizes one cleanup pass over a batch of outcomes.
type DeleteReport struct {
	Requested int
	Deleted   int
	Failed    int
}

// Cleaner removes successfully republished messages from the source
// queue. Cleanup failures are never fatal: a message left in the source
// is redundant, not lost, and will be republished on a future run.
type Cleaner struct {
	queue   QueueClient
	metrics observability.MetricsCollector
	logger  *logrus.Logger
}

func NewCleaner(queue QueueClient, metrics observability.MetricsCollector) *Cleaner {
	if metrics == nil {
		metrics = observability.NewInMemoryMetrics()
	}
	return &Cleaner{
		queue:   queue,
		metrics: metrics,
		logger:  observability.GetLogger(),
	}
}

// DeleteEligible deletes exactly the messages whose republish succeeded,
// in chunks no larger than the service batch limit. Partial failures
// within a chunk are logged as warnings; failed ids are not retried in
// the same run. With deleteAfterSend false this is a no-op.
func (c *Cleaner) DeleteEligible(ctx context.Context, outcomes []models.RepublishOutcome, sourceQueueURL string, deleteAfterSend bool) DeleteReport {
	report := DeleteReport{}
	if !deleteAfterSend {
		return report
	}

	var entries []sqs.DeleteEntry
	for _, o := range outcomes {
		if !o.Succeeded() {
			continue
		}
		entries = append(entries, sqs.DeleteEntry{
			ID:            o.Message.ID,
			ReceiptHandle: o.Message.ReceiptHandle,
		})
	}
	report.Requested = len(entries)

	for start := 0; start < len(entries); start += sqs.MaxDeleteBatch {
		end := start + sqs.MaxDeleteBatch
		if end > len(entries) {
			end = len(entries)
		}
		c.deleteChunk(ctx, entries[start:end], sourceQueueURL, &report)
	}

	return report
}

func (c *Cleaner) deleteChunk(ctx context.Context, chunk []sqs.DeleteEntry, sourceQueueURL string, report *DeleteReport) {
	result, err := c.queue.DeleteBatch(ctx, sourceQueueURL, chunk)
	if err != nil {
		// The source copies survive; they will be picked up again on a
		// future run. Duplicate delivery is the accepted trade-off.
		report.Failed += len(chunk)
		for range chunk {
			c.metrics.IncDeleteFailed()
		}
		c.logger.WithFields(logrus.Fields{
			"queue": sourceQueueURL,
			"count": len(chunk),
			"error": err.Error(),
		}).Warn("Failed to delete message chunk, messages remain in source")
		return
	}

	report.Deleted += len(result.Successful)
	for range result.Successful {
		c.metrics.IncDeleted()
	}

	report.Failed += len(result.Failed)
	for _, f := range result.Failed {
		c.metrics.IncDeleteFailed()
		c.logger.WithFields(logrus.Fields{
			"message_id": f.ID,
			"queue":      sourceQueueURL,
			"reason":     f.Reason,
		}).Warn("Failed to delete message, it remains in source")
	}
}
