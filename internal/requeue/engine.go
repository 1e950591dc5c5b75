package requeue

import (
	"context"
	"sync"

	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/sirupsen/logrus"
)

// Engine republishes a batch of dead-letter messages to their original
// destination and classifies each outcome.
type Engine struct {
	queue  QueueClient
	logger *logrus.Logger
}

func NewEngine(queue QueueClient) *Engine {
	return &Engine{
		queue:  queue,
		logger: observability.GetLogger(),
	}
}

// RepublishBatch sends every message to destQueueURL with its body and
// attributes unchanged. Messages are sent concurrently (at most one
// goroutine per message, so parallelism is bounded by the batch size)
// and outcomes are returned in input order. A failed send never affects
// sibling messages, and nothing here touches the source queue.
func (e *Engine) RepublishBatch(ctx context.Context, messages []models.Message, destQueueURL string, delaySeconds int) []models.RepublishOutcome {
	outcomes := make([]models.RepublishOutcome, len(messages))

	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		go func(i int, msg models.Message) {
			defer wg.Done()
			outcomes[i] = e.republish(ctx, msg, destQueueURL, delaySeconds)
		}(i, msg)
	}
	wg.Wait()

	return outcomes
}

func (e *Engine) republish(ctx context.Context, msg models.Message, destQueueURL string, delaySeconds int) models.RepublishOutcome {
	newID, err := e.queue.Send(ctx, destQueueURL, msg.Body, msg.Attributes, delaySeconds)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"queue":      destQueueURL,
			"error":      err.Error(),
		}).Error("Failed to republish message")
		return models.Failed(msg, err.Error())
	}
	if newID == "" {
		// A send without an identifier cannot be confirmed delivered.
		e.logger.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"queue":      destQueueURL,
		}).Error("Send returned no message id")
		return models.Failed(msg, "send returned no message id")
	}

	e.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"new_id":     newID,
		"queue":      destQueueURL,
	}).Debug("Message republished")
	return models.Sent(msg, newID)
}
