package requeue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(queue QueueClient, cfg Config) (*Runner, *observability.InMemoryMetrics) {
	metrics := observability.NewInMemoryMetrics()
	runner := NewRunner(queue, cfg, metrics)
	runner.idlePause = time.Millisecond
	runner.errorPause = time.Millisecond
	return runner, metrics
}

func testConfig() Config {
	return Config{
		SourceQueueURL:  "source-queue",
		DestQueueURL:    "dest-queue",
		BatchSize:       10,
		WaitSeconds:     1,
		DeleteAfterSend: true,
		MaxIdleReceives: 1,
		RunID:           "test-run",
	}
}

func TestRunner_AllMessagesRequeuedAndDeleted(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.EnqueueBatch([]models.Message{
		testMessage("msg-1", "body-1"),
		testMessage("msg-2", "body-2"),
		testMessage("msg-3", "body-3"),
	})

	runner, metrics := newTestRunner(mockQueue, testConfig())
	stats := runner.Run(context.Background())

	assert.Equal(t, Stats{Received: 3, Sent: 3, Failed: 0, Batches: 1}, stats)
	assert.Equal(t, stats.Received, stats.Sent+stats.Failed)

	// all three deletions issued in a single chunk
	calls := mockQueue.GetDeleteCalls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Entries, 3)

	assert.Equal(t, int64(3), metrics.GetReceived())
	assert.Equal(t, int64(3), metrics.GetRequeued())
	assert.Equal(t, int64(3), metrics.GetDeleted())
}

func TestRunner_PartialSendFailureDeletesOnlySent(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.EnqueueBatch([]models.Message{
		testMessage("msg-1", "body-1"),
		testMessage("msg-2", "body-2"),
	})
	mockQueue.SendFunc = func(ctx context.Context, queueURL, body string, attrs map[string]models.Attribute, delaySeconds int) (string, error) {
		if body == "body-2" {
			return "", fmt.Errorf("remote service error")
		}
		return "new-" + body, nil
	}

	runner, _ := newTestRunner(mockQueue, testConfig())
	stats := runner.Run(context.Background())

	assert.Equal(t, 2, stats.Received)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, stats.Received, stats.Sent+stats.Failed)

	calls := mockQueue.GetDeleteCalls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Entries, 1)
	assert.Equal(t, "msg-1", calls[0].Entries[0].ID)
}

func TestRunner_DryRunNeverDeletes(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.EnqueueBatch([]models.Message{
		testMessage("msg-1", "body-1"),
		testMessage("msg-2", "body-2"),
	})

	cfg := testConfig()
	cfg.DeleteAfterSend = false
	runner, _ := newTestRunner(mockQueue, cfg)
	stats := runner.Run(context.Background())

	assert.Equal(t, 2, stats.Sent)
	assert.Empty(t, mockQueue.GetDeleteCalls())
}

func TestRunner_BudgetCapsRequestSize(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	var batch []models.Message
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("msg-%d", i)
		batch = append(batch, testMessage(id, "body-"+id))
	}
	mockQueue.EnqueueBatch(batch)

	cfg := testConfig()
	cfg.Budget = 5
	runner, _ := newTestRunner(mockQueue, cfg)
	stats := runner.Run(context.Background())

	assert.Equal(t, Stats{Received: 5, Sent: 5, Failed: 0, Batches: 1}, stats)

	// never requests more than the remaining budget, and stops at sent==5
	calls := mockQueue.GetReceiveCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 5, calls[0].Max)
}

func TestRunner_BudgetTerminatesOnEmptyReceive(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.EnqueueBatch([]models.Message{
		testMessage("msg-1", "body-1"),
		testMessage("msg-2", "body-2"),
		testMessage("msg-3", "body-3"),
	})

	cfg := testConfig()
	cfg.Budget = 5
	runner, _ := newTestRunner(mockQueue, cfg)
	stats := runner.Run(context.Background())

	assert.Equal(t, Stats{Received: 3, Sent: 3, Failed: 0, Batches: 1}, stats)

	calls := mockQueue.GetReceiveCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, 5, calls[0].Max)
	assert.Equal(t, 2, calls[1].Max) // sized to the remaining budget
}

func TestRunner_NoBudgetRepollsOnEmptyReceive(t *testing.T) {
	mockQueue := sqs.NewMockQueue()

	cfg := testConfig()
	cfg.MaxIdleReceives = 3
	runner, _ := newTestRunner(mockQueue, cfg)
	stats := runner.Run(context.Background())

	assert.Equal(t, Stats{}, stats)
	// a single empty receive does not terminate; the idle limit does
	assert.Len(t, mockQueue.GetReceiveCalls(), 3)
}

func TestRunner_ReceiveErrorRetriesSameState(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	receives := 0
	mockQueue.ReceiveFunc = func(ctx context.Context, queueURL string, max, waitSeconds int) ([]models.Message, error) {
		receives++
		switch receives {
		case 1:
			return nil, fmt.Errorf("throttled")
		case 2:
			return []models.Message{testMessage("msg-1", "body-1")}, nil
		default:
			return nil, nil
		}
	}

	runner, _ := newTestRunner(mockQueue, testConfig())
	stats := runner.Run(context.Background())

	assert.Equal(t, Stats{Received: 1, Sent: 1, Failed: 0, Batches: 1}, stats)
	assert.GreaterOrEqual(t, receives, 2)
}

func TestRunner_CancelledBeforeStart(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.EnqueueBatch([]models.Message{testMessage("msg-1", "body-1")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, _ := newTestRunner(mockQueue, testConfig())
	stats := runner.Run(ctx)

	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, mockQueue.GetReceiveCalls())
}

func TestRunner_CancellationFinishesInFlightBatch(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	ctx, cancel := context.WithCancel(context.Background())
	mockQueue.ReceiveFunc = func(ctx context.Context, queueURL string, max, waitSeconds int) ([]models.Message, error) {
		// cancellation arrives while a batch is in flight
		cancel()
		return []models.Message{
			testMessage("msg-1", "body-1"),
			testMessage("msg-2", "body-2"),
		}, nil
	}

	runner, _ := newTestRunner(mockQueue, testConfig())
	stats := runner.Run(ctx)

	// the batch completes through cleanup and reporting before termination
	assert.Equal(t, Stats{Received: 2, Sent: 2, Failed: 0, Batches: 1}, stats)
	require.Len(t, mockQueue.GetDeleteCalls(), 1)
	assert.Len(t, mockQueue.GetReceiveCalls(), 1)
}

func TestRunner_DeleteFailureDoesNotAbortRun(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.EnqueueBatch([]models.Message{testMessage("msg-1", "body-1")})
	mockQueue.EnqueueBatch([]models.Message{testMessage("msg-2", "body-2")})
	mockQueue.DeleteFunc = func(ctx context.Context, queueURL string, entries []sqs.DeleteEntry) (sqs.DeleteResult, error) {
		var failed []sqs.DeleteFailure
		for _, e := range entries {
			failed = append(failed, sqs.DeleteFailure{ID: e.ID, Reason: "internal error"})
		}
		return sqs.DeleteResult{Failed: failed}, nil
	}

	runner, _ := newTestRunner(mockQueue, testConfig())
	stats := runner.Run(context.Background())

	// both batches are processed even though every deletion failed
	assert.Equal(t, Stats{Received: 2, Sent: 2, Failed: 0, Batches: 2}, stats)
	assert.Len(t, mockQueue.GetDeleteCalls(), 2)
}
