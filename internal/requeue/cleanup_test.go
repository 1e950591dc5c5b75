package requeue

import (
	"context"
	"fmt"
	"testing"

	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/internal/sqs"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_DeletesOnlySentOutcomes(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	cleaner := NewCleaner(mockQueue, observability.NewInMemoryMetrics())

	outcomes := []models.RepublishOutcome{
		models.Sent(testMessage("msg-1", "body-1"), "new-1"),
		models.Failed(testMessage("msg-2", "body-2"), "remote error"),
		models.Sent(testMessage("msg-3", "body-3"), "new-3"),
	}

	report := cleaner.DeleteEligible(context.Background(), outcomes, "source-queue", true)

	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, 2, report.Deleted)
	assert.Equal(t, 0, report.Failed)

	calls := mockQueue.GetDeleteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "source-queue", calls[0].QueueURL)
	require.Len(t, calls[0].Entries, 2)
	assert.Equal(t, "msg-1", calls[0].Entries[0].ID)
	assert.Equal(t, "rh-msg-1", calls[0].Entries[0].ReceiptHandle)
	assert.Equal(t, "msg-3", calls[0].Entries[1].ID)
}

func TestCleaner_NoOpWhenDeleteAfterSendDisabled(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	cleaner := NewCleaner(mockQueue, observability.NewInMemoryMetrics())

	outcomes := []models.RepublishOutcome{
		models.Sent(testMessage("msg-1", "body-1"), "new-1"),
	}

	report := cleaner.DeleteEligible(context.Background(), outcomes, "source-queue", false)

	assert.Equal(t, DeleteReport{}, report)
	assert.Empty(t, mockQueue.GetDeleteCalls())
}

func TestCleaner_PartialFailureDoesNotRetry(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.DeleteFunc = func(ctx context.Context, queueURL string, entries []sqs.DeleteEntry) (sqs.DeleteResult, error) {
		result := sqs.DeleteResult{}
		for i, e := range entries {
			if i == 0 {
				result.Failed = append(result.Failed, sqs.DeleteFailure{ID: e.ID, Reason: "receipt handle expired"})
				continue
			}
			result.Successful = append(result.Successful, e.ID)
		}
		return result, nil
	}
	metrics := observability.NewInMemoryMetrics()
	cleaner := NewCleaner(mockQueue, metrics)

	outcomes := []models.RepublishOutcome{
		models.Sent(testMessage("msg-1", "body-1"), "new-1"),
		models.Sent(testMessage("msg-2", "body-2"), "new-2"),
		models.Sent(testMessage("msg-3", "body-3"), "new-3"),
	}

	report := cleaner.DeleteEligible(context.Background(), outcomes, "source-queue", true)

	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 2, report.Deleted)
	assert.Equal(t, 1, report.Failed)

	// failed id is not retried in the same run
	assert.Len(t, mockQueue.GetDeleteCalls(), 1)
	assert.Equal(t, int64(2), metrics.GetDeleted())
	assert.Equal(t, int64(1), metrics.GetDeleteFailed())
}

func TestCleaner_ChunkErrorIsNonFatal(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	mockQueue.DeleteFunc = func(ctx context.Context, queueURL string, entries []sqs.DeleteEntry) (sqs.DeleteResult, error) {
		return sqs.DeleteResult{}, fmt.Errorf("service unavailable")
	}
	cleaner := NewCleaner(mockQueue, observability.NewInMemoryMetrics())

	outcomes := []models.RepublishOutcome{
		models.Sent(testMessage("msg-1", "body-1"), "new-1"),
		models.Sent(testMessage("msg-2", "body-2"), "new-2"),
	}

	report := cleaner.DeleteEligible(context.Background(), outcomes, "source-queue", true)

	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, 0, report.Deleted)
	assert.Equal(t, 2, report.Failed)
}

func TestCleaner_ChunksLargeEligibleSets(t *testing.T) {
	mockQueue := sqs.NewMockQueue()
	cleaner := NewCleaner(mockQueue, observability.NewInMemoryMetrics())

	var outcomes []models.RepublishOutcome
	for i := 0; i < 23; i++ {
		id := fmt.Sprintf("msg-%d", i)
		outcomes = append(outcomes, models.Sent(testMessage(id, "body"), "new-"+id))
	}

	report := cleaner.DeleteEligible(context.Background(), outcomes, "source-queue", true)

	assert.Equal(t, 23, report.Requested)
	assert.Equal(t, 23, report.Deleted)

	calls := mockQueue.GetDeleteCalls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Entries, 10)
	assert.Len(t, calls[1].Entries, 10)
	assert.Len(t, calls[2].Entries, 3)
}
