package sqs

import (
	"context"
	"fmt"
	"sync"

	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"
)

// MockQueue is a mock queue client for testing. Batches queued with
// EnqueueBatch are returned by successive Receive calls; once drained,
// Receive returns empty results.
type MockQueue struct {
	mu             sync.RWMutex
	batches        [][]models.Message
	ReceiveCalls   []ReceiveCall
	SentMessages   []SentMessage
	DeleteCalls    []DeleteCall
	ReceiveFunc    func(ctx context.Context, queueURL string, max, waitSeconds int) ([]models.Message, error)
	SendFunc       func(ctx context.Context, queueURL, body string, attrs map[string]models.Attribute, delaySeconds int) (string, error)
	DeleteFunc     func(ctx context.Context, queueURL string, entries []DeleteEntry) (DeleteResult, error)
	SendFailCount  int
	failureCounter int
	sendCounter    int
}

type ReceiveCall struct {
	QueueURL    string
	Max         int
	WaitSeconds int
}

type SentMessage struct {
	QueueURL     string
	Body         string
	Attributes   map[string]models.Attribute
	DelaySeconds int
}

type DeleteCall struct {
	QueueURL string
	Entries  []DeleteEntry
}

func NewMockQueue() *MockQueue {
	return &MockQueue{}
}

// EnqueueBatch adds a batch that a future Receive call will return.
func (m *MockQueue) EnqueueBatch(messages []models.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, messages)
}

func (m *MockQueue) Receive(ctx context.Context, queueURL string, max, waitSeconds int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReceiveCalls = append(m.ReceiveCalls, ReceiveCall{QueueURL: queueURL, Max: max, WaitSeconds: waitSeconds})

	if m.ReceiveFunc != nil {
		return m.ReceiveFunc(ctx, queueURL, max, waitSeconds)
	}

	if len(m.batches) == 0 {
		return nil, nil
	}

	batch := m.batches[0]
	m.batches = m.batches[1:]
	if len(batch) > max {
		// A real queue never returns more than requested.
		m.batches = append([][]models.Message{batch[max:]}, m.batches...)
		batch = batch[:max]
	}
	return batch, nil
}

func (m *MockQueue) Send(ctx context.Context, queueURL, body string, attrs map[string]models.Attribute, delaySeconds int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, queueURL, body, attrs, delaySeconds)
	}

	// Simulate failures for testing partial-batch handling
	if m.SendFailCount > 0 {
		m.failureCounter++
		if m.failureCounter <= m.SendFailCount {
			return "", fmt.Errorf("simulated send failure %d", m.failureCounter)
		}
	}

	m.sendCounter++
	m.SentMessages = append(m.SentMessages, SentMessage{
		QueueURL:     queueURL,
		Body:         body,
		Attributes:   attrs,
		DelaySeconds: delaySeconds,
	})
	return fmt.Sprintf("new-msg-%d", m.sendCounter), nil
}

func (m *MockQueue) DeleteBatch(ctx context.Context, queueURL string, entries []DeleteEntry) (DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{QueueURL: queueURL, Entries: entries})

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, queueURL, entries)
	}

	result := DeleteResult{}
	for _, e := range entries {
		result.Successful = append(result.Successful, e.ID)
	}
	return result, nil
}

func (m *MockQueue) GetSentMessages() []SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := make([]SentMessage, len(m.SentMessages))
	copy(messages, m.SentMessages)
	return messages
}

func (m *MockQueue) GetDeleteCalls() []DeleteCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]DeleteCall, len(m.DeleteCalls))
	copy(calls, m.DeleteCalls)
	return calls
}

func (m *MockQueue) GetReceiveCalls() []ReceiveCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ReceiveCall, len(m.ReceiveCalls))
	copy(calls, m.ReceiveCalls)
	return calls
}

func (m *MockQueue) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = nil
	m.ReceiveCalls = nil
	m.SentMessages = nil
	m.DeleteCalls = nil
	m.failureCounter = 0
	m.sendCounter = 0
}
