package observability

import (
	"sync/atomic"
)

// MetricsCollector provides hooks for metrics collection
// Can be implemented to integrate with Prometheus, StatsD, etc.
type MetricsCollector interface {
	IncReceived()
	IncRequeued()
	IncRequeueFailed()
	IncDeleted()
	IncDeleteFailed()
	IncBatches()
}

// InMemoryMetrics is a simple in-memory implementation for testing/demo
type InMemoryMetrics struct {
	Received      atomic.Int64
	Requeued      atomic.Int64
	RequeueFailed atomic.Int64
	Deleted       atomic.Int64
	DeleteFailed  atomic.Int64
	Batches       atomic.Int64
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{}
}

func (m *InMemoryMetrics) IncReceived() {
	m.Received.Add(1)
}

func (m *InMemoryMetrics) IncRequeued() {
	m.Requeued.Add(1)
}

func (m *InMemoryMetrics) IncRequeueFailed() {
	m.RequeueFailed.Add(1)
}

func (m *InMemoryMetrics) IncDeleted() {
	m.Deleted.Add(1)
}

func (m *InMemoryMetrics) IncDeleteFailed() {
	m.DeleteFailed.Add(1)
}

func (m *InMemoryMetrics) IncBatches() {
	m.Batches.Add(1)
}

func (m *InMemoryMetrics) GetReceived() int64 {
	return m.Received.Load()
}

func (m *InMemoryMetrics) GetRequeued() int64 {
	return m.Requeued.Load()
}

func (m *InMemoryMetrics) GetRequeueFailed() int64 {
	return m.RequeueFailed.Load()
}

func (m *InMemoryMetrics) GetDeleted() int64 {
	return m.Deleted.Load()
}

func (m *InMemoryMetrics) GetDeleteFailed() int64 {
	return m.DeleteFailed.Load()
}

func (m *InMemoryMetrics) GetBatches() int64 {
	return m.Batches.Load()
}
