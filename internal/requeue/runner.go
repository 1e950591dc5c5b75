package requeue

import (
	"context"
	"time"

	"github.com/bigbinary/pub-sub-with-sqs/internal/observability"
	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"

	"github.com/sirupsen/logrus"
)

// state is a phase of the run loop. Transitions follow
// Idle -> Polling -> Processing -> Cleaning -> Reporting -> (Polling | Terminated).
type state int

const (
	stateIdle state = iota
	statePolling
	stateProcessing
	stateCleaning
	stateReporting
	stateTerminated
)

// Runner drives one requeue run: fetch a batch, republish it, delete the
// republished subset, account for progress, repeat. Batches are strictly
// sequential so at most one batch is ever in flight without a lease.
type Runner struct {
	cfg     Config
	fetcher *Fetcher
	engine  *Engine
	cleaner *Cleaner
	metrics observability.MetricsCollector
	logger  *logrus.Logger

	// pauses between same-state retries; tests shrink these
	idlePause  time.Duration
	errorPause time.Duration
}

func NewRunner(queue QueueClient, cfg Config, metrics observability.MetricsCollector) *Runner {
	if metrics == nil {
		metrics = observability.NewInMemoryMetrics()
	}
	return &Runner{
		cfg:        cfg,
		fetcher:    NewFetcher(queue, cfg),
		engine:     NewEngine(queue),
		cleaner:    NewCleaner(queue, metrics),
		metrics:    metrics,
		logger:     observability.GetLogger(),
		idlePause:  1 * time.Second,
		errorPause: 2 * time.Second,
	}
}

// Run executes the state machine until the budget is reached, the source
// drains, or ctx is cancelled. Cancellation is cooperative: it is checked
// at state transitions, and in-flight batch work always finishes so that
// no message is deleted before its republish attempt completes.
func (r *Runner) Run(ctx context.Context) Stats {
	stats := Stats{}
	idleReceives := 0

	var batch []models.Message
	var outcomes []models.RepublishOutcome

	logger := r.logger.WithField("run_id", r.cfg.RunID)
	logger.WithFields(logrus.Fields{
		"source":      r.cfg.SourceQueueURL,
		"destination": r.cfg.DestQueueURL,
		"batch_size":  r.cfg.BatchSize,
		"budget":      r.cfg.Budget,
	}).Info("Starting requeue run")

	st := stateIdle
	for st != stateTerminated {
		switch st {
		case stateIdle:
			st = statePolling

		case statePolling:
			if ctx.Err() != nil {
				st = stateTerminated
				continue
			}

			var err error
			batch, err = r.fetcher.NextBatch(ctx, stats)
			if err == errBudgetReached {
				logger.Info("Budget reached, stopping")
				st = stateTerminated
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					st = stateTerminated
					continue
				}
				logger.WithError(err).Error("Failed to fetch batch, retrying")
				r.pause(ctx, r.errorPause)
				continue
			}

			if len(batch) == 0 {
				// With a budget set an empty receive means the source is
				// exhausted; without one it may just be momentarily empty.
				if r.cfg.Budget > 0 {
					logger.Info("Source queue drained, stopping")
					st = stateTerminated
					continue
				}
				idleReceives++
				if r.cfg.MaxIdleReceives > 0 && idleReceives >= r.cfg.MaxIdleReceives {
					logger.WithField("idle_receives", idleReceives).Info("Idle limit reached, stopping")
					st = stateTerminated
					continue
				}
				r.pause(ctx, r.idlePause)
				continue
			}

			idleReceives = 0
			for range batch {
				r.metrics.IncReceived()
			}
			st = stateProcessing

		case stateProcessing:
			outcomes = r.engine.RepublishBatch(ctx, batch, r.cfg.DestQueueURL, r.cfg.DelaySeconds)
			for _, o := range outcomes {
				if o.Succeeded() {
					r.metrics.IncRequeued()
				} else {
					r.metrics.IncRequeueFailed()
				}
			}
			st = stateCleaning

		case stateCleaning:
			r.cleaner.DeleteEligible(ctx, outcomes, r.cfg.SourceQueueURL, r.cfg.DeleteAfterSend)
			st = stateReporting

		case stateReporting:
			stats = stats.Apply(outcomes)
			r.metrics.IncBatches()
			logger.WithFields(logrus.Fields{
				"batch":    stats.Batches,
				"progress": stats.Progress(r.cfg.Budget),
			}).Info("Batch processed")

			batch, outcomes = nil, nil
			if ctx.Err() != nil {
				st = stateTerminated
			} else {
				st = statePolling
			}
		}
	}

	logger.WithField("stats", stats.Report()).Info("Requeue run finished")
	return stats
}

// pause sleeps for d unless ctx is cancelled first. Every error or idle
// path re-entering a state goes through here so the loop never spins
// against a failing or empty remote.
func (r *Runner) pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
