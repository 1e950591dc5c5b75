package requeue

import (
	"fmt"

	"github.com/bigbinary/pub-sub-with-sqs/pkg/models"
)

// Stats holds the monotonic counters for one run. It is a value threaded
// through the run loop; each batch produces a new Stats via Apply.
type Stats struct {
	Received int
	Sent     int
	Failed   int
	Batches  int
}

// Apply folds one batch of outcomes into the counters.
func (s Stats) Apply(outcomes []models.RepublishOutcome) Stats {
	s.Received += len(outcomes)
	for _, o := range outcomes {
		if o.Succeeded() {
			s.Sent++
		} else {
			s.Failed++
		}
	}
	s.Batches++
	return s
}

// Progress renders completion against a budget, or the running total
// when no budget is set.
func (s Stats) Progress(budget int) string {
	if budget > 0 {
		pct := float64(s.Sent) / float64(budget) * 100
		return fmt.Sprintf("%d/%d (%.2f%%)", s.Sent, budget, pct)
	}
	return fmt.Sprintf("%d sent", s.Sent)
}

// Report is the final run summary, emitted once at termination.
func (s Stats) Report() string {
	return fmt.Sprintf("received=%d sent=%d failed=%d batches=%d",
		s.Received, s.Sent, s.Failed, s.Batches)
}
