package requeue

import "errors"

// Config is the immutable configuration for one requeue run.
type Config struct {
	SourceQueueURL string
	DestQueueURL   string
	BatchSize      int
	DelaySeconds   int
	WaitSeconds    int

	// DeleteAfterSend controls whether republished messages are removed
	// from the source queue. False keeps the source untouched (dry run).
	DeleteAfterSend bool

	// Budget caps the total number of messages to requeue. Zero means
	// drain until the source reports empty.
	Budget int

	// MaxIdleReceives bounds consecutive empty receives when no budget
	// is set. Zero keeps polling indefinitely.
	MaxIdleReceives int

	// RunID labels log entries and the final report.
	RunID string
}

func (c *Config) Validate() error {
	if c.SourceQueueURL == "" {
		return errors.New("source queue cannot be empty")
	}
	if c.DestQueueURL == "" {
		return errors.New("destination queue cannot be empty")
	}
	if c.BatchSize < 1 || c.BatchSize > 10 {
		return errors.New("batch size must be between 1 and 10")
	}
	if c.DelaySeconds < 0 {
		return errors.New("delaySeconds cannot be negative")
	}
	if c.WaitSeconds < 0 {
		return errors.New("waitSeconds cannot be negative")
	}
	if c.Budget < 0 {
		return errors.New("budget cannot be negative")
	}
	if c.MaxIdleReceives < 0 {
		return errors.New("maxIdleReceives cannot be negative")
	}
	return nil
}
