package retry

import (
	"context"
	"math/rand"
	"time"
)

// Config controls the exponential backoff schedule.
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:   4,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        50 * time.Millisecond,
	}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last operation error is returned as-is.
func Do(ctx context.Context, cfg Config, op func() error) error {
	var err error
	delay := cfg.InitialDelay
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			return err
		}

		wait := delay + time.Duration(rnd.Float64()*float64(cfg.Jitter))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return err
}
