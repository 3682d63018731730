package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        time.Millisecond,
	}
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDo_SuccessAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_BudgetExhausted(t *testing.T) {
	permanent := errors.New("permanent")
	attempts := 0
	err := Do(context.Background(), fastConfig(), func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected %v, got %v", permanent, err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Do(ctx, fastConfig(), func() error {
		cancel()
		return errors.New("failing")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
