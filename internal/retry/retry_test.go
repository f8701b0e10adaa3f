//go:build !integration

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("should return nil on first success", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastPolicy(), func(ctx context.Context) error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Errorf("expected one successful call, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("should retry a transient failure until it succeeds", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastPolicy(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success after retries, got: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("should return the last error when attempts run out", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := Do(ctx, fastPolicy(), func(ctx context.Context) error {
			calls++
			return boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected the last error, got: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("should stop immediately on a permanent error", func(t *testing.T) {
		boom := errors.New("bad input")
		calls := 0
		err := Do(ctx, fastPolicy(), func(ctx context.Context) error {
			calls++
			return Stop(boom)
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected the wrapped error back, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("permanent errors must not be retried, got %d calls", calls)
		}
		var perm Permanent
		if errors.As(err, &perm) {
			t.Error("the permanent wrapper must be unwrapped before returning")
		}
	})

	t.Run("should honor context cancellation between attempts", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := Do(cctx, Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}, func(ctx context.Context) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected the retry loop to stop, got %d calls", calls)
		}
	})
}
