package transport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInflight(t *testing.T) {
	t.Run("drain waits for running requests", func(t *testing.T) {
		var f inflight
		if !f.start() {
			t.Fatal("expected start to be admitted")
		}
		if f.pending() != 1 {
			t.Errorf("pending() = %d, want 1", f.pending())
		}

		go func() {
			time.Sleep(20 * time.Millisecond)
			f.done()
		}()

		if err := f.drain(time.Second); err != nil {
			t.Errorf("drain() error = %v", err)
		}
		if f.pending() != 0 {
			t.Errorf("pending() = %d, want 0", f.pending())
		}
	})

	t.Run("no admissions while draining", func(t *testing.T) {
		var f inflight
		_ = f.drain(time.Second)
		if f.start() {
			t.Error("expected start to be refused after drain")
		}
	})

	t.Run("drain times out", func(t *testing.T) {
		var f inflight
		f.start()
		defer f.done()

		err := f.drain(10 * time.Millisecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("drain() error = %v, want deadline exceeded", err)
		}
	})
}
