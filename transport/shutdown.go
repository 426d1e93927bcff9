package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDrainTimeout bounds how long a transport waits for in-flight
// requests once it stops reading.
const DefaultDrainTimeout = 30 * time.Second

// inflight tracks requests a transport has started but not yet answered.
// Once draining, no new requests are admitted.
type inflight struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	draining bool
	count    atomic.Int64
}

// start admits a request. It returns false once draining has begun.
func (f *inflight) start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draining {
		return false
	}
	f.wg.Add(1)
	f.count.Add(1)
	return true
}

func (f *inflight) done() {
	f.count.Add(-1)
	f.wg.Done()
}

// pending returns the number of requests in flight.
func (f *inflight) pending() int64 {
	return f.count.Load()
}

// drain stops admitting requests and waits for the in-flight ones, at most
// timeout. It returns context.DeadlineExceeded if some are still running.
func (f *inflight) drain(timeout time.Duration) error {
	f.mu.Lock()
	f.draining = true
	f.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(finished)
	}()

	if timeout <= 0 {
		<-finished
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-finished:
		return nil
	case <-timer.C:
		return context.DeadlineExceeded
	}
}
