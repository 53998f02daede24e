package radio

import (
	"context"
	"sync"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
)

// Window buffers non-ACK frames received while it is armed.
type Window struct {
	adapter *Adapter
	frames  chan *frame.Frame

	mu     sync.Mutex
	closed bool
}

// Receive returns the next buffered frame, waiting up to timeout.
// It returns a nil frame and nil error when the timeout elapses,
// and ctx.Err() if ctx is done first.
func (w *Window) Receive(ctx context.Context, timeout time.Duration) (*frame.Frame, error) {
	select {
	case f := <-w.frames:
		return f, nil
	default:
	}
	if timeout <= 0 {
		return nil, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f := <-w.frames:
		return f, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReceiveUntil is Receive with an absolute deadline.
func (w *Window) ReceiveUntil(ctx context.Context, deadline time.Time) (*frame.Frame, error) {
	return w.Receive(ctx, time.Until(deadline))
}

// Close disarms the window. Buffered frames are discarded. Idempotent.
func (w *Window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.adapter.release(w)
}

// offer queues f without blocking. It reports false when the window is
// closed or full.
func (w *Window) offer(f *frame.Frame) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.frames <- f:
		return true
	default:
		return false
	}
}
