package ack

import (
	"context"
	"sync"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// DefaultTimeout is the ACK wait used when none is configured.
const DefaultTimeout = 10 * time.Millisecond

// Outcome is the result of an ACK wait.
type Outcome uint8

const (
	// OutcomeTimedOut means no matching ACK arrived in time.
	OutcomeTimedOut Outcome = iota

	// OutcomeReceived means the matching ACK arrived.
	OutcomeReceived
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeReceived:
		return "RECEIVED"
	case OutcomeTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Stats counts ACK activity since creation.
type Stats struct {
	Received   uint64
	TimedOut   uint64
	Mismatched uint64
}

// Synchronizer tracks the single in-flight transmission that requested an ACK.
type Synchronizer struct {
	mu sync.Mutex

	requested bool
	received  bool
	sequence  uint8
	waiting   bool

	// release carries at most one pending wake-up for the waiter.
	release chan struct{}

	stats Stats
}

// NewSynchronizer creates an idle synchronizer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{
		release: make(chan struct{}, 1),
	}
}

// Prepare arms the synchronizer for the frame with sequence number seq.
// Must be called before the frame is handed to the radio.
func (s *Synchronizer) Prepare(seq uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requested = true
	s.received = false
	s.sequence = seq

	// Drop a wake-up left over from an earlier, late ACK.
	select {
	case <-s.release:
	default:
	}
}

// Abort disarms the synchronizer without waiting, e.g. when transmission failed.
func (s *Synchronizer) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = false
}

// Wait blocks until the ACK armed by Prepare arrives, the timeout elapses, or
// ctx is done. A second concurrent Wait fails immediately with ErrBusy.
// On timeout ack_requested is cleared and OutcomeTimedOut is returned with a
// nil error; a done ctx also yields OutcomeTimedOut, together with ctx.Err().
func (s *Synchronizer) Wait(ctx context.Context, timeout time.Duration) (Outcome, error) {
	s.mu.Lock()
	if s.waiting {
		s.mu.Unlock()
		return OutcomeTimedOut, ieee802154.ErrBusy
	}
	s.waiting = true
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var ctxErr error
	select {
	case <-s.release:
	case <-timer.C:
	case <-ctx.Done():
		ctxErr = ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.waiting = false
	s.requested = false
	if s.received {
		s.stats.Received++
		return OutcomeReceived, nil
	}
	s.stats.TimedOut++
	return OutcomeTimedOut, ctxErr
}

// Handle processes a frame received by the radio. It reports whether the
// frame was an ACK; ACK frames are always consumed here, matching or not.
// Safe to call from the driver's goroutine.
func (s *Synchronizer) Handle(f *frame.Frame) bool {
	if f == nil || !f.IsAck() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.requested || s.received || f.Sequence != s.sequence {
		s.stats.Mismatched++
		return true
	}

	s.received = true
	select {
	case s.release <- struct{}{}:
	default:
	}
	return true
}

// State returns the ack_requested and ack_received flags.
func (s *Synchronizer) State() (requested, received bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested, s.received
}

// Sequence returns the sequence number currently armed.
func (s *Synchronizer) Sequence() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// Stats returns a copy of the counters.
func (s *Synchronizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
