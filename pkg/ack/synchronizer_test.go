package ack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

func TestSynchronizerReceived(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(42)

	go func() {
		time.Sleep(5 * time.Millisecond)
		s.Handle(frame.NewAck(42))
	}()

	outcome, err := s.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if outcome != OutcomeReceived {
		t.Errorf("Wait() = %v, want RECEIVED", outcome)
	}

	requested, received := s.State()
	if requested {
		t.Error("ack_requested still set after wait")
	}
	if !received {
		t.Error("ack_received = false, want true")
	}
	if got := s.Stats().Received; got != 1 {
		t.Errorf("Stats().Received = %d, want 1", got)
	}
}

func TestSynchronizerAckBeforeWait(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(7)

	if !s.Handle(frame.NewAck(7)) {
		t.Fatal("Handle() did not consume ACK")
	}

	outcome, err := s.Wait(context.Background(), 10*time.Millisecond)
	if err != nil || outcome != OutcomeReceived {
		t.Fatalf("Wait() = %v, %v; want RECEIVED, nil", outcome, err)
	}
}

func TestSynchronizerTimeoutClearsRequested(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(1)

	outcome, err := s.Wait(context.Background(), 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if outcome != OutcomeTimedOut {
		t.Fatalf("Wait() = %v, want TIMED_OUT", outcome)
	}

	requested, received := s.State()
	if requested || received {
		t.Errorf("State() = (%v, %v), want (false, false)", requested, received)
	}

	// A later wait is not blocked by the earlier one.
	s.Prepare(2)
	s.Handle(frame.NewAck(2))
	outcome, err = s.Wait(context.Background(), 5*time.Millisecond)
	if err != nil || outcome != OutcomeReceived {
		t.Errorf("second Wait() = %v, %v; want RECEIVED, nil", outcome, err)
	}
}

func TestSynchronizerIgnoresMismatchedSequence(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(10)

	if !s.Handle(frame.NewAck(11)) {
		t.Error("Handle() should consume every ACK frame")
	}

	outcome, _ := s.Wait(context.Background(), 5*time.Millisecond)
	if outcome != OutcomeTimedOut {
		t.Errorf("Wait() = %v, want TIMED_OUT", outcome)
	}
	if got := s.Stats().Mismatched; got != 1 {
		t.Errorf("Stats().Mismatched = %d, want 1", got)
	}
}

func TestSynchronizerLateAckIgnored(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(3)
	s.Wait(context.Background(), time.Millisecond)

	// ACK for the timed-out frame must not satisfy the next transmission.
	s.Handle(frame.NewAck(3))
	s.Prepare(4)

	outcome, _ := s.Wait(context.Background(), 5*time.Millisecond)
	if outcome != OutcomeTimedOut {
		t.Errorf("Wait() = %v, want TIMED_OUT", outcome)
	}
}

func TestSynchronizerHandleNonAck(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(5)

	if s.Handle(frame.NewBeaconRequest(5)) {
		t.Error("Handle() consumed a non-ACK frame")
	}
	if s.Handle(nil) {
		t.Error("Handle(nil) = true")
	}
}

func TestSynchronizerSecondWaiterBusy(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(9)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Wait(context.Background(), 100*time.Millisecond)
	}()

	// Give the first waiter time to register.
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	_, err := s.Wait(context.Background(), time.Second)
	if !errors.Is(err, ieee802154.ErrBusy) {
		t.Errorf("second Wait() error = %v, want ErrBusy", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("second Wait() blocked for %v", elapsed)
	}

	s.Handle(frame.NewAck(9))
	wg.Wait()
}

func TestSynchronizerContextCancel(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := s.Wait(ctx, time.Second)
	if outcome != OutcomeTimedOut {
		t.Errorf("Wait() = %v, want TIMED_OUT", outcome)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	if requested, _ := s.State(); requested {
		t.Error("ack_requested still set after cancel")
	}
}

func TestSynchronizerAbort(t *testing.T) {
	s := NewSynchronizer()
	s.Prepare(1)
	s.Abort()

	if !s.Handle(frame.NewAck(1)) {
		t.Fatal("Handle() did not consume ACK")
	}
	if _, received := s.State(); received {
		t.Error("ACK accepted after Abort()")
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeReceived.String() != "RECEIVED" {
		t.Errorf("OutcomeReceived.String() = %q", OutcomeReceived.String())
	}
	if OutcomeTimedOut.String() != "TIMED_OUT" {
		t.Errorf("OutcomeTimedOut.String() = %q", OutcomeTimedOut.String())
	}
}
