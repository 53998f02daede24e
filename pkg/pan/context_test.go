package pan

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

var (
	testSelf  = ieee802154.ExtendedAddress([8]byte{0x00, 0x12, 0x4b, 0x00, 0x0a, 0x0b, 0x0c, 0x0d})
	testCoord = ieee802154.ShortAddress(0x0000)
)

func TestNewContextDefaults(t *testing.T) {
	c := NewContext(testSelf)
	s := c.Snapshot()

	if s.PANID != ieee802154.BroadcastPANID {
		t.Errorf("PANID = 0x%04x, want 0xffff", s.PANID)
	}
	if s.State != StateUnassociated || s.Associated {
		t.Errorf("State = %v, want UNASSOCIATED", s.State)
	}
	if s.ExtAddr != testSelf {
		t.Errorf("ExtAddr = %s, want %s", s.ExtAddr, testSelf)
	}
	if c.Active() != OpNone {
		t.Errorf("Active() = %v, want NONE", c.Active())
	}
}

func TestAcquireFailFast(t *testing.T) {
	c := NewContext(testSelf)

	release, err := c.Acquire(OpActiveScan)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if c.Active() != OpActiveScan {
		t.Errorf("Active() = %v, want ACTIVE_SCAN", c.Active())
	}

	for _, op := range []Op{OpPassiveScan, OpActiveScan, OpAssociate, OpDisassociate} {
		if _, err := c.Acquire(op); !errors.Is(err, ieee802154.ErrBusy) {
			t.Errorf("Acquire(%v) error = %v, want ErrBusy", op, err)
		}
	}

	release()
	release()

	release2, err := c.Acquire(OpAssociate)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	release2()
}

func TestAcquireConcurrentSingleWinner(t *testing.T) {
	c := NewContext(testSelf)

	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	releases := make(chan func(), 16)

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if release, err := c.Acquire(OpAssociate); err == nil {
				winners.Add(1)
				releases <- release
			}
		}()
	}
	close(start)
	wg.Wait()
	close(releases)

	if winners.Load() != 1 {
		t.Errorf("winners = %d, want 1", winners.Load())
	}
	for r := range releases {
		r()
	}
}

func TestNextSequenceWraps(t *testing.T) {
	c := NewContext(testSelf)
	for i := range 256 {
		if got := c.NextSequence(); got != uint8(i) {
			t.Fatalf("NextSequence() #%d = %d", i, got)
		}
	}
	if got := c.NextSequence(); got != 0 {
		t.Errorf("NextSequence() after wrap = %d, want 0", got)
	}
}

func TestAssociationLifecycle(t *testing.T) {
	c := NewContext(testSelf)

	var transitions []string
	c.OnStateChange(func(from, to AssociationState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	if err := c.BeginAssociation(0x1234, 15, testCoord); err != nil {
		t.Fatalf("BeginAssociation() error = %v", err)
	}
	if err := c.BeginAssociation(0x1234, 15, testCoord); !errors.Is(err, ieee802154.ErrInvalidState) {
		t.Errorf("second BeginAssociation() error = %v, want ErrInvalidState", err)
	}
	if err := c.CompleteAssociation(0x0042); err != nil {
		t.Fatalf("CompleteAssociation() error = %v", err)
	}

	s := c.Snapshot()
	if s.PANID != 0x1234 || s.Channel != 15 || s.Coordinator != testCoord || s.ShortAddr != 0x0042 || !s.Associated {
		t.Errorf("unexpected snapshot after association: %+v", s)
	}

	if err := c.BeginDisassociation(); err != nil {
		t.Fatalf("BeginDisassociation() error = %v", err)
	}
	c.ResetAssociation()

	s = c.Snapshot()
	if s.PANID != ieee802154.BroadcastPANID || s.Associated || !s.Coordinator.IsZero() {
		t.Errorf("unexpected snapshot after reset: %+v", s)
	}
	if s.Channel != 15 {
		t.Errorf("Channel = %d, want 15 kept", s.Channel)
	}

	want := []string{
		"UNASSOCIATED->ASSOCIATING",
		"ASSOCIATING->ASSOCIATED",
		"ASSOCIATED->DISASSOCIATING",
		"DISASSOCIATING->UNASSOCIATED",
	}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestLinkDownResets(t *testing.T) {
	c := NewContext(testSelf)
	c.BeginAssociation(0x1234, 15, testCoord)
	c.CompleteAssociation(1)

	c.LinkDown()

	if c.State() != StateUnassociated {
		t.Errorf("State() = %v, want UNASSOCIATED", c.State())
	}
	if c.Snapshot().PANID != ieee802154.BroadcastPANID {
		t.Error("PAN id not reset by LinkDown")
	}
}

func TestScanCancelFlag(t *testing.T) {
	c := NewContext(testSelf)

	if c.RequestScanCancel() {
		t.Error("RequestScanCancel() with no scan = true")
	}
	if c.ScanCancelled() {
		t.Error("cancel flag set while idle")
	}

	release, _ := c.Acquire(OpPassiveScan)
	if !c.RequestScanCancel() {
		t.Error("RequestScanCancel() during scan = false")
	}
	if !c.ScanCancelled() {
		t.Error("cancel flag not set")
	}

	release()
	if c.ScanCancelled() {
		t.Error("cancel flag survived release")
	}

	release, _ = c.Acquire(OpAssociate)
	defer release()
	if c.RequestScanCancel() {
		t.Error("RequestScanCancel() during association = true")
	}
}

func TestAckModeAndSnapshotFlags(t *testing.T) {
	c := NewContext(testSelf)
	c.SetAckMode(true)
	if !c.AckMode() {
		t.Error("AckMode() = false after SetAckMode(true)")
	}

	c.Ack.Prepare(3)
	if s := c.Snapshot(); !s.AckRequested || s.AckReceived {
		t.Errorf("flags = requested %v received %v, want true false", s.AckRequested, s.AckReceived)
	}
	c.Ack.Handle(frame.NewAck(3))
	if s := c.Snapshot(); !s.AckReceived {
		t.Error("AckReceived = false after matching ACK")
	}
}

func TestRestore(t *testing.T) {
	c := NewContext(testSelf)
	err := c.Restore(Snapshot{PANID: 0x1234, Channel: 20, Sequence: 9, Associated: true, Coordinator: testCoord, ShortAddr: 7})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if c.State() != StateAssociated || c.NextSequence() != 9 {
		t.Errorf("restored state = %v", c.Snapshot())
	}
	if err := c.Restore(Snapshot{}); !errors.Is(err, ieee802154.ErrInvalidState) {
		t.Errorf("Restore() while associated error = %v, want ErrInvalidState", err)
	}
}
