package assoc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lrwpan/lrwpan-go/pkg/assoc"
	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
	"github.com/lrwpan/lrwpan-go/pkg/radio/mocks"
	"github.com/lrwpan/lrwpan-go/pkg/radio/sim"
)

var (
	self      = ieee802154.ExtendedAddress([8]byte{0x00, 0x12, 0x4b, 0x00, 0x11, 0x22, 0x33, 0x44})
	coordAddr = ieee802154.ShortAddress(0x0000)
	params    = assoc.Params{PANID: 0x1234, Channel: 15, Coordinator: coordAddr}
)

type transitions struct {
	mu  sync.Mutex
	got []pan.AssociationState
}

func (tr *transitions) record(_, to pan.AssociationState) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.got = append(tr.got, to)
}

func (tr *transitions) list() []pan.AssociationState {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]pan.AssociationState(nil), tr.got...)
}

type fixture struct {
	medium *sim.Medium
	pan    *pan.Context
	assoc  *assoc.Coordinator
	states *transitions
}

func newFixture(t *testing.T, coords ...sim.Coordinator) *fixture {
	t.Helper()
	m := sim.NewMedium()
	for _, c := range coords {
		m.AddCoordinator(c)
	}
	return newFixtureWithDriver(t, m.NewRadio(), m)
}

func newFixtureWithDriver(t *testing.T, d radio.Driver, m *sim.Medium) *fixture {
	t.Helper()
	p := pan.NewContext(self)
	a := radio.NewAdapter(d, radio.Config{})
	a.SetAckHandler(p.Ack.Handle)

	tr := &transitions{}
	p.OnStateChange(tr.record)

	return &fixture{
		medium: m,
		pan:    p,
		assoc: assoc.NewCoordinator(p, a, assoc.Config{
			AckTimeout:      20 * time.Millisecond,
			ResponseTimeout: 50 * time.Millisecond,
		}),
		states: tr,
	}
}

func pancoord(mod func(*sim.Coordinator)) sim.Coordinator {
	c := sim.Coordinator{
		Channel:           15,
		PANID:             0x1234,
		Address:           coordAddr,
		AutoAck:           true,
		AssociationStatus: frame.AssocSuccess,
		AssignShortAddr:   0x0042,
	}
	if mod != nil {
		mod(&c)
	}
	return c
}

func TestAssociateSuccess(t *testing.T) {
	f := newFixture(t, pancoord(nil))

	require.NoError(t, f.assoc.Associate(context.Background(), params))

	assert.Equal(t, []pan.AssociationState{pan.StateAssociating, pan.StateAssociated}, f.states.list())
	s := f.pan.Snapshot()
	assert.Equal(t, pan.StateAssociated, s.State)
	assert.True(t, s.Associated)
	assert.Equal(t, uint16(0x1234), s.PANID)
	assert.Equal(t, uint16(15), s.Channel)
	assert.Equal(t, coordAddr, s.Coordinator)
	assert.Equal(t, uint16(0x0042), s.ShortAddr)
	assert.Equal(t, pan.OpNone, f.pan.Active())

	tx := f.medium.Transmitted()
	require.Len(t, tx, 1)
	assert.True(t, tx[0].IsCommand(frame.CmdAssociationRequest))
	assert.True(t, tx[0].AckRequest)
	assert.Equal(t, self, tx[0].Src)
	assert.Equal(t, []byte{assoc.DefaultCapability}, tx[0].Payload)
}

func TestAssociateNoAck(t *testing.T) {
	f := newFixture(t, pancoord(func(c *sim.Coordinator) { c.AutoAck = false }))

	err := f.assoc.Associate(context.Background(), params)

	assert.ErrorIs(t, err, ieee802154.ErrNoResponse)
	assert.Equal(t, []pan.AssociationState{pan.StateAssociating, pan.StateUnassociated}, f.states.list())
	s := f.pan.Snapshot()
	assert.Equal(t, uint16(ieee802154.BroadcastPANID), s.PANID)
	assert.False(t, s.AckRequested, "timed-out wait clears ack_requested")
	assert.Equal(t, pan.OpNone, f.pan.Active())
}

func TestAssociateRejected(t *testing.T) {
	f := newFixture(t, pancoord(func(c *sim.Coordinator) { c.AssociationStatus = frame.AssocPANAtCapacity }))

	err := f.assoc.Associate(context.Background(), params)

	assert.ErrorIs(t, err, ieee802154.ErrAssociationRejected)
	var ae *ieee802154.AssociationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, frame.AssocPANAtCapacity, ae.Status)
	assert.Equal(t, pan.StateUnassociated, f.pan.State())
	assert.Equal(t, uint16(ieee802154.BroadcastPANID), f.pan.Snapshot().PANID)
}

func TestAssociateNoResponse(t *testing.T) {
	f := newFixture(t, pancoord(func(c *sim.Coordinator) { c.Silent = true }))

	err := f.assoc.Associate(context.Background(), params)

	assert.ErrorIs(t, err, ieee802154.ErrNoResponse)
	assert.NotErrorIs(t, err, ieee802154.ErrAssociationRejected)
	assert.Equal(t, pan.StateUnassociated, f.pan.State())
}

func TestAssociateInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    assoc.Params
		want error
	}{
		{"channel out of band", assoc.Params{PANID: 1, Channel: 27, Coordinator: coordAddr}, ieee802154.ErrInvalidChannelSet},
		{"no coordinator", assoc.Params{PANID: 1, Channel: 15}, ieee802154.ErrInvalidAddress},
		{"broadcast pan", assoc.Params{PANID: 0xffff, Channel: 15, Coordinator: coordAddr}, ieee802154.ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			assert.ErrorIs(t, f.assoc.Associate(context.Background(), tt.p), tt.want)
			assert.Empty(t, f.medium.Tunes())
			assert.Empty(t, f.states.list())
		})
	}
}

func TestAssociateWhenAssociated(t *testing.T) {
	f := newFixture(t, pancoord(nil))
	require.NoError(t, f.assoc.Associate(context.Background(), params))

	err := f.assoc.Associate(context.Background(), params)

	assert.ErrorIs(t, err, ieee802154.ErrInvalidState)
	assert.Equal(t, pan.StateAssociated, f.pan.State())
}

func TestAssociateBusy(t *testing.T) {
	f := newFixture(t, pancoord(nil))
	release, err := f.pan.Acquire(pan.OpActiveScan)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	assert.ErrorIs(t, f.assoc.Associate(context.Background(), params), ieee802154.ErrBusy)
	assert.ErrorIs(t, f.assoc.Disassociate(context.Background()), ieee802154.ErrBusy)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestAssociateTuneFailure(t *testing.T) {
	f := newFixture(t, pancoord(nil))
	cause := errors.New("radio off")
	f.medium.FailTune(15, cause)

	err := f.assoc.Associate(context.Background(), params)

	var re *ieee802154.RadioError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, f.states.list(), "context untouched before tune succeeds")
	assert.Equal(t, pan.OpNone, f.pan.Active())
}

func TestAssociateThenDisassociate(t *testing.T) {
	f := newFixture(t, pancoord(nil))
	require.NoError(t, f.assoc.Associate(context.Background(), params))

	require.NoError(t, f.assoc.Disassociate(context.Background()))

	s := f.pan.Snapshot()
	assert.Equal(t, pan.StateUnassociated, s.State)
	assert.Equal(t, uint16(ieee802154.BroadcastPANID), s.PANID)
	assert.True(t, s.Coordinator.IsZero())

	tx := f.medium.Transmitted()
	require.Len(t, tx, 2)
	assert.True(t, tx[1].IsCommand(frame.CmdDisassociationNotification))
	assert.Equal(t, []byte{frame.DisassocDeviceRequest}, tx[1].Payload)
	assert.Equal(t, uint16(0x1234), tx[1].DstPANID)

	assert.Equal(t, []pan.AssociationState{
		pan.StateAssociating, pan.StateAssociated, pan.StateDisassociating, pan.StateUnassociated,
	}, f.states.list())
}

// restoreAssociated puts the fixture into the associated state without
// running the association exchange.
func restoreAssociated(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.pan.Restore(pan.Snapshot{
		PANID:       0x1234,
		Channel:     15,
		Associated:  true,
		Coordinator: coordAddr,
		ShortAddr:   0x0042,
	}))
}

func TestDisassociateWithoutAckStillClears(t *testing.T) {
	f := newFixture(t, pancoord(func(c *sim.Coordinator) { c.AutoAck = false }))
	restoreAssociated(t, f)

	err := f.assoc.Disassociate(context.Background())

	assert.NoError(t, err, "disassociation is best effort")
	assert.Equal(t, pan.StateUnassociated, f.pan.State())
	assert.Equal(t, uint16(ieee802154.BroadcastPANID), f.pan.Snapshot().PANID)
}

func TestDisassociateRadioFailureStillClears(t *testing.T) {
	f := newFixture(t, pancoord(nil))
	restoreAssociated(t, f)
	cause := errors.New("tx underrun")
	f.medium.FailTransmit(cause)

	err := f.assoc.Disassociate(context.Background())

	var re *ieee802154.RadioError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, pan.StateUnassociated, f.pan.State())
	assert.Equal(t, pan.OpNone, f.pan.Active())
}

func TestDisassociateWhenUnassociated(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.assoc.Disassociate(context.Background()), ieee802154.ErrInvalidState)
	assert.Empty(t, f.medium.Transmitted())
}

func TestLinkDown(t *testing.T) {
	f := newFixture(t, pancoord(nil))
	require.NoError(t, f.assoc.Associate(context.Background(), params))

	f.assoc.LinkDown()

	assert.Equal(t, pan.StateUnassociated, f.pan.State())
	assert.Equal(t, pan.StateUnassociated, f.states.list()[len(f.states.list())-1])
}

// TestAssociateWithMockDriver drives the exchange from a scripted driver:
// the ACK and then a positive response are reported from the driver's
// own goroutine.
func TestAssociateWithMockDriver(t *testing.T) {
	driver := mocks.NewMockDriver(t)

	var rx func(*frame.Frame)
	driver.EXPECT().SetReceiveHandler(mock.Anything).Run(func(h func(*frame.Frame)) { rx = h }).Return().Once()
	driver.EXPECT().Tune(mock.Anything, uint16(15)).Return(nil).Once()
	driver.EXPECT().Transmit(mock.Anything, mock.MatchedBy(func(f *frame.Frame) bool {
		return f.IsCommand(frame.CmdAssociationRequest)
	})).RunAndReturn(func(_ context.Context, req *frame.Frame) error {
		go func() {
			rx(frame.NewAck(req.Sequence))
			time.Sleep(2 * time.Millisecond)
			rx(frame.NewAssociationResponse(1, 0x1234, req.Src, coordAddr, 0x0007, frame.AssocSuccess))
		}()
		return nil
	}).Once()

	f := newFixtureWithDriver(t, driver, nil)

	require.NoError(t, f.assoc.Associate(context.Background(), params))
	assert.Equal(t, []pan.AssociationState{pan.StateAssociating, pan.StateAssociated}, f.states.list())
	assert.Equal(t, uint16(0x0007), f.pan.Snapshot().ShortAddr)
}

func TestAssociateWithMockDriverNoAck(t *testing.T) {
	driver := mocks.NewMockDriver(t)
	driver.EXPECT().SetReceiveHandler(mock.Anything).Return().Once()
	driver.EXPECT().Tune(mock.Anything, uint16(15)).Return(nil).Once()
	driver.EXPECT().Transmit(mock.Anything, mock.Anything).Return(nil).Once()

	f := newFixtureWithDriver(t, driver, nil)

	assert.ErrorIs(t, f.assoc.Associate(context.Background(), params), ieee802154.ErrNoResponse)
	assert.Equal(t, []pan.AssociationState{pan.StateAssociating, pan.StateUnassociated}, f.states.list())
	assert.Equal(t, uint16(ieee802154.BroadcastPANID), f.pan.Snapshot().PANID)
}
