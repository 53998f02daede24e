package assoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/ack"
	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/log"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
)

// Protocol timeouts.
const (
	DefaultAckTimeout      = ack.DefaultTimeout
	DefaultResponseTimeout = 500 * time.Millisecond
)

// DefaultCapability requests a short address from the coordinator.
const DefaultCapability = frame.CapAllocateAddress | frame.CapReceiverOnWhenIdle

// Config configures a Coordinator.
type Config struct {
	// AckTimeout bounds each ACK wait. Zero means DefaultAckTimeout.
	AckTimeout time.Duration

	// ResponseTimeout bounds the wait for the association response after
	// the request was acknowledged. Zero means DefaultResponseTimeout.
	ResponseTimeout time.Duration

	// Capability is sent in association requests. Zero means DefaultCapability.
	Capability uint8

	// InterfaceID tags protocol log events.
	InterfaceID string

	// Logger is the optional operational logger.
	Logger *slog.Logger

	// ProtocolLogger receives association state changes.
	ProtocolLogger log.Logger
}

func (c *Config) applyDefaults() {
	if c.AckTimeout <= 0 {
		c.AckTimeout = DefaultAckTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.Capability == 0 {
		c.Capability = DefaultCapability
	}
}

// Params identifies the PAN to join.
type Params struct {
	PANID       uint16
	Channel     uint16
	Coordinator ieee802154.Address
}

// Validate checks the channel and coordinator address.
func (p Params) Validate() error {
	if !ieee802154.ValidChannel(p.Channel) {
		return fmt.Errorf("%w: channel %d", ieee802154.ErrInvalidChannelSet, p.Channel)
	}
	if p.Coordinator.IsZero() {
		return fmt.Errorf("%w: coordinator address required", ieee802154.ErrInvalidAddress)
	}
	if p.PANID == ieee802154.BroadcastPANID {
		return fmt.Errorf("%w: broadcast PAN id", ieee802154.ErrInvalidAddress)
	}
	return nil
}

// Coordinator runs association and disassociation on one interface.
type Coordinator struct {
	pan    *pan.Context
	radio  *radio.Adapter
	config Config
}

// NewCoordinator creates an association coordinator. It registers a state
// observer on panCtx that records every transition in the protocol log.
func NewCoordinator(panCtx *pan.Context, adapter *radio.Adapter, cfg Config) *Coordinator {
	cfg.applyDefaults()
	c := &Coordinator{
		pan:    panCtx,
		radio:  adapter,
		config: cfg,
	}
	panCtx.OnStateChange(c.logTransition)
	return c
}

// Associate joins the PAN described by p.
//
// Errors: ErrBusy if another management operation is running,
// ErrInvalidState unless unassociated, ErrInvalidChannelSet or
// ErrInvalidAddress for bad parameters, a RadioError on driver failure,
// ErrNoResponse when the ACK or the response does not arrive, and an
// AssociationError (matching ErrAssociationRejected) on a negative
// response. On every error the interface is left unassociated.
func (c *Coordinator) Associate(ctx context.Context, p Params) error {
	release, err := c.pan.Acquire(pan.OpAssociate)
	if err != nil {
		return err
	}
	defer release()

	if c.pan.State() != pan.StateUnassociated {
		return ieee802154.ErrInvalidState
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if err := c.radio.Tune(ctx, p.Channel); err != nil {
		return err
	}
	if err := c.pan.BeginAssociation(p.PANID, p.Channel, p.Coordinator); err != nil {
		return err
	}

	shortAddr, err := c.requestAssociation(ctx, p)
	if err != nil {
		c.pan.ResetAssociation()
		c.debugLog("assoc: failed", "pan_id", p.PANID, "channel", p.Channel, "error", err)
		return err
	}

	if err := c.pan.CompleteAssociation(shortAddr); err != nil {
		// Link went down while waiting.
		c.pan.ResetAssociation()
		return err
	}
	c.debugLog("assoc: joined", "pan_id", p.PANID, "channel", p.Channel, "short_addr", shortAddr)
	return nil
}

// requestAssociation runs the request/ACK/response exchange and returns
// the assigned short address.
func (c *Coordinator) requestAssociation(ctx context.Context, p Params) (uint16, error) {
	// Arm before transmitting; the response may follow the ACK closely.
	w, err := c.radio.Arm()
	if err != nil {
		return 0, err
	}
	defer w.Close()

	self := c.pan.ExtendedAddress()
	req := frame.NewAssociationRequest(c.pan.NextSequence(), p.PANID, p.Coordinator, self, c.config.Capability)

	if err := c.transmitAcked(ctx, req); err != nil {
		return 0, err
	}

	deadline := time.Now().Add(c.config.ResponseTimeout)
	for {
		f, err := w.ReceiveUntil(ctx, deadline)
		if err != nil {
			return 0, err
		}
		if f == nil {
			return 0, fmt.Errorf("%w: association response", ieee802154.ErrNoResponse)
		}
		if f.SrcPANID != p.PANID || f.Dst != self {
			continue
		}
		shortAddr, status, ok := f.AssociationResponse()
		if !ok {
			continue
		}
		if status != frame.AssocSuccess {
			return 0, &ieee802154.AssociationError{Status: status}
		}
		return shortAddr, nil
	}
}

// Disassociate leaves the current PAN. The local state is cleared whether
// or not the coordinator acknowledged the notification; a radio failure
// or missing ACK is still returned to the caller.
func (c *Coordinator) Disassociate(ctx context.Context) error {
	release, err := c.pan.Acquire(pan.OpDisassociate)
	if err != nil {
		return err
	}
	defer release()

	snap := c.pan.Snapshot()
	if err := c.pan.BeginDisassociation(); err != nil {
		return err
	}
	defer c.pan.ResetAssociation()

	notice := frame.NewDisassociationNotification(
		c.pan.NextSequence(), snap.PANID, snap.Coordinator, snap.ExtAddr, frame.DisassocDeviceRequest)

	err = c.transmitAcked(ctx, notice)
	if errors.Is(err, ieee802154.ErrNoResponse) {
		c.debugLog("assoc: disassociation not acknowledged", "pan_id", snap.PANID)
		err = nil
	}
	return err
}

// LinkDown force-resets membership after the link below was lost.
func (c *Coordinator) LinkDown() {
	c.pan.LinkDown()
}

// transmitAcked sends f, which must request an ACK, and waits for the ACK.
func (c *Coordinator) transmitAcked(ctx context.Context, f *frame.Frame) error {
	c.pan.Ack.Prepare(f.Sequence)
	if err := c.radio.Transmit(ctx, f); err != nil {
		c.pan.Ack.Abort()
		return err
	}

	outcome, err := c.pan.Ack.Wait(ctx, c.config.AckTimeout)
	if err != nil {
		return err
	}
	if outcome != ack.OutcomeReceived {
		return fmt.Errorf("%w: no ACK for %s seq %d", ieee802154.ErrNoResponse, f.Command, f.Sequence)
	}
	return nil
}

func (c *Coordinator) logTransition(from, to pan.AssociationState) {
	c.debugLog("assoc: state", "from", from, "to", to)
	if c.config.ProtocolLogger == nil {
		return
	}
	snap := c.pan.Snapshot()
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:   time.Now(),
		InterfaceID: c.config.InterfaceID,
		Direction:   log.DirectionIn,
		Layer:       log.LayerManagement,
		Category:    log.CategoryState,
		Channel:     snap.Channel,
		PANID:       snap.PANID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAssociation,
			OldState: from.String(),
			NewState: to.String(),
		},
	})
}

func (c *Coordinator) debugLog(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}
