package sim

import (
	"context"
	"sync"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// Reply latencies. ACKs always precede the command response.
const (
	AckDelay             = time.Millisecond
	DefaultResponseDelay = 3 * time.Millisecond
)

// Coordinator is a simulated PAN coordinator.
type Coordinator struct {
	Channel uint16
	PANID   uint16
	Address ieee802154.Address

	// LQI reported for frames from this coordinator.
	LQI uint8

	// Beaconing coordinators emit a beacon whenever a radio tunes to Channel.
	Beaconing bool

	// RespondToBeaconRequest answers beacon requests (active scan).
	RespondToBeaconRequest bool

	// AutoAck acknowledges frames addressed to the coordinator that request an ACK.
	AutoAck bool

	// AssociationStatus is returned in association responses.
	AssociationStatus uint8

	// AssignShortAddr is the short address handed out on success.
	AssignShortAddr uint16

	// Silent coordinators acknowledge association requests but never respond.
	Silent bool

	// ResponseDelay before beacons and association responses.
	// Zero means DefaultResponseDelay.
	ResponseDelay time.Duration
}

func (c *Coordinator) responseDelay() time.Duration {
	if c.ResponseDelay > 0 {
		return c.ResponseDelay
	}
	return DefaultResponseDelay
}

// Medium is a shared simulated radio environment.
type Medium struct {
	mu           sync.Mutex
	coordinators []*Coordinator
	tuneFailures map[uint16]error
	txFailure    error
	tunes        []uint16
	transmitted  []*frame.Frame
	seq          uint8
}

// NewMedium creates an empty medium.
func NewMedium() *Medium {
	return &Medium{
		tuneFailures: make(map[uint16]error),
	}
}

// AddCoordinator places a coordinator on the medium.
func (m *Medium) AddCoordinator(c Coordinator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := c
	m.coordinators = append(m.coordinators, &cc)
}

// Coordinators returns a copy of the configured coordinators.
func (m *Medium) Coordinators() []Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Coordinator, len(m.coordinators))
	for i, c := range m.coordinators {
		out[i] = *c
	}
	return out
}

// FailTune makes every tune to channel fail with err. A nil err clears it.
func (m *Medium) FailTune(channel uint16, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.tuneFailures, channel)
		return
	}
	m.tuneFailures[channel] = err
}

// FailTransmit makes every transmit fail with err. A nil err clears it.
func (m *Medium) FailTransmit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txFailure = err
}

// Tunes returns the channels radios tuned to, in order.
func (m *Medium) Tunes() []uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint16(nil), m.tunes...)
}

// Transmitted returns the frames sent by radios, in order.
func (m *Medium) Transmitted() []*frame.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*frame.Frame(nil), m.transmitted...)
}

// NewRadio attaches a new radio to the medium.
func (m *Medium) NewRadio() *Radio {
	return &Radio{medium: m}
}

func (m *Medium) onChannel(ch uint16) []*Coordinator {
	var out []*Coordinator
	for _, c := range m.coordinators {
		if c.Channel == ch {
			out = append(out, c)
		}
	}
	return out
}

// Radio is a simulated radio.Driver.
type Radio struct {
	medium *Medium

	mu      sync.Mutex
	channel uint16
	handler func(*frame.Frame)
}

// SetReceiveHandler installs the receive handler.
func (r *Radio) SetReceiveHandler(h func(*frame.Frame)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

// Channel returns the current channel.
func (r *Radio) Channel() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

// Tune switches channel and triggers beacons from beaconing coordinators.
func (r *Radio) Tune(ctx context.Context, channel uint16) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := r.medium
	m.mu.Lock()
	m.tunes = append(m.tunes, channel)
	if err := m.tuneFailures[channel]; err != nil {
		m.mu.Unlock()
		return err
	}
	var beacons []*Coordinator
	for _, c := range m.onChannel(channel) {
		if c.Beaconing {
			beacons = append(beacons, c)
		}
	}
	m.mu.Unlock()

	r.mu.Lock()
	r.channel = channel
	r.mu.Unlock()

	for _, c := range beacons {
		r.reply(c, c.responseDelay(), frame.NewBeacon(r.medium.nextSequence(), c.PANID, c.Address))
	}
	return nil
}

// Transmit sends f on the current channel.
func (r *Radio) Transmit(ctx context.Context, f *frame.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	channel := r.Channel()

	m := r.medium
	m.mu.Lock()
	if m.txFailure != nil {
		err := m.txFailure
		m.mu.Unlock()
		return err
	}
	sent := *f
	sent.Channel = channel
	m.transmitted = append(m.transmitted, &sent)
	coordinators := m.onChannel(channel)
	m.mu.Unlock()

	for _, c := range coordinators {
		r.respond(c, &sent)
	}
	return nil
}

// respond schedules the coordinator's reaction to a frame on its channel.
func (r *Radio) respond(c *Coordinator, f *frame.Frame) {
	if f.IsCommand(frame.CmdBeaconRequest) {
		if c.RespondToBeaconRequest {
			r.reply(c, c.responseDelay(), frame.NewBeacon(r.medium.nextSequence(), c.PANID, c.Address))
		}
		return
	}

	if f.DstPANID != c.PANID || f.Dst != c.Address {
		return
	}

	if f.AckRequest && c.AutoAck {
		r.reply(c, AckDelay, frame.NewAck(f.Sequence))
	}

	if f.IsCommand(frame.CmdAssociationRequest) && !c.Silent {
		shortAddr := c.AssignShortAddr
		if c.AssociationStatus != frame.AssocSuccess {
			shortAddr = ieee802154.NoShortAddr
		}
		resp := frame.NewAssociationResponse(r.medium.nextSequence(), c.PANID, f.Src, c.Address, shortAddr, c.AssociationStatus)
		r.reply(c, AckDelay+c.responseDelay(), resp)
	}
}

// reply delivers f from c after delay if the radio is still on c's channel.
func (r *Radio) reply(c *Coordinator, delay time.Duration, f *frame.Frame) {
	channel := c.Channel
	lqi := c.LQI
	time.AfterFunc(delay, func() {
		r.mu.Lock()
		h := r.handler
		onChannel := r.channel == channel
		r.mu.Unlock()

		if h == nil || !onChannel {
			return
		}
		f.Channel = channel
		f.LQI = lqi
		h(f)
	})
}

// nextSequence numbers frames originated by coordinators.
func (m *Medium) nextSequence() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}
