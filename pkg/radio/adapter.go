package radio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/log"
)

// windowBuffer bounds the frames held by one receive window.
const windowBuffer = 32

// Config configures an Adapter.
type Config struct {
	// InterfaceID tags protocol log events.
	InterfaceID string

	// Logger is the optional operational logger. Nil disables logging.
	Logger *slog.Logger

	// ProtocolLogger receives one event per frame in either direction.
	ProtocolLogger log.Logger
}

// Stats counts adapter activity.
type Stats struct {
	Tunes            uint64
	TuneFailures     uint64
	Transmitted      uint64
	TransmitFailures uint64
	Received         uint64
	AcksRouted       uint64
	Dropped          uint64
}

// Adapter wraps a Driver with error normalization and receive windows.
type Adapter struct {
	driver Driver
	config Config

	mu         sync.Mutex
	channel    uint16
	window     *Window
	ackHandler func(*frame.Frame) bool
	stats      Stats
}

// NewAdapter creates an adapter and installs itself as the driver's
// receive handler.
func NewAdapter(driver Driver, cfg Config) *Adapter {
	a := &Adapter{
		driver: driver,
		config: cfg,
	}
	driver.SetReceiveHandler(a.deliver)
	return a
}

// SetAckHandler registers the function offered every received ACK frame.
func (a *Adapter) SetAckHandler(h func(*frame.Frame) bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ackHandler = h
}

// Tune switches the radio to channel.
func (a *Adapter) Tune(ctx context.Context, channel uint16) error {
	err := a.driver.Tune(ctx, channel)

	a.mu.Lock()
	a.stats.Tunes++
	if err != nil {
		a.stats.TuneFailures++
	} else {
		a.channel = channel
	}
	a.mu.Unlock()

	if err != nil {
		a.logError("tune", err)
		return &ieee802154.RadioError{Op: ieee802154.RadioOpTune, Channel: channel, Err: err}
	}
	a.debugLog("radio: tuned", "channel", channel)
	return nil
}

// Transmit hands f to the driver.
func (a *Adapter) Transmit(ctx context.Context, f *frame.Frame) error {
	channel := a.Channel()
	a.logFrame(f, log.DirectionOut, channel)

	err := a.driver.Transmit(ctx, f)

	a.mu.Lock()
	if err != nil {
		a.stats.TransmitFailures++
	} else {
		a.stats.Transmitted++
	}
	a.mu.Unlock()

	if err != nil {
		a.logError("transmit", err)
		return &ieee802154.RadioError{Op: ieee802154.RadioOpTransmit, Channel: channel, Err: err}
	}
	return nil
}

// Channel returns the channel of the last successful Tune, or 0.
func (a *Adapter) Channel() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.channel
}

// Arm opens the receive window. Only one window may be armed at a time;
// a second Arm fails with ErrBusy.
func (a *Adapter) Arm() (*Window, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.window != nil {
		return nil, ieee802154.ErrBusy
	}
	w := &Window{
		adapter: a,
		frames:  make(chan *frame.Frame, windowBuffer),
	}
	a.window = w
	return w, nil
}

// Stats returns a copy of the counters.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// deliver is the driver's receive handler.
func (a *Adapter) deliver(f *frame.Frame) {
	if f == nil {
		return
	}

	a.mu.Lock()
	a.stats.Received++
	if f.Channel == 0 {
		f.Channel = a.channel
	}
	ackHandler := a.ackHandler
	w := a.window
	a.mu.Unlock()

	a.logFrame(f, log.DirectionIn, f.Channel)

	if f.IsAck() {
		if ackHandler != nil && ackHandler(f) {
			a.mu.Lock()
			a.stats.AcksRouted++
			a.mu.Unlock()
			return
		}
	}

	if w != nil && w.offer(f) {
		return
	}

	a.mu.Lock()
	a.stats.Dropped++
	a.mu.Unlock()
}

func (a *Adapter) release(w *Window) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.window == w {
		a.window = nil
	}
}

func (a *Adapter) logFrame(f *frame.Frame, dir log.Direction, channel uint16) {
	if a.config.ProtocolLogger == nil {
		return
	}
	a.config.ProtocolLogger.Log(log.Event{
		Timestamp:   time.Now(),
		InterfaceID: a.config.InterfaceID,
		Direction:   dir,
		Layer:       log.LayerRadio,
		Category:    log.CategoryFrame,
		Channel:     channel,
		PANID:       f.DstPANID,
		MAC: &log.MACEvent{
			FrameType:  uint8(f.Type),
			Sequence:   f.Sequence,
			Command:    uint8(f.Command),
			AckRequest: f.AckRequest,
			DstPANID:   f.DstPANID,
			Dst:        f.Dst.String(),
			Src:        f.Src.String(),
			LQI:        f.LQI,
			Summary:    f.String(),
		},
	})
}

func (a *Adapter) logError(op string, err error) {
	if a.config.Logger != nil {
		a.config.Logger.Warn("radio: operation failed", "op", op, "error", err)
	}
	if a.config.ProtocolLogger != nil {
		a.config.ProtocolLogger.Log(log.Event{
			Timestamp:   time.Now(),
			InterfaceID: a.config.InterfaceID,
			Direction:   log.DirectionOut,
			Layer:       log.LayerRadio,
			Category:    log.CategoryError,
			Channel:     a.Channel(),
			Error: &log.ErrorEventData{
				Layer:   log.LayerRadio,
				Message: err.Error(),
				Context: op,
			},
		})
	}
}

func (a *Adapter) debugLog(msg string, args ...any) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, args...)
	}
}
