package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/log"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
)

// Config configures a Coordinator.
type Config struct {
	// InterfaceID tags protocol log events.
	InterfaceID string

	// Logger is the optional operational logger.
	Logger *slog.Logger

	// ProtocolLogger receives scan start and finish events.
	ProtocolLogger log.Logger
}

// Coordinator runs scans on one interface.
type Coordinator struct {
	pan    *pan.Context
	radio  *radio.Adapter
	config Config
}

// NewCoordinator creates a scan coordinator for the interface described
// by panCtx and driven through adapter.
func NewCoordinator(panCtx *pan.Context, adapter *radio.Adapter, cfg Config) *Coordinator {
	return &Coordinator{
		pan:    panCtx,
		radio:  adapter,
		config: cfg,
	}
}

type resultKey struct {
	channel uint16
	panID   uint16
	coord   string
}

// Scan performs req. The request is validated before any radio action.
// Only one scan or (dis)association may run per interface; otherwise
// ErrBusy is returned immediately. A tune or transmit failure aborts the
// scan with a RadioError. sink may be nil.
func (c *Coordinator) Scan(ctx context.Context, req Request, sink ResultSink) (summary Summary, err error) {
	summary = Summary{Kind: req.Kind}

	if err := req.Validate(); err != nil {
		return summary, err
	}

	op := pan.OpPassiveScan
	if req.Kind == Active {
		op = pan.OpActiveScan
	}
	release, err := c.pan.Acquire(op)
	if err != nil {
		return summary, err
	}
	defer release()

	start := time.Now()
	c.logState("", "SCANNING", req.Kind.String())
	c.debugLog("scan: started", "kind", req.Kind, "channels", req.Channels, "dwell", req.Duration)

	defer func() {
		summary.Elapsed = time.Since(start)
		reason := "completed"
		if summary.Cancelled {
			reason = "cancelled"
		}
		c.logState("SCANNING", "IDLE", reason)
		c.debugLog("scan: finished", "results", summary.Results, "channels", summary.ChannelsScanned, "cancelled", summary.Cancelled)
	}()

	defer c.restoreChannel(ctx)

	seen := make(map[resultKey]struct{})
	it := req.Channels.Iterator()
	for {
		ch, ok := it.Next()
		if !ok {
			break
		}

		if c.pan.ScanCancelled() {
			summary.Cancelled = true
			break
		}

		n, err := c.scanChannel(ctx, req, ch, seen, sink)
		summary.Results += n
		if err != nil {
			return summary, err
		}
		summary.ChannelsScanned++
	}

	return summary, nil
}

// scanChannel dwells on one channel and returns the number of results emitted.
func (c *Coordinator) scanChannel(ctx context.Context, req Request, ch uint16, seen map[resultKey]struct{}, sink ResultSink) (int, error) {
	if err := c.radio.Tune(ctx, ch); err != nil {
		return 0, err
	}

	// Arm before transmitting so that a fast response is not lost.
	w, err := c.radio.Arm()
	if err != nil {
		return 0, err
	}
	defer w.Close()

	if req.Kind == Active {
		if err := c.radio.Transmit(ctx, frame.NewBeaconRequest(c.pan.NextSequence())); err != nil {
			return 0, err
		}
	}

	found := 0
	deadline := time.Now().Add(req.Duration)
	for {
		f, err := w.ReceiveUntil(ctx, deadline)
		if err != nil {
			return found, err
		}
		if f == nil {
			return found, nil
		}
		if !f.IsBeacon() {
			continue
		}

		res := Result{
			Channel:     ch,
			PANID:       f.SrcPANID,
			Coordinator: f.Src,
			LinkQuality: f.LQI,
		}
		key := resultKey{channel: ch, panID: res.PANID, coord: res.Coordinator.String()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		found++

		if sink != nil {
			c.pan.PublishResult(func() { sink(res) })
		}
	}
}

// restoreChannel returns the radio to the operating channel when the
// interface is associated.
func (c *Coordinator) restoreChannel(ctx context.Context) {
	if c.pan.State() != pan.StateAssociated {
		return
	}
	ch := c.pan.Channel()
	if ch == 0 || c.radio.Channel() == ch {
		return
	}
	if err := c.radio.Tune(context.WithoutCancel(ctx), ch); err != nil && c.config.Logger != nil {
		c.config.Logger.Warn("scan: failed to restore operating channel", "channel", ch, "error", err)
	}
}

// Cancel asks a running scan to stop before its next channel.
// It is a no-op when no scan is active.
func (c *Coordinator) Cancel() {
	if c.pan.RequestScanCancel() {
		c.debugLog("scan: cancel requested")
	}
}

func (c *Coordinator) logState(from, to, reason string) {
	if c.config.ProtocolLogger == nil {
		return
	}
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:   time.Now(),
		InterfaceID: c.config.InterfaceID,
		Direction:   log.DirectionOut,
		Layer:       log.LayerManagement,
		Category:    log.CategoryState,
		Channel:     c.radio.Channel(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityScan,
			OldState: from,
			NewState: to,
			Reason:   reason,
		},
	})
}

func (c *Coordinator) debugLog(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}
