package mgmt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrwpan/lrwpan-go/pkg/ack"
	"github.com/lrwpan/lrwpan-go/pkg/assoc"
	"github.com/lrwpan/lrwpan-go/pkg/channel"
	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/log"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/persistence"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
	"github.com/lrwpan/lrwpan-go/pkg/scan"
)

// Manager errors.
var (
	ErrClosed         = errors.New("manager closed")
	ErrUnknownRequest = errors.New("unknown management request")
	ErrMissingParams  = errors.New("request parameters required")
	ErrNoStateStore   = errors.New("no state store configured")
)

// Config configures a Manager.
type Config struct {
	// InterfaceID identifies the interface. Zero generates a random id.
	InterfaceID uuid.UUID

	// ExtendedAddress is the interface's own 64-bit address. Zero derives
	// one from InterfaceID.
	ExtendedAddress ieee802154.Address

	// AckTimeout bounds every ACK wait. Zero means ack.DefaultTimeout.
	AckTimeout time.Duration

	// ResponseTimeout bounds the wait for an association response.
	ResponseTimeout time.Duration

	// StateStore persists the context for SaveState and RestoreState.
	StateStore *persistence.StateStore

	// Logger is the optional operational logger. Nil disables logging.
	Logger *slog.Logger

	// ProtocolLogger receives protocol capture events. Nil disables capture.
	ProtocolLogger log.Logger
}

// Manager runs management requests for one interface.
type Manager struct {
	id     uuid.UUID
	config Config

	pan   *pan.Context
	radio *radio.Adapter
	scan  *scan.Coordinator
	assoc *assoc.Coordinator

	mu       sync.RWMutex
	handlers []EventHandler
	closed   bool
}

// NewManager creates the management sublayer for the interface driven by driver.
func NewManager(driver radio.Driver, cfg Config) *Manager {
	if cfg.InterfaceID == uuid.Nil {
		cfg.InterfaceID = uuid.New()
	}
	if cfg.ExtendedAddress.Mode() != ieee802154.AddrModeExtended {
		var ext [ieee802154.MaxAddrLen]byte
		copy(ext[:], cfg.InterfaceID[:ieee802154.MaxAddrLen])
		cfg.ExtendedAddress = ieee802154.ExtendedAddress(ext)
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = ack.DefaultTimeout
	}

	id := cfg.InterfaceID.String()
	panCtx := pan.NewContext(cfg.ExtendedAddress)
	adapter := radio.NewAdapter(driver, radio.Config{
		InterfaceID:    id,
		Logger:         cfg.Logger,
		ProtocolLogger: cfg.ProtocolLogger,
	})
	adapter.SetAckHandler(panCtx.Ack.Handle)

	return &Manager{
		id:     cfg.InterfaceID,
		config: cfg,
		pan:    panCtx,
		radio:  adapter,
		scan: scan.NewCoordinator(panCtx, adapter, scan.Config{
			InterfaceID:    id,
			Logger:         cfg.Logger,
			ProtocolLogger: cfg.ProtocolLogger,
		}),
		assoc: assoc.NewCoordinator(panCtx, adapter, assoc.Config{
			AckTimeout:      cfg.AckTimeout,
			ResponseTimeout: cfg.ResponseTimeout,
			InterfaceID:     id,
			Logger:          cfg.Logger,
			ProtocolLogger:  cfg.ProtocolLogger,
		}),
	}
}

// ID returns the interface id.
func (m *Manager) ID() uuid.UUID {
	return m.id
}

// OnEvent registers an event handler.
func (m *Manager) OnEvent(h EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// SetAck makes outgoing data frames request an ACK. No radio I/O.
func (m *Manager) SetAck() error {
	return m.run(RequestSetAck, func() error {
		m.pan.SetAckMode(true)
		return nil
	})
}

// UnsetAck stops outgoing data frames from requesting an ACK.
func (m *Manager) UnsetAck() error {
	return m.run(RequestUnsetAck, func() error {
		m.pan.SetAckMode(false)
		return nil
	})
}

// PassiveScan listens on each channel of set for dwell.
func (m *Manager) PassiveScan(ctx context.Context, set channel.Set, dwell time.Duration) (scan.Summary, error) {
	return m.runScan(ctx, RequestPassiveScan, scan.Request{Channels: set, Duration: dwell, Kind: scan.Passive})
}

// ActiveScan sends a beacon request on each channel of set and listens for dwell.
func (m *Manager) ActiveScan(ctx context.Context, set channel.Set, dwell time.Duration) (scan.Summary, error) {
	return m.runScan(ctx, RequestActiveScan, scan.Request{Channels: set, Duration: dwell, Kind: scan.Active})
}

func (m *Manager) runScan(ctx context.Context, code RequestCode, req scan.Request) (scan.Summary, error) {
	var summary scan.Summary
	err := m.run(code, func() error {
		var err error
		summary, err = m.scan.Scan(ctx, req, m.publishScanResult)
		return err
	})
	return summary, err
}

// CancelScan stops an active scan before its next channel. It succeeds
// trivially when no scan is running.
func (m *Manager) CancelScan() error {
	return m.run(RequestCancelScan, func() error {
		m.scan.Cancel()
		return nil
	})
}

// Associate joins the PAN panID on channel through coordinator.
func (m *Manager) Associate(ctx context.Context, panID, ch uint16, coordinator ieee802154.Address) error {
	return m.run(RequestAssociate, func() error {
		return m.assoc.Associate(ctx, assoc.Params{PANID: panID, Channel: ch, Coordinator: coordinator})
	})
}

// Disassociate leaves the current PAN.
func (m *Manager) Disassociate(ctx context.Context) error {
	return m.run(RequestDisassociate, func() error {
		return m.assoc.Disassociate(ctx)
	})
}

// SendData transmits payload to dst within the current PAN. When ACK mode
// is on the frame requests an ACK and a missing ACK yields ErrNoResponse.
// It shares the request lock with scans and association.
func (m *Manager) SendData(ctx context.Context, dst ieee802154.Address, payload []byte) error {
	if m.isClosed() {
		return ErrClosed
	}
	release, err := m.pan.Acquire(pan.OpSendData)
	if err != nil {
		return err
	}
	defer release()

	snap := m.pan.Snapshot()
	if snap.State != pan.StateAssociated {
		return ieee802154.ErrInvalidState
	}

	src := snap.ExtAddr
	if snap.ShortAddr < ieee802154.NoShortAddr {
		src = ieee802154.ShortAddress(snap.ShortAddr)
	}
	f := frame.NewData(m.pan.NextSequence(), snap.PANID, dst, src, snap.AckMode, payload)

	if !f.AckRequest {
		return m.radio.Transmit(ctx, f)
	}

	m.pan.Ack.Prepare(f.Sequence)
	if err := m.radio.Transmit(ctx, f); err != nil {
		m.pan.Ack.Abort()
		return err
	}
	outcome, err := m.pan.Ack.Wait(ctx, m.config.AckTimeout)
	if err != nil {
		return err
	}
	if outcome != ack.OutcomeReceived {
		return fmt.Errorf("%w: no ACK for data seq %d", ieee802154.ErrNoResponse, f.Sequence)
	}
	return nil
}

// State returns a consistent snapshot of the management context.
func (m *Manager) State() pan.Snapshot {
	return m.pan.Snapshot()
}

// RadioStats returns the radio adapter counters.
func (m *Manager) RadioStats() radio.Stats {
	return m.radio.Stats()
}

// AckStats returns the ACK synchronizer counters.
func (m *Manager) AckStats() ack.Stats {
	return m.pan.Ack.Stats()
}

// LinkDown reports that the link below was lost; membership is reset.
func (m *Manager) LinkDown() {
	m.debugLog("mgmt: link down")
	m.assoc.LinkDown()
}

// Close cancels any running scan and saves state when a store is
// configured. Later requests fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.scan.Cancel()
	if m.config.StateStore != nil {
		return m.SaveState()
	}
	return nil
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// run executes one request with protocol capture around it.
func (m *Manager) run(code RequestCode, fn func() error) error {
	if m.isClosed() {
		return ErrClosed
	}

	start := time.Now()
	m.logRequest(code, log.DirectionOut, "", nil)

	err := fn()

	d := time.Since(start)
	result := "OK"
	if err != nil {
		result = err.Error()
		m.debugLog("mgmt: request failed", "request", code, "error", err)
	}
	m.logRequest(code, log.DirectionIn, result, &d)
	return err
}

func (m *Manager) publishScanResult(r scan.Result) {
	m.emit(Event{
		Code:        EventScanResult,
		InterfaceID: m.id,
		Timestamp:   time.Now(),
		ScanResult:  &r,
	})
}

func (m *Manager) emit(e Event) {
	m.mu.RLock()
	handlers := m.handlers
	m.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

func (m *Manager) logRequest(code RequestCode, dir log.Direction, result string, d *time.Duration) {
	if m.config.ProtocolLogger == nil {
		return
	}
	snap := m.pan.Snapshot()
	m.config.ProtocolLogger.Log(log.Event{
		Timestamp:   time.Now(),
		InterfaceID: m.id.String(),
		Direction:   dir,
		Layer:       log.LayerManagement,
		Category:    log.CategoryRequest,
		Channel:     snap.Channel,
		PANID:       snap.PANID,
		Request: &log.RequestEvent{
			Code:     uint32(code),
			Name:     code.String(),
			Result:   result,
			Duration: d,
		},
	})
}

func (m *Manager) debugLog(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, args...)
	}
}
