package pan

import (
	"sync"

	"github.com/lrwpan/lrwpan-go/pkg/ack"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// StateChangeHandler observes association state transitions.
type StateChangeHandler func(from, to AssociationState)

// Context is the management state of one radio interface.
type Context struct {
	// Ack tracks the single in-flight transmission that requested an ACK.
	Ack *ack.Synchronizer

	mu sync.RWMutex

	panID       uint16
	channel     uint16
	sequence    uint8
	coordinator ieee802154.Address
	shortAddr   uint16
	extAddr     ieee802154.Address
	state       AssociationState
	ackMode     bool

	// Request-in-flight lock and the cancel flag of the scan holding it.
	active        Op
	scanCancelled bool

	// Result lock.
	resultMu sync.Mutex

	onStateChange []StateChangeHandler
}

// NewContext creates the context for an interface whose own extended
// address is self. The interface starts unassociated on no channel.
func NewContext(self ieee802154.Address) *Context {
	return &Context{
		Ack:       ack.NewSynchronizer(),
		panID:     ieee802154.BroadcastPANID,
		shortAddr: ieee802154.BroadcastShortAddr,
		extAddr:   self,
	}
}

// Acquire takes the request-in-flight lock for op. It never blocks: if a
// scan or (dis)association is running it fails with ErrBusy. The returned
// release function is idempotent.
func (c *Context) Acquire(op Op) (release func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != OpNone {
		return nil, ieee802154.ErrBusy
	}
	c.active = op

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.active = OpNone
			c.scanCancelled = false
			c.mu.Unlock()
		})
	}, nil
}

// Active returns the operation holding the request lock, or OpNone.
func (c *Context) Active() Op {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// PublishResult runs fn under the result lock so that one result is fully
// delivered before the next begins.
func (c *Context) PublishResult(fn func()) {
	c.resultMu.Lock()
	defer c.resultMu.Unlock()
	fn()
}

// RequestScanCancel sets the cancel flag of the running scan. It reports
// whether a scan was running to observe it.
func (c *Context) RequestScanCancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != OpPassiveScan && c.active != OpActiveScan {
		return false
	}
	c.scanCancelled = true
	return true
}

// ScanCancelled reports whether the running scan has been asked to stop.
func (c *Context) ScanCancelled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scanCancelled
}

// SetAckMode sets whether outgoing data frames request an ACK.
func (c *Context) SetAckMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ackMode = enabled
}

// AckMode reports whether outgoing data frames request an ACK.
func (c *Context) AckMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ackMode
}

// NextSequence returns the sequence number for the next outgoing frame.
// Wraps at 256.
func (c *Context) NextSequence() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.sequence
	c.sequence++
	return seq
}

// State returns the association state.
func (c *Context) State() AssociationState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ExtendedAddress returns the interface's own extended address.
func (c *Context) ExtendedAddress() ieee802154.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extAddr
}

// Channel returns the operating channel, 0 if none.
func (c *Context) Channel() uint16 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// SetChannel records the operating channel.
func (c *Context) SetChannel(channel uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channel = channel
}

// OnStateChange registers an observer for association transitions.
// Observers run synchronously after the transition, outside the lock.
func (c *Context) OnStateChange(h StateChangeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = append(c.onStateChange, h)
}

// BeginAssociation moves Unassociated to Associating and records the
// target PAN. Called with the request lock held.
func (c *Context) BeginAssociation(panID, channel uint16, coordinator ieee802154.Address) error {
	c.mu.Lock()
	if c.state != StateUnassociated {
		c.mu.Unlock()
		return ieee802154.ErrInvalidState
	}
	c.panID = panID
	c.channel = channel
	c.coordinator = coordinator
	old := c.setStateLocked(StateAssociating)
	handlers := c.onStateChange
	c.mu.Unlock()

	notify(handlers, old, StateAssociating)
	return nil
}

// CompleteAssociation moves Associating to Associated with the short
// address the coordinator assigned.
func (c *Context) CompleteAssociation(shortAddr uint16) error {
	c.mu.Lock()
	if c.state != StateAssociating {
		c.mu.Unlock()
		return ieee802154.ErrInvalidState
	}
	c.shortAddr = shortAddr
	old := c.setStateLocked(StateAssociated)
	handlers := c.onStateChange
	c.mu.Unlock()

	notify(handlers, old, StateAssociated)
	return nil
}

// BeginDisassociation moves Associated to Disassociating.
func (c *Context) BeginDisassociation() error {
	c.mu.Lock()
	if c.state != StateAssociated {
		c.mu.Unlock()
		return ieee802154.ErrInvalidState
	}
	old := c.setStateLocked(StateDisassociating)
	handlers := c.onStateChange
	c.mu.Unlock()

	notify(handlers, old, StateDisassociating)
	return nil
}

// ResetAssociation returns to Unassociated from any state: the PAN id goes
// back to the broadcast sentinel and the coordinator is forgotten. The
// channel is kept.
func (c *Context) ResetAssociation() {
	c.mu.Lock()
	c.panID = ieee802154.BroadcastPANID
	c.coordinator = ieee802154.Address{}
	c.shortAddr = ieee802154.BroadcastShortAddr
	old := c.setStateLocked(StateUnassociated)
	handlers := c.onStateChange
	c.mu.Unlock()

	if old != StateUnassociated {
		notify(handlers, old, StateUnassociated)
	}
}

// LinkDown force-resets the association after a lower-layer link loss.
// It does not take the request lock; an in-flight operation finds the
// state reset when it next inspects it.
func (c *Context) LinkDown() {
	c.ResetAssociation()
}

// Restore loads a previously saved snapshot. Only allowed while idle and
// unassociated.
func (c *Context) Restore(s Snapshot) error {
	c.mu.Lock()
	if c.active != OpNone || c.state != StateUnassociated {
		c.mu.Unlock()
		return ieee802154.ErrInvalidState
	}
	c.panID = s.PANID
	c.channel = s.Channel
	c.sequence = s.Sequence
	c.coordinator = s.Coordinator
	c.shortAddr = s.ShortAddr
	c.ackMode = s.AckMode
	var old AssociationState
	changed := s.Associated
	if changed {
		old = c.setStateLocked(StateAssociated)
	}
	handlers := c.onStateChange
	c.mu.Unlock()

	if changed {
		notify(handlers, old, StateAssociated)
	}
	return nil
}

func (c *Context) setStateLocked(s AssociationState) AssociationState {
	old := c.state
	c.state = s
	return old
}

func notify(handlers []StateChangeHandler, from, to AssociationState) {
	for _, h := range handlers {
		h(from, to)
	}
}
