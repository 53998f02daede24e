package pan

import (
	"encoding/binary"
	"fmt"

	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// PackedSize is the length of the packed context layout.
const PackedSize = 6

// Flag bits of the packed layout.
const (
	flagAckReceived  = 1 << 0
	flagAckRequested = 1 << 1
	flagAssociated   = 1 << 2
)

// Snapshot is a consistent copy of a Context.
type Snapshot struct {
	PANID        uint16
	Channel      uint16
	Sequence     uint8
	AckRequested bool
	AckReceived  bool
	Associated   bool

	State       AssociationState
	Coordinator ieee802154.Address
	ShortAddr   uint16
	ExtAddr     ieee802154.Address
	AckMode     bool
	Active      Op
}

// Snapshot returns a consistent copy of the context.
func (c *Context) Snapshot() Snapshot {
	requested, received := c.Ack.State()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		PANID:        c.panID,
		Channel:      c.channel,
		Sequence:     c.sequence,
		AckRequested: requested,
		AckReceived:  received,
		Associated:   c.state == StateAssociated,
		State:        c.state,
		Coordinator:  c.coordinator,
		ShortAddr:    c.shortAddr,
		ExtAddr:      c.extAddr,
		AckMode:      c.ackMode,
		Active:       c.active,
	}
}

// MarshalBinary packs the wire-compatible fields: pan_id and channel as
// little-endian 16-bit values, the sequence byte, then one flag byte
// (bit0 ack_received, bit1 ack_requested, bit2 associated).
func (s Snapshot) MarshalBinary() ([]byte, error) {
	b := make([]byte, PackedSize)
	binary.LittleEndian.PutUint16(b[0:2], s.PANID)
	binary.LittleEndian.PutUint16(b[2:4], s.Channel)
	b[4] = s.Sequence
	if s.AckReceived {
		b[5] |= flagAckReceived
	}
	if s.AckRequested {
		b[5] |= flagAckRequested
	}
	if s.Associated {
		b[5] |= flagAssociated
	}
	return b, nil
}

// UnmarshalBinary unpacks the layout written by MarshalBinary. Fields not
// in the packed layout are left unchanged, except State which follows the
// associated flag.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	if len(data) != PackedSize {
		return fmt.Errorf("packed context: want %d bytes, got %d", PackedSize, len(data))
	}
	if data[5]&^(flagAckReceived|flagAckRequested|flagAssociated) != 0 {
		return fmt.Errorf("packed context: reserved flag bits set: 0x%02x", data[5])
	}
	s.PANID = binary.LittleEndian.Uint16(data[0:2])
	s.Channel = binary.LittleEndian.Uint16(data[2:4])
	s.Sequence = data[4]
	s.AckReceived = data[5]&flagAckReceived != 0
	s.AckRequested = data[5]&flagAckRequested != 0
	s.Associated = data[5]&flagAssociated != 0
	if s.Associated {
		s.State = StateAssociated
	} else {
		s.State = StateUnassociated
	}
	return nil
}
