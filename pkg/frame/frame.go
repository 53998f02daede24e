package frame

import (
	"fmt"

	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// Type is the MAC frame type.
type Type uint8

const (
	TypeBeacon  Type = 0
	TypeData    Type = 1
	TypeAck     Type = 2
	TypeCommand Type = 3
)

// String returns the frame type name.
func (t Type) String() string {
	switch t {
	case TypeBeacon:
		return "BEACON"
	case TypeData:
		return "DATA"
	case TypeAck:
		return "ACK"
	case TypeCommand:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}

// Command is a MAC command frame identifier.
type Command uint8

const (
	CmdNone                       Command = 0x00
	CmdAssociationRequest         Command = 0x01
	CmdAssociationResponse        Command = 0x02
	CmdDisassociationNotification Command = 0x03
	CmdDataRequest                Command = 0x04
	CmdBeaconRequest              Command = 0x07
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdNone:
		return "NONE"
	case CmdAssociationRequest:
		return "ASSOCIATION_REQUEST"
	case CmdAssociationResponse:
		return "ASSOCIATION_RESPONSE"
	case CmdDisassociationNotification:
		return "DISASSOCIATION_NOTIFICATION"
	case CmdDataRequest:
		return "DATA_REQUEST"
	case CmdBeaconRequest:
		return "BEACON_REQUEST"
	default:
		return fmt.Sprintf("CMD_0x%02x", uint8(c))
	}
}

// Association response status values.
const (
	AssocSuccess       uint8 = 0x00
	AssocPANAtCapacity uint8 = 0x01
	AssocAccessDenied  uint8 = 0x02
)

// Disassociation reasons.
const (
	DisassocCoordinatorRequest uint8 = 0x01
	DisassocDeviceRequest      uint8 = 0x02
)

// Capability information bits of an association request.
const (
	CapAlternatePANCoordinator uint8 = 0x01
	CapDeviceTypeFFD           uint8 = 0x02
	CapPowerSource             uint8 = 0x04
	CapReceiverOnWhenIdle      uint8 = 0x08
	CapSecurity                uint8 = 0x40
	CapAllocateAddress         uint8 = 0x80
)

// Frame is a MAC frame as seen by the management sublayer.
type Frame struct {
	Type       Type               `cbor:"1,keyasint"`
	Sequence   uint8              `cbor:"2,keyasint"`
	AckRequest bool               `cbor:"3,keyasint,omitempty"`
	DstPANID   uint16             `cbor:"4,keyasint,omitempty"`
	Dst        ieee802154.Address `cbor:"5,keyasint,omitempty"`
	SrcPANID   uint16             `cbor:"6,keyasint,omitempty"`
	Src        ieee802154.Address `cbor:"7,keyasint,omitempty"`
	Command    Command            `cbor:"8,keyasint,omitempty"`
	Payload    []byte             `cbor:"9,keyasint,omitempty"`

	// Receive-side metadata filled in by the driver.
	LQI     uint8  `cbor:"10,keyasint,omitempty"`
	Channel uint16 `cbor:"11,keyasint,omitempty"`
}

// String returns a one-line summary of the frame.
func (f *Frame) String() string {
	if f.Type == TypeCommand {
		return fmt.Sprintf("%s(%s) seq=%d pan=0x%04x dst=%s src=%s", f.Type, f.Command, f.Sequence, f.DstPANID, f.Dst, f.Src)
	}
	return fmt.Sprintf("%s seq=%d pan=0x%04x dst=%s src=%s", f.Type, f.Sequence, f.DstPANID, f.Dst, f.Src)
}

// IsBeacon reports whether f is a beacon frame.
func (f *Frame) IsBeacon() bool {
	return f.Type == TypeBeacon
}

// IsAck reports whether f is an acknowledgment frame.
func (f *Frame) IsAck() bool {
	return f.Type == TypeAck
}

// IsCommand reports whether f is the MAC command c.
func (f *Frame) IsCommand(c Command) bool {
	return f.Type == TypeCommand && f.Command == c
}

// AssociationResponse decodes an association response command.
// ok is false if f is not a well-formed association response.
func (f *Frame) AssociationResponse() (shortAddr uint16, status uint8, ok bool) {
	if !f.IsCommand(CmdAssociationResponse) || len(f.Payload) < 3 {
		return 0, 0, false
	}
	shortAddr = uint16(f.Payload[0]) | uint16(f.Payload[1])<<8
	return shortAddr, f.Payload[2], true
}

// NewBeaconRequest builds a broadcast beacon request command.
func NewBeaconRequest(seq uint8) *Frame {
	return &Frame{
		Type:     TypeCommand,
		Sequence: seq,
		DstPANID: ieee802154.BroadcastPANID,
		Dst:      ieee802154.ShortAddress(ieee802154.BroadcastShortAddr),
		Command:  CmdBeaconRequest,
	}
}

// NewBeacon builds a beacon sent by a PAN coordinator.
func NewBeacon(seq uint8, panID uint16, src ieee802154.Address) *Frame {
	return &Frame{
		Type:     TypeBeacon,
		Sequence: seq,
		SrcPANID: panID,
		Src:      src,
	}
}

// NewAssociationRequest builds an association request addressed to the
// coordinator of panID. The source uses the device's extended address and
// the broadcast PAN id, as the device is not yet part of any PAN.
func NewAssociationRequest(seq uint8, panID uint16, coord, self ieee802154.Address, capability uint8) *Frame {
	return &Frame{
		Type:       TypeCommand,
		Sequence:   seq,
		AckRequest: true,
		DstPANID:   panID,
		Dst:        coord,
		SrcPANID:   ieee802154.BroadcastPANID,
		Src:        self,
		Command:    CmdAssociationRequest,
		Payload:    []byte{capability},
	}
}

// NewAssociationResponse builds the coordinator's answer to an association request.
func NewAssociationResponse(seq uint8, panID uint16, dst, coord ieee802154.Address, shortAddr uint16, status uint8) *Frame {
	return &Frame{
		Type:       TypeCommand,
		Sequence:   seq,
		AckRequest: true,
		DstPANID:   panID,
		Dst:        dst,
		SrcPANID:   panID,
		Src:        coord,
		Command:    CmdAssociationResponse,
		Payload:    []byte{byte(shortAddr), byte(shortAddr >> 8), status},
	}
}

// NewDisassociationNotification builds a disassociation notification.
func NewDisassociationNotification(seq uint8, panID uint16, coord, self ieee802154.Address, reason uint8) *Frame {
	return &Frame{
		Type:       TypeCommand,
		Sequence:   seq,
		AckRequest: true,
		DstPANID:   panID,
		Dst:        coord,
		SrcPANID:   panID,
		Src:        self,
		Command:    CmdDisassociationNotification,
		Payload:    []byte{reason},
	}
}

// NewData builds a data frame.
func NewData(seq uint8, panID uint16, dst, src ieee802154.Address, ackRequest bool, payload []byte) *Frame {
	return &Frame{
		Type:       TypeData,
		Sequence:   seq,
		AckRequest: ackRequest,
		DstPANID:   panID,
		Dst:        dst,
		SrcPANID:   panID,
		Src:        src,
		Payload:    payload,
	}
}

// NewAck builds an immediate acknowledgment for sequence seq.
func NewAck(seq uint8) *Frame {
	return &Frame{
		Type:     TypeAck,
		Sequence: seq,
	}
}
