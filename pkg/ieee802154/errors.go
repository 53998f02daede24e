package ieee802154

import (
	"errors"
	"fmt"
)

// Management errors.
var (
	ErrBusy                = errors.New("management operation already in progress")
	ErrInvalidChannelSet   = errors.New("invalid channel set")
	ErrInvalidDuration     = errors.New("invalid scan duration")
	ErrInvalidState        = errors.New("invalid association state")
	ErrNoResponse          = errors.New("no response")
	ErrAssociationRejected = errors.New("association rejected")
	ErrInvalidAddress      = errors.New("invalid address")
)

// RadioOp names the radio action that failed.
type RadioOp string

// Radio operations.
const (
	RadioOpTune     RadioOp = "tune"
	RadioOpTransmit RadioOp = "transmit"
	RadioOpReceive  RadioOp = "receive"
)

// RadioError reports a failure of the radio driver. The driver error is
// kept as-is and is reachable through errors.Is / errors.As.
type RadioError struct {
	Op      RadioOp
	Channel uint16
	Err     error
}

// Error implements error.
func (e *RadioError) Error() string {
	if e.Channel != 0 {
		return fmt.Sprintf("radio %s on channel %d: %v", e.Op, e.Channel, e.Err)
	}
	return fmt.Sprintf("radio %s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *RadioError) Unwrap() error {
	return e.Err
}

// AssociationError is returned when a coordinator answers an association
// request with a non-success status. It matches ErrAssociationRejected.
type AssociationError struct {
	Status uint8
}

// Error implements error.
func (e *AssociationError) Error() string {
	return fmt.Sprintf("association rejected: %s", AssociationStatusString(e.Status))
}

// Is reports whether target is ErrAssociationRejected.
func (e *AssociationError) Is(target error) bool {
	return target == ErrAssociationRejected
}

// AssociationStatusString returns a readable name for an association status.
func AssociationStatusString(status uint8) string {
	switch status {
	case 0x00:
		return "SUCCESS"
	case 0x01:
		return "PAN_AT_CAPACITY"
	case 0x02:
		return "PAN_ACCESS_DENIED"
	default:
		return fmt.Sprintf("STATUS_0x%02x", status)
	}
}
