package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// InterfaceID identifies the radio interface (UUID).
	InterfaceID string `cbor:"2,keyasint"`

	// Direction indicates frame or request flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Channel the radio was tuned to, if known.
	Channel uint16 `cbor:"6,keyasint,omitempty"`

	// PANID of the interface at the time of the event.
	PANID uint16 `cbor:"7,keyasint,omitempty"`

	// RemoteAddr is the NCP peer address (host:port).
	RemoteAddr string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // NCP transport
	MAC         *MACEvent         `cbor:"11,keyasint,omitempty"` // Radio
	Request     *RequestEvent     `cbor:"12,keyasint,omitempty"` // Management
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Management
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Any layer
}

// Direction indicates the direction of flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming frame or completed request.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing frame or issued request.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the NCP framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerRadio is the radio boundary (MAC frames).
	LayerRadio Layer = 1
	// LayerManagement is the management sublayer (requests, state).
	LayerManagement Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerRadio:
		return "RADIO"
	case LayerManagement:
		return "MANAGEMENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a frame crossing a boundary.
	CategoryFrame Category = 0
	// CategoryRequest indicates a management request.
	CategoryRequest Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryRequest:
		return "REQUEST"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the NCP transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MACEvent summarizes a MAC frame at the radio boundary.
type MACEvent struct {
	FrameType  uint8  `cbor:"1,keyasint"`
	Sequence   uint8  `cbor:"2,keyasint"`
	Command    uint8  `cbor:"3,keyasint,omitempty"`
	AckRequest bool   `cbor:"4,keyasint,omitempty"`
	DstPANID   uint16 `cbor:"5,keyasint,omitempty"`
	Dst        string `cbor:"6,keyasint,omitempty"`
	Src        string `cbor:"7,keyasint,omitempty"`
	LQI        uint8  `cbor:"8,keyasint,omitempty"`

	// Summary is the human-readable frame description.
	Summary string `cbor:"9,keyasint,omitempty"`
}

// RequestEvent captures a management request and its outcome.
type RequestEvent struct {
	// Code is the numeric management request code.
	Code uint32 `cbor:"1,keyasint"`

	// Name is the request name (e.g. ACTIVE_SCAN).
	Name string `cbor:"2,keyasint"`

	// Result is empty for issued requests and "OK" or the error text on completion.
	Result string `cbor:"3,keyasint,omitempty"`

	// Duration from issue to completion (completion only).
	Duration *time.Duration `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityAssociation indicates a PAN association state change.
	StateEntityAssociation StateEntity = 0
	// StateEntityScan indicates a scan started or finished.
	StateEntityScan StateEntity = 1
	// StateEntityLink indicates an NCP link state change.
	StateEntityLink StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityAssociation:
		return "ASSOCIATION"
	case StateEntityScan:
		return "SCAN"
	case StateEntityLink:
		return "LINK"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
