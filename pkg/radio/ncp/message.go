package ncp

import (
	"fmt"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
)

// Kind classifies a message.
type Kind uint8

const (
	KindRequest    Kind = 0
	KindResponse   Kind = 1
	KindIndication Kind = 2
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "REQUEST"
	case KindResponse:
		return "RESPONSE"
	case KindIndication:
		return "INDICATION"
	default:
		return "UNKNOWN"
	}
}

// Op is the radio operation a message carries.
type Op uint8

const (
	OpTune     Op = 1
	OpTransmit Op = 2
	OpReceive  Op = 3
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpTune:
		return "TUNE"
	case OpTransmit:
		return "TRANSMIT"
	case OpReceive:
		return "RECEIVE"
	default:
		return fmt.Sprintf("OP_%d", uint8(o))
	}
}

// Message is one NCP protocol message.
type Message struct {
	// ID pairs a response with its request. Indications use 0.
	ID uint32 `cbor:"1,keyasint"`

	Kind Kind `cbor:"2,keyasint"`
	Op   Op   `cbor:"3,keyasint"`

	// Channel for OpTune.
	Channel uint16 `cbor:"4,keyasint,omitempty"`

	// Frame for OpTransmit requests and OpReceive indications.
	Frame *frame.Frame `cbor:"5,keyasint,omitempty"`

	// Error is set on a failed response.
	Error string `cbor:"6,keyasint,omitempty"`
}

// EncodeMessage encodes a message to CBOR.
func EncodeMessage(m *Message) ([]byte, error) {
	return frame.Marshal(m)
}

// DecodeMessage decodes a CBOR message.
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := frame.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode ncp message: %w", err)
	}
	return &m, nil
}

// RemoteError is a failure reported by the NCP.
type RemoteError struct {
	Op      Op
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ncp %s: %s", e.Op, e.Message)
}
