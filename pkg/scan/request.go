package scan

import (
	"fmt"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/channel"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// Kind selects passive or active scanning.
type Kind uint8

const (
	Passive Kind = iota
	Active
)

// String returns the scan kind name.
func (k Kind) String() string {
	switch k {
	case Passive:
		return "PASSIVE"
	case Active:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Request describes one scan.
type Request struct {
	Channels channel.Set
	Duration time.Duration
	Kind     Kind
}

// Validate rejects channel bits outside 11-26 and a zero dwell time.
func (r Request) Validate() error {
	if err := r.Channels.Validate(); err != nil {
		return err
	}
	if r.Duration <= 0 {
		return fmt.Errorf("%w: %v", ieee802154.ErrInvalidDuration, r.Duration)
	}
	return nil
}

// Result describes one discovered PAN.
type Result struct {
	Channel     uint16             `cbor:"1,keyasint" json:"channel"`
	PANID       uint16             `cbor:"2,keyasint" json:"pan_id"`
	Coordinator ieee802154.Address `cbor:"3,keyasint" json:"coordinator"`
	LinkQuality uint8              `cbor:"4,keyasint" json:"lqi"`
}

// String returns a one-line description.
func (r Result) String() string {
	return fmt.Sprintf("channel %d pan 0x%04x coord %s lqi %d", r.Channel, r.PANID, r.Coordinator, r.LinkQuality)
}

// Summary is the outcome of a completed or cancelled scan.
type Summary struct {
	Kind            Kind
	Results         int
	ChannelsScanned int
	Cancelled       bool
	Elapsed         time.Duration
}

// ResultSink receives each Result as it is found. Calls are serialized.
type ResultSink func(Result)
