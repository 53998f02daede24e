// Package ieee802154 holds the vocabulary shared by every layer of the
// 802.15.4 management stack: addressing, channel and PAN constants, and the
// error taxonomy surfaced to callers.
//
// # Addressing
//
// 802.15.4 frames carry either a 16-bit short address or a 64-bit extended
// address. Address is a tagged value that always knows which form it holds
// and how many bytes that form occupies on the air:
//
//	coord := ieee802154.ShortAddress(0x0000)
//	self := ieee802154.ExtendedAddress([8]byte{0x00, 0x12, 0x4b, 0, 0, 0, 0, 1})
//
// # Errors
//
// All management entry points report one of the sentinel errors below (or a
// typed error that matches one via errors.Is):
//
//   - ErrBusy: another scan or association operation holds the interface
//   - ErrInvalidChannelSet, ErrInvalidDuration, ErrInvalidState: caller errors,
//     rejected before any radio action
//   - RadioError: the radio driver failed; the driver error is preserved
//   - ErrNoResponse: ACK or response not received in time
//   - ErrAssociationRejected: the coordinator answered with a failure status
//
// Nothing in this stack retries on its own. Retry policy belongs to the caller.
package ieee802154

// Channel and PAN constants for the 2.4 GHz O-QPSK PHY.
const (
	// MinChannel is the lowest channel number supported by the band.
	MinChannel uint16 = 11

	// MaxChannel is the highest channel number supported by the band.
	MaxChannel uint16 = 26

	// AllChannels is the channel bitmask selecting channels 11 through 26.
	// Bit (c-1) selects channel c.
	AllChannels uint32 = 0x03FFFC00

	// BroadcastPANID is the broadcast PAN identifier. A node that is not
	// associated reports this value as its PAN id.
	BroadcastPANID uint16 = 0xFFFF

	// BroadcastShortAddr is the broadcast short address.
	BroadcastShortAddr uint16 = 0xFFFF

	// NoShortAddr means "associated but use the extended address".
	NoShortAddr uint16 = 0xFFFE

	// MaxAddrLen is the length of an extended address in bytes.
	MaxAddrLen = 8
)

// ValidChannel reports whether ch lies within the supported band.
func ValidChannel(ch uint16) bool {
	return ch >= MinChannel && ch <= MaxChannel
}
