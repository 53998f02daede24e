package ieee802154

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// AddrMode identifies which form an Address holds.
type AddrMode uint8

const (
	// AddrModeNone is the zero Address: no address present.
	AddrModeNone AddrMode = 0

	// AddrModeShort is a 16-bit short address.
	AddrModeShort AddrMode = 2

	// AddrModeExtended is a 64-bit extended address.
	AddrModeExtended AddrMode = 3
)

// String returns the mode name.
func (m AddrMode) String() string {
	switch m {
	case AddrModeNone:
		return "NONE"
	case AddrModeShort:
		return "SHORT"
	case AddrModeExtended:
		return "EXTENDED"
	default:
		return "UNKNOWN"
	}
}

// Address is a short or extended 802.15.4 address. The zero value holds no
// address. Extended addresses are stored most significant byte first.
type Address struct {
	mode  AddrMode
	short uint16
	ext   [MaxAddrLen]byte
}

// ShortAddress returns a short-form address.
func ShortAddress(a uint16) Address {
	return Address{mode: AddrModeShort, short: a}
}

// ExtendedAddress returns an extended-form address.
func ExtendedAddress(a [MaxAddrLen]byte) Address {
	return Address{mode: AddrModeExtended, ext: a}
}

// AddressFromBytes builds an Address from its byte form: 2 bytes for a
// short address, 8 for an extended one, 0 for no address.
func AddressFromBytes(b []byte) (Address, error) {
	switch len(b) {
	case 0:
		return Address{}, nil
	case 2:
		return ShortAddress(binary.BigEndian.Uint16(b)), nil
	case MaxAddrLen:
		var ext [MaxAddrLen]byte
		copy(ext[:], b)
		return ExtendedAddress(ext), nil
	default:
		return Address{}, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(b))
	}
}

// ParseAddress parses "0x1234" (short) or "00:12:4b:00:00:00:00:01" /
// "00124b0000000001" (extended).
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, nil
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 16)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		return ShortAddress(uint16(v)), nil
	}

	raw, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil || len(raw) != MaxAddrLen {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return AddressFromBytes(raw)
}

// Mode returns the address form.
func (a Address) Mode() AddrMode {
	return a.mode
}

// Len returns the on-air length of the address in bytes.
func (a Address) Len() int {
	switch a.mode {
	case AddrModeShort:
		return 2
	case AddrModeExtended:
		return MaxAddrLen
	default:
		return 0
	}
}

// IsZero reports whether the address is absent.
func (a Address) IsZero() bool {
	return a.mode == AddrModeNone
}

// Short returns the short address and whether the address is short-form.
func (a Address) Short() (uint16, bool) {
	return a.short, a.mode == AddrModeShort
}

// Extended returns the extended address and whether the address is extended-form.
func (a Address) Extended() ([MaxAddrLen]byte, bool) {
	return a.ext, a.mode == AddrModeExtended
}

// Bytes returns the byte form understood by AddressFromBytes.
func (a Address) Bytes() []byte {
	switch a.mode {
	case AddrModeShort:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, a.short)
		return b
	case AddrModeExtended:
		b := make([]byte, MaxAddrLen)
		copy(b, a.ext[:])
		return b
	default:
		return nil
	}
}

// String returns "0x1234" for short and colon-separated hex for extended addresses.
func (a Address) String() string {
	switch a.mode {
	case AddrModeShort:
		return fmt.Sprintf("0x%04x", a.short)
	case AddrModeExtended:
		parts := make([]string, MaxAddrLen)
		for i, b := range a.ext {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		return strings.Join(parts, ":")
	default:
		return "none"
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a Address) MarshalBinary() ([]byte, error) {
	return a.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Address) UnmarshalBinary(data []byte) error {
	parsed, err := AddressFromBytes(data)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	if a.IsZero() {
		return []byte{}, nil
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
