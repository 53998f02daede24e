package channel

import (
	"fmt"
	"iter"
	"math/bits"
	"strconv"
	"strings"

	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// Set is a channel bitmask. Bit (c-1) selects channel c.
type Set uint32

// All selects every channel of the band (11-26).
const All = Set(ieee802154.AllChannels)

// FromChannels builds a Set from channel numbers. Out-of-band channels are
// recorded as-is so that Validate reports them.
func FromChannels(channels ...uint16) Set {
	var s Set
	for _, ch := range channels {
		s = s.Add(ch)
	}
	return s
}

// Add returns s with channel ch selected.
func (s Set) Add(ch uint16) Set {
	if ch == 0 || ch > 32 {
		// Not representable; poison the set so Validate fails.
		return s | 1
	}
	return s | 1<<(ch-1)
}

// Contains reports whether channel ch is selected.
func (s Set) Contains(ch uint16) bool {
	if ch == 0 || ch > 32 {
		return false
	}
	return s&(1<<(ch-1)) != 0
}

// Count returns the number of selected channels.
func (s Set) Count() int {
	return bits.OnesCount32(uint32(s))
}

// IsEmpty reports whether no channel is selected.
func (s Set) IsEmpty() bool {
	return s == 0
}

// Validate returns ErrInvalidChannelSet if any bit outside channels 11-26 is set.
func (s Set) Validate() error {
	if extra := uint32(s) &^ ieee802154.AllChannels; extra != 0 {
		return fmt.Errorf("%w: bits 0x%08x outside channels %d-%d",
			ieee802154.ErrInvalidChannelSet, extra, ieee802154.MinChannel, ieee802154.MaxChannel)
	}
	return nil
}

// Iterator returns a fresh iterator over the selected channels.
func (s Set) Iterator() *Iterator {
	return &Iterator{remaining: uint32(s) & ieee802154.AllChannels}
}

// Channels returns the selected channels in ascending order.
func (s Set) Channels() iter.Seq[uint16] {
	return func(yield func(uint16) bool) {
		it := s.Iterator()
		for {
			ch, ok := it.Next()
			if !ok || !yield(ch) {
				return
			}
		}
	}
}

// String returns a compact listing such as "11,15,20-22" or "none".
func (s Set) String() string {
	if s == 0 {
		return "none"
	}

	var parts []string
	var start, prev uint16
	flush := func() {
		if start == 0 {
			return
		}
		if start == prev {
			parts = append(parts, strconv.Itoa(int(start)))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}

	for ch := uint16(1); ch <= 32; ch++ {
		if !s.Contains(ch) {
			continue
		}
		if start != 0 && ch == prev+1 {
			prev = ch
			continue
		}
		flush()
		start, prev = ch, ch
	}
	flush()

	return strings.Join(parts, ",")
}

// ParseSet parses "all", "none", a hex mask "0x03FFFC00", or a list of
// channels and ranges such as "11,15,20-22".
func ParseSet(s string) (Set, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "all":
		return All, nil
	case s == "none" || s == "":
		return 0, nil
	case strings.HasPrefix(s, "0x"):
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ieee802154.ErrInvalidChannelSet, s)
		}
		return Set(v), nil
	}

	var set Set
	for _, field := range strings.Split(s, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(field), "-")
		first, err := strconv.ParseUint(lo, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ieee802154.ErrInvalidChannelSet, field)
		}
		last := first
		if isRange {
			last, err = strconv.ParseUint(hi, 10, 16)
			if err != nil || last < first {
				return 0, fmt.Errorf("%w: %q", ieee802154.ErrInvalidChannelSet, field)
			}
		}
		for ch := first; ch <= last; ch++ {
			set = set.Add(uint16(ch))
		}
	}
	return set, nil
}
