package channel

import "math/bits"

// Iterator yields the channels of a Set in ascending order.
// It is not safe for concurrent use.
type Iterator struct {
	remaining uint32
}

// Next returns the next selected channel, or false once the set is exhausted.
func (it *Iterator) Next() (uint16, bool) {
	if it.remaining == 0 {
		return 0, false
	}
	bit := bits.TrailingZeros32(it.remaining)
	it.remaining &^= 1 << bit
	return uint16(bit + 1), true
}

// Remaining returns how many channels are still to be yielded.
func (it *Iterator) Remaining() int {
	return bits.OnesCount32(it.remaining)
}
