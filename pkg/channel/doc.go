// Package channel enumerates the channels selected by a scan request.
//
// A channel Set is a bitmask where bit (c-1) selects channel c. Only channels
// 11 through 26 are valid for the supported band; any other bit makes the set
// invalid.
//
// An Iterator walks a Set in ascending channel order, skipping unset bits.
// It is lazy, finite and not restartable: once exhausted it stays exhausted.
package channel
