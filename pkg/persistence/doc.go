// Package persistence saves the management context of a radio interface so
// that PAN membership and the frame sequence counter survive a restart.
//
// The context fields with a fixed wire layout (PAN id, channel, sequence,
// ACK and association flags) are stored in their packed six-byte form; the
// coordinator and short address are stored alongside as JSON.
package persistence
