// Package frame models the 802.15.4 MAC frames exchanged with the radio
// driver by the management sublayer.
//
// Only the fields the management logic inspects are modelled: frame type,
// sequence number, ACK request flag, PAN ids, addresses, MAC command id and
// payload, plus the link quality reported by the receiver. Encoding frames
// into their on-air format is the driver's job.
//
// Frames can be serialized with the package's CBOR codec for transport to a
// remote radio co-processor and for protocol capture.
package frame
