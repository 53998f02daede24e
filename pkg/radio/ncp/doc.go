// Package ncp carries the radio driver interface over a byte stream, so
// the management sublayer can drive a radio owned by another process: a
// network co-processor, or the simulator served by cmd/wpan-ncp.
//
// Each message is CBOR with integer keys, wrapped in a 4-byte big-endian
// length prefix. The host sends Tune and Transmit requests and waits for a
// response with the same id; the NCP pushes every received frame as a
// Receive indication.
//
// NCPs announce themselves over mDNS as _wpan-ncp._tcp. Dial retries with
// exponential backoff until the NCP accepts or the context ends.
package ncp
