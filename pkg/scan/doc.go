// Package scan sweeps a set of channels looking for PAN coordinators.
//
// A passive scan listens on each channel for the dwell time; an active scan
// first transmits a beacon request. Each beacon heard becomes a Result,
// delivered to the ResultSink as soon as it is received rather than at the
// end of the sweep. Cancel stops the sweep before the next channel.
package scan
