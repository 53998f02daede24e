// Package sim provides an in-process simulated 802.15.4 medium.
//
// A Medium holds simulated PAN coordinators, each bound to one channel.
// Radios created from the medium implement radio.Driver: tuning to a
// channel with a beaconing coordinator produces a beacon, beacon requests
// are answered by coordinators configured to do so, and association
// requests are acknowledged and answered according to each coordinator's
// configuration. Replies are delivered asynchronously on timer goroutines,
// the way a real driver reports frames from its own context, and only
// while the radio is still tuned to the coordinator's channel.
package sim
