// Package pan holds the per-interface management context: the PAN the
// interface belongs to, its channel and frame sequence counter, the
// association state, and the locks that gate management operations.
//
// At most one scan, association or disassociation runs at a time. A second
// request fails immediately with ieee802154.ErrBusy instead of queuing:
//
//	release, err := ctx.Acquire(pan.OpActiveScan)
//	if err != nil {
//	    return err // ErrBusy
//	}
//	defer release()
//
// Shared fields change only while the request lock is held, except the
// ACK flags, which belong to the embedded ack.Synchronizer and its own
// finer-grained lock.
package pan
