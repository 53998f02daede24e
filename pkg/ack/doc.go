// Package ack correlates transmitted frames that request an acknowledgment
// with the ACK frame the radio reports asynchronously.
//
// The sender arms the synchronizer with the sequence number of the frame it
// is about to transmit, transmits, then blocks in Wait. The radio driver
// delivers incoming ACK frames to Handle from its own goroutine; a matching
// ACK releases the waiter through a single-slot rendezvous.
//
//	sync.Prepare(seq)
//	if err := radio.Transmit(ctx, f); err != nil {
//	    sync.Abort()
//	    return err
//	}
//	outcome, err := sync.Wait(ctx, 10*time.Millisecond)
//
// Only one wait may be outstanding. There is no retry at this layer.
package ack
