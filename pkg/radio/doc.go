// Package radio is the boundary between the management sublayer and a radio
// driver.
//
// A Driver tunes, transmits and reports received frames from its own
// goroutine. The Adapter wraps a Driver so that callers get RadioError
// values for every failure, ACK frames go to the ACK synchronizer, and all
// other frames are buffered in the single receive Window armed by the
// current operation. Frames that arrive with no window armed are dropped.
//
//	w, err := adapter.Arm()
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	if err := adapter.Transmit(ctx, frame.NewBeaconRequest(seq)); err != nil {
//	    return err
//	}
//	f, err := w.Receive(ctx, 50*time.Millisecond) // nil f: window elapsed
//
// Implementations: sim (in-process medium for tests and demos) and ncp
// (network co-processor over a byte stream).
package radio
