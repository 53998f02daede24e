package radio

import (
	"context"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
)

// Driver is a physical radio. Tune and Transmit may block up to the
// driver's own timeout and must honour ctx.
//
// The receive handler is invoked from the driver's goroutine for every
// received frame, ACKs included. It must not block.
type Driver interface {
	Tune(ctx context.Context, channel uint16) error
	Transmit(ctx context.Context, f *frame.Frame) error
	SetReceiveHandler(handler func(f *frame.Frame))
}
