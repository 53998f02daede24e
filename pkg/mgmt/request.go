package mgmt

import (
	"context"
	"fmt"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/channel"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// RequestParams carries the inputs of a numeric management request.
// Scan requests use Channels and Duration; Associate uses PANID, Channel
// and Coordinator.
type RequestParams struct {
	Channels    channel.Set
	Duration    time.Duration
	PANID       uint16
	Channel     uint16
	Coordinator ieee802154.Address
}

// Request dispatches a management request by numeric code. Scan summaries
// are not returned; results arrive as EventScanResult events.
func (m *Manager) Request(ctx context.Context, code RequestCode, params *RequestParams) error {
	switch code {
	case RequestSetAck:
		return m.SetAck()
	case RequestUnsetAck:
		return m.UnsetAck()
	case RequestCancelScan:
		return m.CancelScan()
	case RequestDisassociate:
		return m.Disassociate(ctx)
	case RequestPassiveScan, RequestActiveScan, RequestAssociate:
		if params == nil {
			return fmt.Errorf("%s: %w", code, ErrMissingParams)
		}
	default:
		return fmt.Errorf("%w: 0x%08x", ErrUnknownRequest, uint32(code))
	}

	switch code {
	case RequestPassiveScan:
		_, err := m.PassiveScan(ctx, params.Channels, params.Duration)
		return err
	case RequestActiveScan:
		_, err := m.ActiveScan(ctx, params.Channels, params.Duration)
		return err
	default:
		return m.Associate(ctx, params.PANID, params.Channel, params.Coordinator)
	}
}
