package mgmt

import "fmt"

// Management code layout: interface bit, L2 layer, IEEE 802.15.4 code.
const (
	ifaceBit       = 0x40000000
	eventBit       = 0x80000000
	layerL2        = 0x10000000
	ieee802154Code = 0x01540000

	requestBase = ifaceBit | layerL2 | ieee802154Code
	eventBase   = eventBit | ifaceBit | layerL2 | ieee802154Code
)

// RequestCode identifies a management request.
type RequestCode uint32

const (
	RequestSetAck       RequestCode = requestBase + 1
	RequestUnsetAck     RequestCode = requestBase + 2
	RequestPassiveScan  RequestCode = requestBase + 3
	RequestActiveScan   RequestCode = requestBase + 4
	RequestCancelScan   RequestCode = requestBase + 5
	RequestAssociate    RequestCode = requestBase + 6
	RequestDisassociate RequestCode = requestBase + 7
)

// String returns the request name.
func (c RequestCode) String() string {
	switch c {
	case RequestSetAck:
		return "SET_ACK"
	case RequestUnsetAck:
		return "UNSET_ACK"
	case RequestPassiveScan:
		return "PASSIVE_SCAN"
	case RequestActiveScan:
		return "ACTIVE_SCAN"
	case RequestCancelScan:
		return "CANCEL_SCAN"
	case RequestAssociate:
		return "ASSOCIATE"
	case RequestDisassociate:
		return "DISASSOCIATE"
	default:
		return fmt.Sprintf("REQUEST_0x%08x", uint32(c))
	}
}

// EventCode identifies a management event.
type EventCode uint32

const (
	EventScanResult EventCode = eventBase + 1
)

// String returns the event name.
func (c EventCode) String() string {
	switch c {
	case EventScanResult:
		return "SCAN_RESULT"
	default:
		return fmt.Sprintf("EVENT_0x%08x", uint32(c))
	}
}
