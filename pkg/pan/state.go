package pan

import "fmt"

// AssociationState is the PAN membership state of an interface.
type AssociationState uint8

const (
	StateUnassociated AssociationState = iota
	StateAssociating
	StateAssociated
	StateDisassociating
)

// String returns the state name.
func (s AssociationState) String() string {
	switch s {
	case StateUnassociated:
		return "UNASSOCIATED"
	case StateAssociating:
		return "ASSOCIATING"
	case StateAssociated:
		return "ASSOCIATED"
	case StateDisassociating:
		return "DISASSOCIATING"
	default:
		return "UNKNOWN"
	}
}

// Op identifies the management operation holding the request lock.
type Op uint8

const (
	OpNone Op = iota
	OpPassiveScan
	OpActiveScan
	OpAssociate
	OpDisassociate
	OpSendData
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpNone:
		return "NONE"
	case OpPassiveScan:
		return "PASSIVE_SCAN"
	case OpActiveScan:
		return "ACTIVE_SCAN"
	case OpAssociate:
		return "ASSOCIATE"
	case OpDisassociate:
		return "DISASSOCIATE"
	case OpSendData:
		return "SEND_DATA"
	default:
		return fmt.Sprintf("OP_%d", uint8(o))
	}
}
