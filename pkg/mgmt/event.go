package mgmt

import (
	"time"

	"github.com/google/uuid"

	"github.com/lrwpan/lrwpan-go/pkg/scan"
)

// Event is a notification published by a Manager.
type Event struct {
	Code        EventCode
	InterfaceID uuid.UUID
	Timestamp   time.Time

	// ScanResult is set for EventScanResult.
	ScanResult *scan.Result
}

// EventHandler receives events. Handlers run synchronously on the goroutine
// performing the request, one event at a time, and must not issue
// management requests on the same Manager.
type EventHandler func(Event)
