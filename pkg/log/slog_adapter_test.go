package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logJSON(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterMACEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp:   time.Now(),
		InterfaceID: "wpan0",
		Direction:   DirectionIn,
		Layer:       LayerRadio,
		Category:    CategoryFrame,
		Channel:     20,
		MAC:         &MACEvent{Sequence: 9, LQI: 180, Summary: "BEACON seq=9"},
	})

	checks := map[string]any{
		"iface":     "wpan0",
		"direction": "IN",
		"layer":     "RADIO",
		"channel":   float64(20),
		"seq":       float64(9),
		"lqi":       float64(180),
		"frame":     "BEACON seq=9",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s: got %v, want %v", k, entry[k], want)
		}
	}
}

func TestSlogAdapterRequestEvent(t *testing.T) {
	d := 3 * time.Millisecond
	entry := logJSON(t, Event{
		Layer:    LayerManagement,
		Category: CategoryRequest,
		Request:  &RequestEvent{Code: 0x51540006, Name: "ASSOCIATE", Result: "no response", Duration: &d},
	})

	if entry["request"] != "ASSOCIATE" {
		t.Errorf("request: got %v", entry["request"])
	}
	if entry["result"] != "no response" {
		t.Errorf("result: got %v", entry["result"])
	}
	if _, ok := entry["duration"]; !ok {
		t.Error("duration missing")
	}
}

func TestSlogAdapterStateAndError(t *testing.T) {
	entry := logJSON(t, Event{
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntityAssociation, OldState: "ASSOCIATED", NewState: "UNASSOCIATED", Reason: "link down"},
	})
	if entry["entity"] != "ASSOCIATION" || entry["new_state"] != "UNASSOCIATED" || entry["reason"] != "link down" {
		t.Errorf("unexpected state entry: %v", entry)
	}

	code := 7
	entry = logJSON(t, Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerRadio, Message: "tune failed", Code: &code},
	})
	if entry["error_layer"] != "RADIO" || entry["error_code"] != float64(7) {
		t.Errorf("unexpected error entry: %v", entry)
	}
}
