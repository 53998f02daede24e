package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// InterfaceState is the persisted state of one interface.
type InterfaceState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// InterfaceID is the interface UUID.
	InterfaceID string `json:"interface_id"`

	// Context is the packed management context.
	Context []byte `json:"context"`

	// Coordinator of the PAN the interface belongs to, if any.
	Coordinator ieee802154.Address `json:"coordinator"`

	// ShortAddr assigned by the coordinator.
	ShortAddr uint16 `json:"short_addr"`

	// AckMode records whether data frames request ACKs.
	AckMode bool `json:"ack_mode,omitempty"`
}

// StateStore manages persistence of interface state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a store backed by path.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the backing file path.
func (s *StateStore) Path() string {
	return s.path
}

// Save writes the state, replacing the previous file atomically.
func (s *StateStore) Save(state *InterfaceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the state. It returns nil, nil if no state was saved.
func (s *StateStore) Load() (*InterfaceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &InterfaceState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version != StateVersion {
		return nil, fmt.Errorf("unsupported state version %d", state.Version)
	}
	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
