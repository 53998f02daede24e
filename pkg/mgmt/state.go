package mgmt

import (
	"context"
	"fmt"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/persistence"
)

// SaveState writes the management context to the configured store.
func (m *Manager) SaveState() error {
	store := m.config.StateStore
	if store == nil {
		return ErrNoStateStore
	}

	snap := m.pan.Snapshot()
	packed, err := snap.MarshalBinary()
	if err != nil {
		return err
	}
	return store.Save(&persistence.InterfaceState{
		Version:     persistence.StateVersion,
		SavedAt:     time.Now(),
		InterfaceID: m.id.String(),
		Context:     packed,
		Coordinator: snap.Coordinator,
		ShortAddr:   snap.ShortAddr,
		AckMode:     snap.AckMode,
	})
}

// RestoreState loads the context saved for this interface and retunes the
// radio to the saved channel. A missing state file is not an error.
func (m *Manager) RestoreState(ctx context.Context) error {
	if m.isClosed() {
		return ErrClosed
	}
	store := m.config.StateStore
	if store == nil {
		return ErrNoStateStore
	}

	state, err := store.Load()
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	if state.InterfaceID != m.id.String() {
		return fmt.Errorf("state belongs to interface %s", state.InterfaceID)
	}

	var snap pan.Snapshot
	if err := snap.UnmarshalBinary(state.Context); err != nil {
		return err
	}
	snap.Coordinator = state.Coordinator
	snap.ShortAddr = state.ShortAddr
	snap.AckMode = state.AckMode
	if !snap.Associated {
		snap.ShortAddr = ieee802154.BroadcastShortAddr
		snap.Coordinator = ieee802154.Address{}
	}

	if err := m.pan.Restore(snap); err != nil {
		return err
	}
	if ieee802154.ValidChannel(snap.Channel) {
		if err := m.radio.Tune(ctx, snap.Channel); err != nil {
			return err
		}
	}
	m.debugLog("mgmt: state restored", "channel", snap.Channel, "pan_id", snap.PANID, "associated", snap.Associated)
	return nil
}
