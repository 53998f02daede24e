package mgmt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrwpan/lrwpan-go/pkg/channel"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/mgmt"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/radio/sim"
)

func TestRequestCodes(t *testing.T) {
	tests := []struct {
		code mgmt.RequestCode
		want uint32
		name string
	}{
		{mgmt.RequestSetAck, 0x51540001, "SET_ACK"},
		{mgmt.RequestUnsetAck, 0x51540002, "UNSET_ACK"},
		{mgmt.RequestPassiveScan, 0x51540003, "PASSIVE_SCAN"},
		{mgmt.RequestActiveScan, 0x51540004, "ACTIVE_SCAN"},
		{mgmt.RequestCancelScan, 0x51540005, "CANCEL_SCAN"},
		{mgmt.RequestAssociate, 0x51540006, "ASSOCIATE"},
		{mgmt.RequestDisassociate, 0x51540007, "DISASSOCIATE"},
	}
	for _, tt := range tests {
		if uint32(tt.code) != tt.want {
			t.Errorf("%s = 0x%08x, want 0x%08x", tt.name, uint32(tt.code), tt.want)
		}
		if got := tt.code.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}

	if uint32(mgmt.EventScanResult) != 0xD1540001 {
		t.Errorf("EventScanResult = 0x%08x", uint32(mgmt.EventScanResult))
	}
	if got := mgmt.EventScanResult.String(); got != "SCAN_RESULT" {
		t.Errorf("EventScanResult.String() = %q", got)
	}
	if got := mgmt.RequestCode(0x51540099).String(); got != "REQUEST_0x51540099" {
		t.Errorf("unknown code String() = %q", got)
	}
}

func TestRequestDispatch(t *testing.T) {
	medium := sim.NewMedium()
	medium.AddCoordinator(pancoord(15))
	m := newManager(t, medium, mgmt.Config{})
	ctx := context.Background()

	rec := &eventRecorder{}
	m.OnEvent(rec.handle)

	require.NoError(t, m.Request(ctx, mgmt.RequestSetAck, nil))
	assert.True(t, m.State().AckMode)
	require.NoError(t, m.Request(ctx, mgmt.RequestUnsetAck, nil))
	assert.False(t, m.State().AckMode)

	require.NoError(t, m.Request(ctx, mgmt.RequestActiveScan, &mgmt.RequestParams{
		Channels: channel.FromChannels(15),
		Duration: 15 * time.Millisecond,
	}))
	require.Len(t, rec.list(), 1)

	require.NoError(t, m.Request(ctx, mgmt.RequestAssociate, &mgmt.RequestParams{
		PANID:       0x1234,
		Channel:     15,
		Coordinator: coordAddr,
	}))
	assert.Equal(t, pan.StateAssociated, m.State().State)

	require.NoError(t, m.Request(ctx, mgmt.RequestCancelScan, nil))
	require.NoError(t, m.Request(ctx, mgmt.RequestDisassociate, nil))
	assert.Equal(t, pan.StateUnassociated, m.State().State)
}

func TestRequestErrors(t *testing.T) {
	m := newManager(t, sim.NewMedium(), mgmt.Config{})
	ctx := context.Background()

	assert.ErrorIs(t, m.Request(ctx, mgmt.RequestCode(0x51540099), nil), mgmt.ErrUnknownRequest)
	assert.ErrorIs(t, m.Request(ctx, mgmt.RequestPassiveScan, nil), mgmt.ErrMissingParams)
	assert.ErrorIs(t, m.Request(ctx, mgmt.RequestAssociate, nil), mgmt.ErrMissingParams)

	err := m.Request(ctx, mgmt.RequestPassiveScan, &mgmt.RequestParams{Channels: channel.FromChannels(11)})
	assert.ErrorIs(t, err, ieee802154.ErrInvalidDuration)
}
