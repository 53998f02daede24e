package ncp_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrwpan/lrwpan-go/pkg/channel"
	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/mgmt"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/radio/ncp"
	"github.com/lrwpan/lrwpan-go/pkg/radio/sim"
)

var coordAddr = ieee802154.ShortAddress(0x0000)

func pancoord() sim.Coordinator {
	return sim.Coordinator{
		Channel:                15,
		PANID:                  0x1234,
		Address:                coordAddr,
		RespondToBeaconRequest: true,
		AutoAck:                true,
		AssignShortAddr:        0x0042,
	}
}

// connect serves medium's radio on one end of a pipe and returns a client
// on the other.
func connect(t *testing.T, medium *sim.Medium) *ncp.Client {
	t.Helper()
	hostSide, ncpSide := net.Pipe()

	srv := ncp.NewServer(medium.NewRadio(), ncp.ServerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan struct{})
	go func() {
		defer close(served)
		_ = srv.ServeConn(ctx, ncpSide)
	}()

	c := ncp.NewClient(hostSide, ncp.ClientConfig{})
	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		<-served
	})
	return c
}

type frameSink struct {
	mu     sync.Mutex
	frames []*frame.Frame
}

func (s *frameSink) handle(f *frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *frameSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func TestClientTuneAndTransmit(t *testing.T) {
	medium := sim.NewMedium()
	medium.AddCoordinator(pancoord())
	c := connect(t, medium)
	ctx := context.Background()

	sink := &frameSink{}
	c.SetReceiveHandler(sink.handle)

	require.NoError(t, c.Tune(ctx, 15))
	assert.Equal(t, []uint16{15}, medium.Tunes())

	require.NoError(t, c.Transmit(ctx, frame.NewBeaconRequest(7)))
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)

	sink.mu.Lock()
	beacon := sink.frames[0]
	sink.mu.Unlock()
	assert.True(t, beacon.IsBeacon())
	assert.Equal(t, uint16(0x1234), beacon.SrcPANID)
	assert.Equal(t, uint16(15), beacon.Channel)

	tx := medium.Transmitted()
	require.Len(t, tx, 1)
	assert.Equal(t, uint8(7), tx[0].Sequence)
}

func TestClientRemoteError(t *testing.T) {
	medium := sim.NewMedium()
	medium.FailTune(20, errors.New("pll unlock"))
	c := connect(t, medium)

	err := c.Tune(context.Background(), 20)
	var re *ncp.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ncp.OpTune, re.Op)
	assert.Equal(t, "pll unlock", re.Message)
}

func TestClientClosed(t *testing.T) {
	hostSide, ncpSide := net.Pipe()
	c := ncp.NewClient(hostSide, ncp.ClientConfig{})
	_ = ncpSide.Close()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("client did not notice closed connection")
	}
	assert.ErrorIs(t, c.Tune(context.Background(), 11), ncp.ErrClosed)
	assert.Error(t, c.Err())
}

func TestClientContextCancel(t *testing.T) {
	hostSide, ncpSide := net.Pipe()
	c := ncp.NewClient(hostSide, ncp.ClientConfig{})
	defer func() { _ = c.Close() }()

	// Drain requests without answering.
	go func() {
		r := ncp.NewFrameReader(ncpSide)
		for {
			if _, err := r.ReadFrame(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Tune(ctx, 11), context.DeadlineExceeded)
	_ = ncpSide.Close()
}

func TestManagerOverNCP(t *testing.T) {
	medium := sim.NewMedium()
	medium.AddCoordinator(pancoord())
	c := connect(t, medium)

	m := mgmt.NewManager(c, mgmt.Config{
		AckTimeout:      50 * time.Millisecond,
		ResponseTimeout: 200 * time.Millisecond,
	})
	ctx := context.Background()

	summary, err := m.ActiveScan(ctx, channel.FromChannels(11, 15), 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Results)

	require.NoError(t, m.Associate(ctx, 0x1234, 15, coordAddr))
	assert.Equal(t, pan.StateAssociated, m.State().State)
	assert.Equal(t, uint16(0x0042), m.State().ShortAddr)

	require.NoError(t, m.Disassociate(ctx))
	assert.Equal(t, pan.StateUnassociated, m.State().State)
}

func TestDialRetriesUntilListening(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	medium := sim.NewMedium()
	srv := ncp.NewServer(medium.NewRadio(), ncp.ServerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() {
		time.Sleep(30 * time.Millisecond)
		l, err := net.Listen("tcp", addr)
		if err != nil {
			served <- err
			return
		}
		served <- srv.Serve(ctx, l)
	}()

	dialCtx, dialCancel := context.WithTimeout(ctx, 2*time.Second)
	defer dialCancel()
	c, err := ncp.Dial(dialCtx, addr, ncp.DialConfig{
		Backoff: ncp.BackoffConfig{Initial: 10 * time.Millisecond, Max: 20 * time.Millisecond},
	})
	require.NoError(t, err)
	require.NoError(t, c.Tune(ctx, 11))
	require.NoError(t, c.Close())

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestDialMaxAttempts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = ncp.Dial(context.Background(), addr, ncp.DialConfig{
		MaxAttempts: 2,
		Backoff:     ncp.BackoffConfig{Initial: time.Millisecond},
	})
	assert.Error(t, err)
}
