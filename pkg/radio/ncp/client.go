package ncp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/log"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
)

// ErrClosed is returned for operations on a closed client.
var ErrClosed = errors.New("ncp connection closed")

// ClientConfig configures a Client.
type ClientConfig struct {
	InterfaceID    string
	Logger         *slog.Logger
	ProtocolLogger log.Logger
}

// Client is a radio.Driver backed by a remote NCP.
type Client struct {
	conn   io.ReadWriteCloser
	framer *Framer
	config ClientConfig

	mu      sync.Mutex
	nextID  uint32
	pending map[uint32]chan *Message
	handler func(*frame.Frame)
	err     error

	done chan struct{}
}

var _ radio.Driver = (*Client)(nil)

// NewClient starts a client on an established connection. The client owns
// conn and closes it on Close.
func NewClient(conn io.ReadWriteCloser, cfg ClientConfig) *Client {
	framer := NewFramer(conn)
	framer.SetLogger(cfg.ProtocolLogger, cfg.InterfaceID)

	c := &Client{
		conn:    conn,
		framer:  framer,
		config:  cfg,
		pending: make(map[uint32]chan *Message),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// SetReceiveHandler implements radio.Driver.
func (c *Client) SetReceiveHandler(h func(*frame.Frame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Tune implements radio.Driver.
func (c *Client) Tune(ctx context.Context, channel uint16) error {
	_, err := c.call(ctx, &Message{Kind: KindRequest, Op: OpTune, Channel: channel})
	return err
}

// Transmit implements radio.Driver.
func (c *Client) Transmit(ctx context.Context, f *frame.Frame) error {
	_, err := c.call(ctx, &Message{Kind: KindRequest, Op: OpTransmit, Frame: f})
	return err
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended, or nil while it is up.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close shuts the connection down and fails pending calls.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) call(ctx context.Context, req *Message) (*Message, error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	req.ID = c.nextID
	ch := make(chan *Message, 1)
	c.pending[req.ID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	data, err := EncodeMessage(req)
	if err != nil {
		return nil, err
	}
	if err := c.framer.WriteFrame(data); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return resp, &RemoteError{Op: req.Op, Message: resp.Error}
		}
		return resp, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) readLoop() {
	var err error
	defer func() {
		c.mu.Lock()
		if errors.Is(err, io.EOF) {
			err = ErrClosed
		}
		c.err = err
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		var data []byte
		data, err = c.framer.ReadFrame()
		if err != nil {
			c.debugLog("ncp: read loop ended", "error", err)
			return
		}

		msg, derr := DecodeMessage(data)
		if derr != nil {
			c.debugLog("ncp: dropping undecodable message", "error", derr)
			continue
		}

		switch msg.Kind {
		case KindResponse:
			c.mu.Lock()
			ch := c.pending[msg.ID]
			c.mu.Unlock()
			if ch != nil {
				select {
				case ch <- msg:
				default:
				}
			}
		case KindIndication:
			if msg.Op != OpReceive || msg.Frame == nil {
				continue
			}
			c.mu.Lock()
			h := c.handler
			c.mu.Unlock()
			if h != nil {
				h(msg.Frame)
			}
		default:
			c.debugLog("ncp: unexpected message", "kind", msg.Kind, "op", msg.Op)
		}
	}
}

func (c *Client) debugLog(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, append(args, "iface", c.config.InterfaceID)...)
	}
}
