package ncp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/log"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	InterfaceID    string
	Logger         *slog.Logger
	ProtocolLogger log.Logger
}

// Server exposes a local radio.Driver to one host at a time.
type Server struct {
	driver radio.Driver
	config ServerConfig

	mu     sync.Mutex
	active *Framer
}

// NewServer creates a server for driver. It installs its own receive
// handler on the driver.
func NewServer(driver radio.Driver, cfg ServerConfig) *Server {
	s := &Server{driver: driver, config: cfg}
	driver.SetReceiveHandler(s.indicate)
	return s
}

// Serve accepts hosts on ln until ctx ends. Hosts are served one after
// another; a waiting host is accepted once the current one disconnects.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.debugLog("ncp: host connected", "remote", conn.RemoteAddr())
		err = s.ServeConn(ctx, conn)
		s.debugLog("ncp: host disconnected", "remote", conn.RemoteAddr(), "error", err)
	}
}

// ServeConn serves one host until the connection or ctx ends. The
// connection is closed on return.
func (s *Server) ServeConn(ctx context.Context, conn io.ReadWriteCloser) error {
	framer := NewFramer(conn)
	framer.SetLogger(s.config.ProtocolLogger, s.config.InterfaceID)

	s.mu.Lock()
	s.active = framer
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		s.mu.Lock()
		if s.active == framer {
			s.active = nil
		}
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		data, err := framer.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		req, err := DecodeMessage(data)
		if err != nil {
			s.debugLog("ncp: dropping undecodable request", "error", err)
			continue
		}
		if req.Kind != KindRequest {
			continue
		}

		resp := s.handle(ctx, req)
		out, err := EncodeMessage(resp)
		if err != nil {
			return err
		}
		if err := framer.WriteFrame(out); err != nil {
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, req *Message) *Message {
	resp := &Message{ID: req.ID, Kind: KindResponse, Op: req.Op}

	var err error
	switch req.Op {
	case OpTune:
		err = s.driver.Tune(ctx, req.Channel)
	case OpTransmit:
		if req.Frame == nil {
			err = errors.New("transmit without frame")
			break
		}
		err = s.driver.Transmit(ctx, req.Frame)
	default:
		err = errors.New("unsupported operation " + req.Op.String())
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// indicate forwards a received frame to the connected host, if any.
func (s *Server) indicate(f *frame.Frame) {
	s.mu.Lock()
	framer := s.active
	s.mu.Unlock()
	if framer == nil {
		return
	}

	data, err := EncodeMessage(&Message{Kind: KindIndication, Op: OpReceive, Frame: f})
	if err != nil {
		s.debugLog("ncp: failed to encode indication", "error", err)
		return
	}
	if err := framer.WriteFrame(data); err != nil {
		s.debugLog("ncp: failed to forward frame", "error", err)
	}
}

func (s *Server) debugLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
