package ncp

import (
	"context"
	"net"
	"time"
)

// DialConfig configures Dial.
type DialConfig struct {
	Client  ClientConfig
	Backoff BackoffConfig

	// MaxAttempts bounds the connection attempts. Zero retries until ctx ends.
	MaxAttempts int

	// Timeout bounds a single attempt. Zero means 2s.
	Timeout time.Duration
}

// Dial connects to the NCP at addr, retrying with backoff.
func Dial(ctx context.Context, addr string, cfg DialConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	backoff := NewBackoff(cfg.Backoff)
	dialer := net.Dialer{Timeout: timeout}

	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return NewClient(conn, cfg.Client), nil
		}
		if cfg.MaxAttempts > 0 && backoff.Attempts()+1 >= cfg.MaxAttempts {
			return nil, err
		}

		delay := backoff.Next()
		if cfg.Client.Logger != nil {
			cfg.Client.Logger.Debug("ncp: dial failed, retrying", "addr", addr, "error", err, "delay", delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
