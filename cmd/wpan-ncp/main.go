// Command wpan-ncp exposes a simulated 802.15.4 radio as a network
// co-processor. Hosts such as wpan-shell connect over TCP and drive the
// radio through the NCP protocol.
//
// Usage:
//
//	wpan-ncp [flags]
//
// Flags:
//
//	-config string      Configuration file path (medium and ncp sections)
//	-listen string      Listen address (default ":7154")
//	-advertise          Advertise the NCP via mDNS
//	-capture string     Protocol capture file (.wlog)
//	-log-level string   Log level: debug, info, warn, error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/lrwpan/lrwpan-go/internal/cli"
	"github.com/lrwpan/lrwpan-go/pkg/config"
	"github.com/lrwpan/lrwpan-go/pkg/radio/ncp"
)

type options struct {
	ConfigFile  string
	Listen      string
	Advertise   bool
	CaptureFile string
	LogLevel    string
}

func main() {
	var opts options
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path (medium and ncp sections)")
	flag.StringVar(&opts.Listen, "listen", "", fmt.Sprintf("Listen address (default \":%d\")", config.DefaultNCPPort))
	flag.BoolVar(&opts.Advertise, "advertise", false, "Advertise the NCP via mDNS")
	flag.StringVar(&opts.CaptureFile, "capture", "", "Protocol capture file (.wlog)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			return err
		}
	}
	if opts.Listen != "" {
		cfg.NCP.Listen = opts.Listen
	}
	if opts.Advertise {
		cfg.NCP.Advertise = true
	}
	if opts.CaptureFile != "" {
		cfg.CaptureFile = opts.CaptureFile
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger, err := cli.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	capture, err := cli.OpenCapture(cfg.CaptureFile, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := capture.Close(); err != nil {
			logger.Warn("closing capture", "error", err)
		}
	}()

	id := cfg.Interface.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	medium := cfg.NewMedium()
	server := ncp.NewServer(medium.NewRadio(), ncp.ServerConfig{
		InterfaceID:    id.String(),
		Logger:         logger,
		ProtocolLogger: capture.Logger,
	})

	ln, err := net.Listen("tcp", cfg.NCP.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.NCP.Listen, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	logger.Info("ncp listening", "addr", ln.Addr(), "interface", id, "coordinators", len(medium.Coordinators()))

	if cfg.NCP.Advertise {
		adv := &ncp.Advertiser{}
		if err := adv.Advertise(cfg.NCP.Instance, port, ncp.ServiceInfo{InterfaceID: id.String()}, 0); err != nil {
			_ = ln.Close()
			return err
		}
		defer adv.Stop()
		logger.Info("ncp advertised", "service", ncp.ServiceType, "instance", cfg.NCP.Instance)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = server.Serve(ctx, ln)
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	logger.Info("ncp stopped")
	return err
}
