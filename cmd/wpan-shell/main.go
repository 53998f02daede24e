// Command wpan-shell is an interactive host for the 802.15.4 management
// sublayer.
//
// Usage:
//
//	wpan-shell [flags]
//
// Flags:
//
//	-config string      Configuration file path
//	-ncp string         NCP address (host:port), "auto" for mDNS, empty for the simulated radio
//	-capture string     Protocol capture file (.wlog)
//	-state string       State file to restore on start and save on exit
//	-log-level string   Log level: debug, info, warn, error
//
// Examples:
//
//	# Simulated radio populated from a config file
//	wpan-shell -config wpan.yaml
//
//	# First NCP found on the local network, with capture
//	wpan-shell -ncp auto -capture session.wlog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/lrwpan/lrwpan-go/cmd/wpan-shell/shell"
	"github.com/lrwpan/lrwpan-go/internal/cli"
	"github.com/lrwpan/lrwpan-go/pkg/config"
	"github.com/lrwpan/lrwpan-go/pkg/mgmt"
	"github.com/lrwpan/lrwpan-go/pkg/persistence"
	"github.com/lrwpan/lrwpan-go/pkg/radio"
	"github.com/lrwpan/lrwpan-go/pkg/radio/ncp"
)

type options struct {
	ConfigFile  string
	NCP         string
	CaptureFile string
	StateFile   string
	LogLevel    string
}

func main() {
	var opts options
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&opts.NCP, "ncp", "", `NCP address (host:port), "auto" for mDNS, empty for the simulated radio`)
	flag.StringVar(&opts.CaptureFile, "capture", "", "Protocol capture file (.wlog)")
	flag.StringVar(&opts.StateFile, "state", "", "State file to restore on start and save on exit")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mcfg := cfg.ManagerConfig()
	if mcfg.InterfaceID == uuid.Nil {
		mcfg.InterfaceID = uuid.New()
	}
	mcfg.Logger = logger
	mcfg.ProtocolLogger = capture.Logger
	if cfg.StateFile != "" {
		mcfg.StateStore = persistence.NewStateStore(cfg.StateFile)
	}

	driver, closeDriver, err := openDriver(ctx, cfg, mcfg, logger)
	if err != nil {
		return err
	}
	defer closeDriver()

	m := mgmt.NewManager(driver, mcfg)
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("closing manager", "error", err)
		}
	}()

	if mcfg.StateStore != nil {
		if err := m.RestoreState(ctx); err != nil {
			logger.Warn("state not restored", "path", cfg.StateFile, "error", err)
		}
	}
	if cfg.Interface.AckMode {
		if err := m.SetAck(); err != nil {
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Printf("802.15.4 interface %s (%s)\n", m.ID(), m.State().ExtAddr)
	sh := shell.New(m, os.Stdout)
	err = sh.Run(ctx, cancel)
	sh.Wait()
	return err
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			return nil, err
		}
	}
	if opts.NCP != "" {
		cfg.NCP.Address = opts.NCP
	}
	if opts.CaptureFile != "" {
		cfg.CaptureFile = opts.CaptureFile
	}
	if opts.StateFile != "" {
		cfg.StateFile = opts.StateFile
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

// openDriver returns the simulated radio or a client connected to an NCP.
func openDriver(ctx context.Context, cfg *config.Config, mcfg mgmt.Config, logger *slog.Logger) (radio.Driver, func(), error) {
	addr := cfg.NCP.Address
	if addr == "" {
		medium := cfg.NewMedium()
		logger.Info("using simulated radio", "coordinators", len(medium.Coordinators()))
		return medium.NewRadio(), func() {}, nil
	}

	if addr == "auto" {
		findCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		svc, err := ncp.FindFirst(findCtx, "")
		if err != nil {
			return nil, nil, fmt.Errorf("browse ncp: %w", err)
		}
		addr = svc.Addr()
		logger.Info("found ncp", "instance", svc.Instance, "addr", addr, "interface", svc.Info.InterfaceID)
	}

	client, err := ncp.Dial(ctx, addr, ncp.DialConfig{
		Client: ncp.ClientConfig{
			InterfaceID:    mcfg.InterfaceID.String(),
			Logger:         logger,
			ProtocolLogger: mcfg.ProtocolLogger,
		},
		MaxAttempts: 5,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to ncp", "addr", addr)
	return client, func() { _ = client.Close() }, nil
}
