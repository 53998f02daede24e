package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lrwpan/lrwpan-go/pkg/ack"
	"github.com/lrwpan/lrwpan-go/pkg/assoc"
	"github.com/lrwpan/lrwpan-go/pkg/frame"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/mgmt"
	"github.com/lrwpan/lrwpan-go/pkg/radio/sim"
)

// DefaultNCPPort is the TCP port an NCP listens on when none is configured.
const DefaultNCPPort = 7154

// Config is the top-level configuration.
type Config struct {
	Interface InterfaceConfig `yaml:"interface"`

	// StateFile persists the management context between runs. Empty disables.
	StateFile string `yaml:"state_file,omitempty"`

	// CaptureFile receives protocol capture events (.wlog). Empty disables.
	CaptureFile string `yaml:"capture_file,omitempty"`

	// LogLevel is the slog level: debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`

	NCP    NCPConfig    `yaml:"ncp"`
	Medium MediumConfig `yaml:"medium"`
}

// InterfaceConfig configures the management sublayer of one interface.
type InterfaceConfig struct {
	ID              uuid.UUID          `yaml:"id,omitempty"`
	ExtendedAddress ieee802154.Address `yaml:"extended_address,omitempty"`
	AckTimeout      Duration           `yaml:"ack_timeout"`
	ResponseTimeout Duration           `yaml:"response_timeout"`
	AckMode         bool               `yaml:"ack_mode,omitempty"`
}

// NCPConfig configures the network co-processor link.
type NCPConfig struct {
	// Listen is the address an NCP serves on.
	Listen string `yaml:"listen,omitempty"`

	// Address is the NCP a host connects to, or "auto" to browse mDNS.
	Address string `yaml:"address,omitempty"`

	// Advertise publishes the NCP via mDNS.
	Advertise bool `yaml:"advertise,omitempty"`

	// Instance is the mDNS instance name.
	Instance string `yaml:"instance,omitempty"`
}

// MediumConfig describes the simulated radio environment.
type MediumConfig struct {
	Coordinators []CoordinatorConfig `yaml:"coordinators,omitempty"`
}

// CoordinatorConfig is one simulated PAN coordinator.
type CoordinatorConfig struct {
	Channel                uint16             `yaml:"channel"`
	PANID                  uint16             `yaml:"pan_id"`
	Address                ieee802154.Address `yaml:"address"`
	LQI                    uint8              `yaml:"lqi,omitempty"`
	Beaconing              bool               `yaml:"beaconing,omitempty"`
	RespondToBeaconRequest bool               `yaml:"respond_to_beacon_request,omitempty"`
	AutoAck                bool               `yaml:"auto_ack,omitempty"`
	AssociationStatus      uint8              `yaml:"association_status,omitempty"`
	AssignShortAddr        uint16             `yaml:"assign_short_addr,omitempty"`
	Silent                 bool               `yaml:"silent,omitempty"`
	ResponseDelay          Duration           `yaml:"response_delay,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Interface: InterfaceConfig{
			AckTimeout:      Duration(ack.DefaultTimeout),
			ResponseTimeout: Duration(assoc.DefaultResponseTimeout),
		},
		LogLevel: "info",
		NCP: NCPConfig{
			Listen:   fmt.Sprintf(":%d", DefaultNCPPort),
			Instance: "wpan-ncp",
		},
	}
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the stack would reject.
func (c *Config) Validate() error {
	var errs []error

	if c.Interface.AckTimeout <= 0 {
		errs = append(errs, errors.New("interface.ack_timeout must be positive"))
	}
	if c.Interface.ResponseTimeout <= 0 {
		errs = append(errs, errors.New("interface.response_timeout must be positive"))
	}
	if a := c.Interface.ExtendedAddress; !a.IsZero() && a.Mode() != ieee802154.AddrModeExtended {
		errs = append(errs, errors.New("interface.extended_address must be a 64-bit address"))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q not one of debug, info, warn, error", c.LogLevel))
	}

	for i, cc := range c.Medium.Coordinators {
		if !ieee802154.ValidChannel(cc.Channel) {
			errs = append(errs, fmt.Errorf("medium.coordinators[%d]: %w: channel %d",
				i, ieee802154.ErrInvalidChannelSet, cc.Channel))
		}
		if cc.Address.IsZero() {
			errs = append(errs, fmt.Errorf("medium.coordinators[%d]: address required", i))
		}
		if cc.AssociationStatus > frame.AssocAccessDenied {
			errs = append(errs, fmt.Errorf("medium.coordinators[%d]: association_status 0x%02x reserved", i, cc.AssociationStatus))
		}
		if cc.PANID == ieee802154.BroadcastPANID {
			errs = append(errs, fmt.Errorf("medium.coordinators[%d]: pan_id 0xffff is the broadcast PAN", i))
		}
	}

	return errors.Join(errs...)
}

// ManagerConfig maps the interface section onto a mgmt.Config. Loggers and
// the state store are attached by the caller.
func (c *Config) ManagerConfig() mgmt.Config {
	return mgmt.Config{
		InterfaceID:     c.Interface.ID,
		ExtendedAddress: c.Interface.ExtendedAddress,
		AckTimeout:      c.Interface.AckTimeout.Std(),
		ResponseTimeout: c.Interface.ResponseTimeout.Std(),
	}
}

// NewMedium builds a simulated medium populated with the configured coordinators.
func (c *Config) NewMedium() *sim.Medium {
	m := sim.NewMedium()
	for _, cc := range c.Medium.Coordinators {
		m.AddCoordinator(cc.Coordinator())
	}
	return m
}

// Coordinator converts the entry to a simulated coordinator.
func (cc CoordinatorConfig) Coordinator() sim.Coordinator {
	return sim.Coordinator{
		Channel:                cc.Channel,
		PANID:                  cc.PANID,
		Address:                cc.Address,
		LQI:                    cc.LQI,
		Beaconing:              cc.Beaconing,
		RespondToBeaconRequest: cc.RespondToBeaconRequest,
		AutoAck:                cc.AutoAck,
		AssociationStatus:      cc.AssociationStatus,
		AssignShortAddr:        cc.AssignShortAddr,
		Silent:                 cc.Silent,
		ResponseDelay:          time.Duration(cc.ResponseDelay),
	}
}

// LoadError describes a failure to load a configuration file.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
