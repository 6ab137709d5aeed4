package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

const envPrefix = "ROUTEWATCH"

// AppConfig holds application configuration.
// Every field can be set through a ROUTEWATCH_-prefixed environment variable.
type AppConfig struct {
	// D-Bus signals treated as route-changed notifications, as interface.member
	Signals            []string      `envconfig:"SIGNALS" default:"org.gnome.Mutter.DisplayConfig.MonitorsChanged"`
	BusEnabled         bool          `envconfig:"BUS_ENABLED" default:"true"`
	BusConnectAttempts uint          `envconfig:"BUS_CONNECT_ATTEMPTS" default:"5"`
	BusConnectDelay    time.Duration `envconfig:"BUS_CONNECT_DELAY" default:"1s"`

	// Interval of synthetic notifications; 0 disables polling
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	ProbeTimeout time.Duration `envconfig:"PROBE_TIMEOUT" default:"2s"`

	DiscoveryEnabled  bool          `envconfig:"DISCOVERY_ENABLED" default:"true"`
	DiscoveryServices []string      `envconfig:"DISCOVERY_SERVICES" default:"_airplay._tcp,_raop._tcp,_googlecast._tcp"`
	DiscoveryInterval time.Duration `envconfig:"DISCOVERY_INTERVAL" default:"10s"`
	DiscoveryTimeout  time.Duration `envconfig:"DISCOVERY_TIMEOUT" default:"3s"`
	ReceiverTTL       time.Duration `envconfig:"RECEIVER_TTL" default:"30s"`

	// Substrings that mark a sink name as a network sink
	RemoteSinkMarkers []string `envconfig:"REMOTE_SINK_MARKERS" default:"raop,tunnel,airplay,rtp,roc,snapcast"`
}

// Load reads the configuration from environment variables
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewAppConfig loads the configuration and logs the effective values
func NewAppConfig(logger *zap.Logger) (*AppConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.Strings("signals", cfg.Signals),
		zap.Bool("busEnabled", cfg.BusEnabled),
		zap.Duration("pollInterval", cfg.PollInterval),
		zap.Bool("discoveryEnabled", cfg.DiscoveryEnabled),
		zap.Strings("discoveryServices", cfg.DiscoveryServices),
		zap.Strings("remoteSinkMarkers", cfg.RemoteSinkMarkers))

	return cfg, nil
}

func validate(cfg *AppConfig) error {
	if cfg.BusEnabled {
		if len(cfg.Signals) == 0 {
			return fmt.Errorf("SIGNALS is required when the bus is enabled")
		}
		for _, sig := range cfg.Signals {
			if _, _, ok := SplitSignal(sig); !ok {
				return fmt.Errorf("invalid signal %q, expected interface.member", sig)
			}
		}
		if cfg.BusConnectAttempts == 0 {
			return fmt.Errorf("BUS_CONNECT_ATTEMPTS must be greater than 0")
		}
	}
	if cfg.PollInterval < 0 {
		return fmt.Errorf("POLL_INTERVAL must not be negative")
	}
	if cfg.ProbeTimeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be greater than 0")
	}
	if cfg.DiscoveryEnabled {
		if len(cfg.DiscoveryServices) == 0 {
			return fmt.Errorf("DISCOVERY_SERVICES is required when discovery is enabled")
		}
		if cfg.DiscoveryInterval <= 0 || cfg.DiscoveryTimeout <= 0 {
			return fmt.Errorf("DISCOVERY_INTERVAL and DISCOVERY_TIMEOUT must be greater than 0")
		}
		if cfg.ReceiverTTL < cfg.DiscoveryInterval {
			return fmt.Errorf("RECEIVER_TTL must be at least DISCOVERY_INTERVAL")
		}
	}
	return nil
}

// SplitSignal splits "org.example.Iface.Member" into its interface and member
func SplitSignal(signal string) (iface, member string, ok bool) {
	i := strings.LastIndex(signal, ".")
	if i <= 0 || i == len(signal)-1 {
		return "", "", false
	}
	return signal[:i], signal[i+1:], true
}
