package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// Backend names accepted by -backend.
const (
	BackendZeroconf  = "zeroconf"
	BackendHashicorp = "hashicorp"
)

// Config holds the browser configuration.
// Values come from an optional YAML file; flags set on the command line
// override file values.
type Config struct {
	ConfigFile    string        `yaml:"-"`
	ServiceType   string        `yaml:"service_type"`
	Protocol      string        `yaml:"protocol"`
	Domain        string        `yaml:"domain"`
	Backend       string        `yaml:"backend"`
	Interface     string        `yaml:"interface"`
	LogLevel      string        `yaml:"log_level"`
	Journal       string        `yaml:"journal"`
	HTTPAddr      string        `yaml:"http_addr"`
	Interactive   bool          `yaml:"interactive"`
	QueryInterval time.Duration `yaml:"query_interval"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		ServiceType:   discovery.DefaultServiceType,
		Protocol:      discovery.DefaultProtocol,
		Domain:        discovery.DefaultDomain,
		Backend:       BackendZeroconf,
		LogLevel:      "info",
		QueryInterval: discovery.DefaultQueryInterval,
	}
}

// parseConfig builds the configuration from command-line arguments.
func parseConfig(args []string, stderr io.Writer) (Config, error) {
	config := DefaultConfig()

	fs := flag.NewFlagSet("zeroconf-browse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&config.ServiceType, "type", config.ServiceType, "Service type to browse, without underscore")
	fs.StringVar(&config.Protocol, "protocol", config.Protocol, "Service protocol: tcp or udp")
	fs.StringVar(&config.Domain, "domain", config.Domain, "Browse domain")
	fs.StringVar(&config.Backend, "backend", config.Backend, "mDNS backend: zeroconf, hashicorp")
	fs.StringVar(&config.Interface, "interface", "", "Network interface to browse on (default all)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&config.Journal, "journal", "", "Write the event journal to this .zlog file")
	fs.StringVar(&config.HTTPAddr, "http", "", "Serve the HTTP API on this address, e.g. :8080")
	fs.BoolVar(&config.Interactive, "interactive", false, "Enable interactive command mode")
	fs.DurationVar(&config.QueryInterval, "query-interval", config.QueryInterval, "Query interval for the hashicorp backend")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if config.ConfigFile != "" {
		fileConfig, err := loadConfigFile(config.ConfigFile)
		if err != nil {
			return Config{}, err
		}

		// Re-apply explicitly set flags on top of the file.
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		flagConfig := config
		config = fileConfig
		config.ConfigFile = flagConfig.ConfigFile
		config.overrideFrom(flagConfig, explicit)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// loadConfigFile reads a YAML configuration file over the defaults.
func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) overrideFrom(flags Config, explicit map[string]bool) {
	if explicit["type"] {
		c.ServiceType = flags.ServiceType
	}
	if explicit["protocol"] {
		c.Protocol = flags.Protocol
	}
	if explicit["domain"] {
		c.Domain = flags.Domain
	}
	if explicit["backend"] {
		c.Backend = flags.Backend
	}
	if explicit["interface"] {
		c.Interface = flags.Interface
	}
	if explicit["log-level"] {
		c.LogLevel = flags.LogLevel
	}
	if explicit["journal"] {
		c.Journal = flags.Journal
	}
	if explicit["http"] {
		c.HTTPAddr = flags.HTTPAddr
	}
	if explicit["interactive"] {
		c.Interactive = flags.Interactive
	}
	if explicit["query-interval"] {
		c.QueryInterval = flags.QueryInterval
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendZeroconf, BackendHashicorp:
	default:
		return fmt.Errorf("unknown backend: %s (use: zeroconf, hashicorp)", c.Backend)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.QueryInterval <= 0 {
		return errors.New("query interval must be positive")
	}
	return discovery.ValidateScan(c.ServiceType, c.Protocol)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}
