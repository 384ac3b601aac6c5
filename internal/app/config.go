package app

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how decoded records are written to stdout and the report file
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatSBS  OutputFormat = "sbs"
	FormatJSON OutputFormat = "json"
)

// Default configuration constants
const (
	DefaultFormat        = FormatText
	DefaultLogDir        = "./logs"
	DefaultDump978Port   = 30978 // dump978 raw output port
	DefaultNATSSubject   = "uat.downlink"
	DefaultStatsInterval = 30 * time.Second
	DefaultDialTimeout   = 10 * time.Second
)

// Config holds application configuration
type Config struct {
	Input         string        `yaml:"input"`
	Connect       string        `yaml:"connect"`
	Format        OutputFormat  `yaml:"format"`
	LogDir        string        `yaml:"log_dir"`
	LogRotateUTC  bool          `yaml:"log_rotate_utc"`
	LogToFile     bool          `yaml:"log_to_file"`
	LogRetention  int           `yaml:"log_retention_days"`
	Quiet         bool          `yaml:"quiet"`
	SQLitePath    string        `yaml:"sqlite_path"`
	PostgresURL   string        `yaml:"postgres_url"`
	NATSURL       string        `yaml:"nats_url"`
	NATSSubject   string        `yaml:"nats_subject"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	Verbose       bool          `yaml:"verbose"`
	ShowVersion   bool          `yaml:"-"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Input:         "-",
		Format:        DefaultFormat,
		LogDir:        DefaultLogDir,
		LogRotateUTC:  true,
		NATSSubject:   DefaultNATSSubject,
		StatsInterval: DefaultStatsInterval,
	}
}

// LoadConfigFile overlays the YAML file at path onto config. Keys missing
// from the file keep their current values.
func LoadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatSBS, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (must be text, sbs or json)", c.Format)
	}

	if c.Connect != "" && c.Input != "" && c.Input != "-" {
		return fmt.Errorf("input file and connect address are mutually exclusive")
	}

	if c.NATSURL != "" && c.NATSSubject == "" {
		return fmt.Errorf("nats_subject must be set when nats_url is given")
	}

	if c.StatsInterval <= 0 {
		return fmt.Errorf("stats_interval must be positive, got %s", c.StatsInterval)
	}

	if c.LogRetention < 0 {
		return fmt.Errorf("log_retention_days must not be negative, got %d", c.LogRetention)
	}

	if c.LogToFile && c.LogDir == "" {
		return fmt.Errorf("log_dir must be set when log_to_file is enabled")
	}

	return nil
}

// ConnectAddress returns the dump978 address to dial, adding the default
// raw port when none is given.
func (c *Config) ConnectAddress() string {
	if c.Connect == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(c.Connect); err == nil {
		return c.Connect
	}
	return net.JoinHostPort(c.Connect, strconv.Itoa(DefaultDump978Port))
}
