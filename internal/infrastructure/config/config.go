package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Signalbind.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Channels ChannelsConfig `yaml:"channels"`
	Commands CommandsConfig `yaml:"commands"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Poll     PollConfig     `yaml:"poll"`
	Schemas  []SchemaConfig `yaml:"schemas"`
	Devices  []DeviceConfig `yaml:"devices"`
}

// SiteConfig identifies the installation the daemon runs at.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings for telemetry storage.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// ChannelsConfig contains settings for the MQTT-bridged channel client.
type ChannelsConfig struct {
	// Prefix is the topic namespace channel identifiers live under.
	Prefix string `yaml:"prefix"`
}

// CommandsConfig contains settings for the device command listener.
type CommandsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Prefix is the topic namespace device command topics live under.
	Prefix string `yaml:"prefix"`
}

// InfluxDBConfig contains InfluxDB telemetry sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// PollConfig contains periodic device read settings.
type PollConfig struct {
	Enabled  bool `yaml:"enabled"`
	Interval int  `yaml:"interval"`
}

// SchemaConfig declares a signal schema in configuration. It is the
// runtime complement of code-declared schemas: each field pairs a name
// with an identifier template and capability flags.
type SchemaConfig struct {
	Name    string        `yaml:"name"`
	Extends string        `yaml:"extends"`
	Doc     []string      `yaml:"doc"`
	Fields  []FieldConfig `yaml:"fields"`
	Groups  []GroupConfig `yaml:"groups"`
}

// FieldConfig declares one signal field of a schema.
type FieldConfig struct {
	Name           string `yaml:"name"`
	Template       string `yaml:"template"`
	Writable       bool   `yaml:"writable"`
	Readback       bool   `yaml:"readback"`
	ReadbackSuffix string `yaml:"readback_suffix"`
	String         bool   `yaml:"string"`
	Doc            string `yaml:"doc"`
}

// GroupConfig declares a named group over declared fields.
type GroupConfig struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// DeviceConfig binds a schema to a concrete base identifier.
type DeviceConfig struct {
	Name       string   `yaml:"name"`
	Alias      string   `yaml:"alias"`
	Schema     string   `yaml:"schema"`
	Base       string   `yaml:"base"`
	ReadFields []string `yaml:"read_fields"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SIGNALBIND_SECTION_KEY
// For example: SIGNALBIND_DATABASE_PATH, SIGNALBIND_MQTT_HOST
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "beamline-001",
			Name:     "Signalbind",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/signalbind.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "signalbind",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Channels: ChannelsConfig{
			Prefix: "signalbind/channels",
		},
		Commands: CommandsConfig{
			Enabled: true,
			Prefix:  "signalbind/devices",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Poll: PollConfig{
			Enabled:  true,
			Interval: 10,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SIGNALBIND_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("SIGNALBIND_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("SIGNALBIND_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SIGNALBIND_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SIGNALBIND_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Channels
	if v := os.Getenv("SIGNALBIND_CHANNELS_PREFIX"); v != "" {
		cfg.Channels.Prefix = v
	}

	// Commands
	if v := os.Getenv("SIGNALBIND_COMMANDS_PREFIX"); v != "" {
		cfg.Commands.Prefix = v
	}

	// InfluxDB
	if v := os.Getenv("SIGNALBIND_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("SIGNALBIND_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Channels.Prefix == "" {
		errs = append(errs, "channels.prefix is required")
	}
	if strings.ContainsAny(c.Channels.Prefix, "+#") {
		errs = append(errs, "channels.prefix must not contain MQTT wildcards")
	}
	if c.Commands.Enabled {
		if c.Commands.Prefix == "" {
			errs = append(errs, "commands.prefix is required when commands are enabled")
		}
		if strings.ContainsAny(c.Commands.Prefix, "+#") {
			errs = append(errs, "commands.prefix must not contain MQTT wildcards")
		}
	}
	if c.Poll.Enabled && c.Poll.Interval < 1 {
		errs = append(errs, "poll.interval must be at least 1 second")
	}
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set SIGNALBIND_INFLUXDB_TOKEN)")
		}
	}

	// Schema and device declarations are validated structurally here;
	// template placeholders are checked by the signal package at build.
	schemaNames := make(map[string]bool, len(c.Schemas))
	for _, s := range c.Schemas {
		if s.Name == "" {
			errs = append(errs, "schemas[].name is required")
			continue
		}
		if schemaNames[s.Name] {
			errs = append(errs, fmt.Sprintf("schema %q declared more than once", s.Name))
		}
		schemaNames[s.Name] = true
	}
	for _, d := range c.Devices {
		if d.Base == "" {
			errs = append(errs, fmt.Sprintf("device %q: base is required", d.Name))
		}
		if d.Schema == "" {
			errs = append(errs, fmt.Sprintf("device %q: schema is required", d.Name))
		} else if len(c.Schemas) > 0 && !schemaNames[d.Schema] {
			errs = append(errs, fmt.Sprintf("device %q references undeclared schema %q", d.Name, d.Schema))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollInterval returns the device poll interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.Interval) * time.Second
}
