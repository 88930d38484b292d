package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-beamline"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
channels:
  prefix: "lab/channels"
schemas:
  - name: motor
    doc: [motor]
    fields:
      - name: position
        template: "{base}.VAL"
        writable: true
      - name: moving
        template: "{base}.MOVN"
devices:
  - name: sample-x
    schema: motor
    base: "XF:Tbl:MtrX"
    read_fields: [position]
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-beamline" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-beamline")
	}
	if cfg.Channels.Prefix != "lab/channels" {
		t.Errorf("Channels.Prefix = %q, want %q", cfg.Channels.Prefix, "lab/channels")
	}
	if len(cfg.Schemas) != 1 || len(cfg.Schemas[0].Fields) != 2 {
		t.Fatalf("Schemas = %+v, want one schema with two fields", cfg.Schemas)
	}
	if !cfg.Schemas[0].Fields[0].Writable {
		t.Error("position field should parse as writable")
	}
	if len(cfg.Devices) != 1 || cfg.Devices[0].Base != "XF:Tbl:MtrX" {
		t.Errorf("Devices = %+v", cfg.Devices)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "site:\n  id: test\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
	if cfg.Channels.Prefix != "signalbind/channels" {
		t.Errorf("Channels.Prefix = %q, want default", cfg.Channels.Prefix)
	}
	if !cfg.Poll.Enabled || cfg.Poll.Interval != 10 {
		t.Errorf("Poll = %+v, want enabled with 10s interval", cfg.Poll)
	}
	if !cfg.Commands.Enabled || cfg.Commands.Prefix != "signalbind/devices" {
		t.Errorf("Commands = %+v, want enabled with default prefix", cfg.Commands)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SIGNALBIND_DATABASE_PATH", "/env/override.db")
	t.Setenv("SIGNALBIND_MQTT_HOST", "broker.example.com")
	t.Setenv("SIGNALBIND_CHANNELS_PREFIX", "env/channels")
	t.Setenv("SIGNALBIND_COMMANDS_PREFIX", "env/devices")

	cfg, err := Load(writeConfig(t, "site:\n  id: test\ndatabase:\n  path: /file.db\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/env/override.db" {
		t.Errorf("Database.Path = %q, env override not applied", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, env override not applied", cfg.MQTT.Broker.Host)
	}
	if cfg.Channels.Prefix != "env/channels" {
		t.Errorf("Channels.Prefix = %q, env override not applied", cfg.Channels.Prefix)
	}
	if cfg.Commands.Prefix != "env/devices" {
		t.Errorf("Commands.Prefix = %q, env override not applied", cfg.Commands.Prefix)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"valid defaults",
			func(c *Config) {},
			"",
		},
		{
			"invalid qos",
			func(c *Config) { c.MQTT.QoS = 3 },
			"mqtt.qos",
		},
		{
			"empty channel prefix",
			func(c *Config) { c.Channels.Prefix = "" },
			"channels.prefix",
		},
		{
			"wildcard in channel prefix",
			func(c *Config) { c.Channels.Prefix = "lab/#" },
			"wildcards",
		},
		{
			"empty command prefix",
			func(c *Config) { c.Commands.Prefix = "" },
			"commands.prefix",
		},
		{
			"wildcard in command prefix",
			func(c *Config) { c.Commands.Prefix = "lab/+/cmd" },
			"wildcards",
		},
		{
			"poll interval too small",
			func(c *Config) { c.Poll.Interval = 0 },
			"poll.interval",
		},
		{
			"influx enabled without token",
			func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
			},
			"influxdb.token",
		},
		{
			"duplicate schema name",
			func(c *Config) {
				c.Schemas = []SchemaConfig{{Name: "motor"}, {Name: "motor"}}
			},
			"declared more than once",
		},
		{
			"device references unknown schema",
			func(c *Config) {
				c.Schemas = []SchemaConfig{{Name: "motor"}}
				c.Devices = []DeviceConfig{{Name: "d", Schema: "camera", Base: "XF:Cam"}}
			},
			"undeclared schema",
		},
		{
			"device without base",
			func(c *Config) {
				c.Devices = []DeviceConfig{{Name: "d", Schema: "motor"}}
			},
			"base is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPollInterval(t *testing.T) {
	cfg := defaultConfig()
	if cfg.PollInterval().Seconds() != 10 {
		t.Errorf("PollInterval() = %v, want 10s", cfg.PollInterval())
	}
}
