// Signalbind - declarative signal binding for instrument channels
//
// This is the main entry point for the Signalbind daemon. It binds
// schema-declared signal fields to live channels over an MQTT-bridged
// gateway, periodically reads configured devices, listens for device
// commands on MQTT topics, and records operation telemetry to SQLite
// and (optionally) InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	osignal "os/signal"
	"syscall"
	"time"

	_ "github.com/openbeamline/signalbind/migrations"

	"github.com/openbeamline/signalbind/internal/channel/mqttchan"
	"github.com/openbeamline/signalbind/internal/command"
	"github.com/openbeamline/signalbind/internal/infrastructure/config"
	"github.com/openbeamline/signalbind/internal/infrastructure/database"
	"github.com/openbeamline/signalbind/internal/infrastructure/influxdb"
	"github.com/openbeamline/signalbind/internal/infrastructure/logging"
	"github.com/openbeamline/signalbind/internal/infrastructure/mqtt"
	"github.com/openbeamline/signalbind/internal/signal"
	"github.com/openbeamline/signalbind/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := osignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Signalbind",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Operation telemetry: SQLite always, InfluxDB when enabled.
	var recorder telemetry.Recorder = telemetry.NewSQLiteRecorder(db.DB)
	if influxClient != nil {
		recorder, err = telemetry.NewFanout(
			telemetry.NewSQLiteRecorder(db.DB),
			influxdb.NewOperationRecorder(influxClient),
		)
		if err != nil {
			return fmt.Errorf("building telemetry recorder: %w", err)
		}
	}

	// Channel provider over the broker
	channels, err := mqttchan.NewClient(mqttClient, cfg.Channels.Prefix, byte(cfg.MQTT.QoS))
	if err != nil {
		return fmt.Errorf("building channel client: %w", err)
	}

	// Build schemas and devices from configuration
	schemas, err := signal.BuildSchemas(cfg.Schemas)
	if err != nil {
		return fmt.Errorf("building schemas: %w", err)
	}
	log.Info("schemas built", "count", len(schemas))

	devices, err := signal.BuildDevices(cfg.Devices, schemas, channels, log)
	if err != nil {
		return fmt.Errorf("building devices: %w", err)
	}
	log.Info("devices built", "count", len(devices))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Device command topics
	if cfg.Commands.Enabled {
		dispatcher, dispErr := command.NewDispatcher(mqttClient, recorder, cfg.Commands.Prefix, byte(cfg.MQTT.QoS), log)
		if dispErr != nil {
			return fmt.Errorf("building command dispatcher: %w", dispErr)
		}
		targets := make([]command.Target, 0, len(devices))
		for _, device := range devices {
			targets = append(targets, device)
		}
		if dispErr := dispatcher.Start(ctx, targets); dispErr != nil {
			return fmt.Errorf("starting command dispatcher: %w", dispErr)
		}
		log.Info("command dispatcher started", "prefix", cfg.Commands.Prefix, "devices", len(targets))
	} else {
		log.Info("command dispatcher disabled")
	}

	// Periodic device reads
	if cfg.Poll.Enabled {
		go pollLoop(ctx, devices, recorder, influxClient, cfg.PollInterval(), log)
		log.Info("poll loop started", "interval", cfg.PollInterval())
	} else {
		log.Info("poll loop disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT
	// 3. Database

	log.Info("Signalbind stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SIGNALBIND_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SIGNALBIND_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pollLoop reads every device's configured fields on a fixed interval,
// records the read as a telemetry operation, and mirrors numeric values
// into InfluxDB when available.
func pollLoop(ctx context.Context, devices []*signal.Device, recorder telemetry.Recorder, influxClient *influxdb.Client, interval time.Duration, log signal.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pollOnce(ctx, devices, recorder, influxClient, log)
		}
	}
}

// pollOnce reads each device once. Read failures are logged, not fatal:
// a disconnected channel on one device must not stall the others.
func pollOnce(ctx context.Context, devices []*signal.Device, recorder telemetry.Recorder, influxClient *influxdb.Client, log signal.Logger) {
	for _, device := range devices {
		started := time.Now()
		values, err := device.Read()
		if err != nil {
			log.Warn("device read failed", "device", device.Name(), "error", err)
			continue
		}

		rec := telemetry.NewRecord(device.Name(), telemetry.ActionRead, started, time.Now())
		if recordErr := recorder.Record(ctx, rec); recordErr != nil {
			log.Warn("recording read telemetry failed", "device", device.Name(), "error", recordErr)
		}

		if influxClient == nil {
			continue
		}
		for field, value := range values {
			number, ok := value.(float64)
			if !ok {
				continue
			}
			descriptor, found := device.Schema().Descriptor(field)
			if !found {
				continue
			}
			influxClient.WriteChannelValue(device.Name(), field, descriptor.Resolve(device.Base()), number)
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
