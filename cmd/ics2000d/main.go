// ICS-2000 core daemon.
//
// ics2000d bridges a KlikAanKlikUit ICS-2000 gateway account to the
// local network: it syncs the device list from the vendor cloud,
// caches it, persists last-known state, and exposes the cache over a
// local REST API and optional MQTT state topics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kakuware/ics2000-core/internal/api"
	"github.com/kakuware/ics2000-core/internal/cloud"
	"github.com/kakuware/ics2000-core/internal/device"
	"github.com/kakuware/ics2000-core/internal/hub"
	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
	"github.com/kakuware/ics2000-core/internal/infrastructure/database"
	"github.com/kakuware/ics2000-core/internal/infrastructure/influxdb"
	"github.com/kakuware/ics2000-core/internal/infrastructure/logging"
	"github.com/kakuware/ics2000-core/internal/infrastructure/mqtt"
	"github.com/kakuware/ics2000-core/internal/service"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting ics2000d",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database for state persistence
	db, err := database.Open(ctx, database.Config{
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

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

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
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Cloud client and hub
	cloudClient := cloud.New(cfg.Cloud)
	cloudClient.SetLogger(log)

	h, err := hub.New(cfg, cloudClient, hub.Options{
		Store:  device.NewStateStore(db.DB),
		MQTT:   mqttClient,
		Influx: influxClient,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating hub: %w", err)
	}

	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("starting hub: %w", err)
	}
	defer func() {
		log.Info("stopping hub")
		if closeErr := h.Close(); closeErr != nil {
			log.Error("error stopping hub", "error", closeErr)
		}
	}()

	// Local REST server (optional)
	if cfg.API.Enabled {
		server, err := api.New(api.Deps{
			Config:     cfg.API,
			Devices:    cfg.Devices,
			Logger:     log,
			Hub:        h,
			Dispatcher: service.New(h),
			Version:    version,
		})
		if err != nil {
			return fmt.Errorf("creating REST server: %w", err)
		}
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("starting REST server: %w", err)
		}
		defer func() {
			log.Info("stopping REST server")
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error stopping REST server", "error", closeErr)
			}
		}()
	} else {
		log.Info("REST server disabled")
	}

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if cfg.Devices.DiscoverMessage != "" {
		log.Info(cfg.Devices.DiscoverMessage, "devices", h.Stats().Devices)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ICS2000_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ICS2000_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure connections are healthy.
// Optional clients are skipped when nil.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
