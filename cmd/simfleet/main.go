// SimFleet Core - Device Simulator Fleet Controller
//
// This is the main entry point for the SimFleet Core service. SimFleet
// supervises a fleet of device simulators through the external control
// tool, serializes all per-device operations through lifecycle actors,
// and streams device screens to an external encoder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/simfleet-core/migrations"

	"github.com/nerrad567/simfleet-core/internal/api"
	"github.com/nerrad567/simfleet-core/internal/capture"
	"github.com/nerrad567/simfleet-core/internal/events"
	"github.com/nerrad567/simfleet-core/internal/history"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/config"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/database"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/simfleet-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/simfleet-core/internal/lifecycle"
	"github.com/nerrad567/simfleet-core/internal/simctl"
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

// historyRetention is how long state transitions are kept before the daily
// prune removes them.
const historyRetention = 30 * 24 * time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
	log.Info("starting SimFleet Core",
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

	historyRepo := history.NewSQLiteRepository(db.DB)

	// Event fanout wires domain notifications to the outward surfaces.
	fanout := events.NewFanout()
	fanout.SetLogger(log)
	fanout.SetHistory(historyRepo)

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

		fanout.SetPublisher(mqttClient, byte(cfg.MQTT.QoS))
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		fanout.SetPollWriter(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Device control client
	control := simctl.NewCLI(
		cfg.Devices.ControlBinary,
		time.Duration(cfg.Devices.CommandTimeout)*time.Second,
	)
	control.SetLogger(log)

	// Lifecycle supervisor: one actor per tracked device
	supervisor := lifecycle.NewSupervisor(ctx, lifecycle.SupervisorConfig{
		Control:      control,
		PollInterval: time.Duration(cfg.Devices.PollIntervalMs) * time.Millisecond,
		Logger:       log,
		Sink:         fanout,
	})
	log.Info("lifecycle supervisor initialised",
		"poll_interval_ms", cfg.Devices.PollIntervalMs,
	)

	// Capture manager: screenshot-to-encoder sessions
	captures := capture.NewManager(ctx, capture.Config{
		EncoderBinary: cfg.Capture.EncoderBinary,
		WindowBinary:  cfg.Capture.WindowCaptureBinary,
		FrameDir:      cfg.Capture.FrameDir,
		DefaultFPS:    cfg.Capture.DefaultFPS,
		StopTimeout:   time.Duration(cfg.Capture.StopTimeout) * time.Second,
	}, supervisor)
	captures.SetLogger(log)
	captures.SetSink(fanout)
	if influxClient != nil {
		captures.SetMetrics(influxClient)
	}
	defer captures.StopAll()

	// API server
	apiServer, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log,
		Supervisor: supervisor,
		Control:    control,
		Captures:   captures,
		History:    historyRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	fanout.SetBroadcaster(apiServer.Hub())

	// Verify infrastructure connections before serving
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if startErr := apiServer.Start(gctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		log.Info("API server started",
			"host", cfg.API.Host,
			"port", cfg.API.Port,
		)
		<-gctx.Done()
		log.Info("stopping API server")
		return apiServer.Close()
	})

	g.Go(func() error {
		return pruneHistoryLoop(gctx, historyRepo, log)
	})

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("SimFleet Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SIMFLEET_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SIMFLEET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy. The MQTT
// and InfluxDB clients may be nil when disabled.
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

// pruneHistoryLoop removes old transition history once a day until the
// context is cancelled.
func pruneHistoryLoop(ctx context.Context, repo history.Repository, log *logging.Logger) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := repo.Prune(ctx, historyRetention)
			if err != nil {
				log.Warn("history prune failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("history pruned", "removed", n)
			}
		}
	}
}
