package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "power_monitor/docs" // swagger docs

	"power_monitor/internal/config"
	"power_monitor/internal/handlers"
	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/mqtt"
	"power_monitor/internal/repository"
	"power_monitor/internal/repository/db"
	"power_monitor/internal/server"
	"power_monitor/internal/service"
	"power_monitor/internal/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

// @title                       Power Monitor API
// @version                     1.0
// @description                 Electrical telemetry over MQTT: live snapshot, per-minute history, debounced switch control and monthly cost forecast.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	// load configs/config.yml + POWER_MONITOR_* overrides
	cfg, cfgErr := config.Load(viper.GetViper(), "configs", ".")

	// init logger
	level, format := logger.InfoLevel, logger.FormatConsole
	if cfg != nil {
		level, format = cfg.Log.Level, cfg.Log.Format
	}
	log := logger.Get(level, format)
	defer func() { _ = log.Sync() }()

	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warnw("error loading .env file", "err", envErr)
	}

	// open DB
	conn, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	opts, err := serviceOptions(cfg)
	if err != nil {
		log.Fatalw("invalid service options", "err", err)
	}

	// wire dependencies
	m := metrics.New()
	broker := mqtt.New(mqtt.Config{
		Broker:       cfg.MQTT.Broker,
		ClientID:     cfg.MQTT.ClientID,
		Username:     cfg.MQTT.Username,
		Password:     cfg.MQTT.Password,
		Topics:       opts.Topics.Subscriptions(),
		ConnectRetry: cfg.MQTT.ConnectRetry,
		QueueSize:    cfg.MQTT.QueueSize,
	}, log, m)
	repos := repository.NewRepository(conn)
	services, core := service.NewService(repos, broker, opts, log, m)
	apiHandler := handlers.NewHandler(services, log, m)

	// context for background workers; a worker that keeps panicking cancels it
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workers := worker.NewGroup(ctx, cancel, log, worker.DefaultPolicy)

	workers.Go("mqtt", func(ctx context.Context) {
		if err := broker.Run(ctx); err != nil {
			log.Errorw("mqtt_worker_stopped", "err", err)
		}
	})
	workers.Go("ingest", func(ctx context.Context) {
		core.Ingestor.Run(ctx, broker.Messages())
	})

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(ctx, cancel, srv, core, workers, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "power_monitor.db")
		dbPath = "power_monitor.db"
	}
	return db.InitDB(dbPath)
}

func serviceOptions(cfg *config.Config) (service.Options, error) {
	method, err := service.ParseForecastMethod(cfg.Forecast.Method)
	if err != nil {
		return service.Options{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		Topics: service.Topics{
			Sensors: cfg.MQTT.SensorTopics,
			State:   cfg.MQTT.StateTopic,
			Command: cfg.MQTT.CommandTopic,
		},
		Debounce:       cfg.Switch.Debounce,
		Device:         cfg.Switch.Device,
		ForecastMethod: method,
		Location:       loc,
		Auth: service.AuthConfig{
			Enabled:    cfg.Auth.Enabled,
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	}, nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, server.Wrap(handler.InitRoutes(), log.Writer())); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
	log.Infow("http_server_started", "port", port)
}

// waitForShutdown blocks until a termination signal arrives or a worker gives
// up, then drains the core before stopping the transport and HTTP server.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, srv *server.Server, core *service.Core, workers *worker.Group, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Infow("shutting down server...", "signal", sig.String())
	case <-ctx.Done():
		log.Errorw("worker failure, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// stop accepting requests first, then flush a pending switch command while
	// the broker connection is still up
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	if err := core.Shutdown(shutdownCtx); err != nil {
		log.Errorw("core shutdown incomplete", "err", err)
	}

	// stop background workers
	cancel()
	workers.Wait()
	log.Infow("shutdown complete")
}
