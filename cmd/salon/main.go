package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon/internal/backup"
	"salon/internal/cli"
	"salon/internal/config"
	"salon/internal/events"
	"salon/internal/export"
	"salon/internal/metrics"
	"salon/internal/storage"
	"salon/internal/store"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const usage = `usage: salon [command]

commands:
  run                 interactive menu (default)
  migrate             convert the reservations document to the current format
  export <file.xlsx>  write clients and reservations to an Excel workbook
`

func main() {
	// Initialize logger; stdout belongs to the menu.
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to load .env")
	}

	cfg, err := config.Load(os.Getenv("SALON_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.Logging.Level).Msg("unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}

	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "run"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open storage error")
	}
	defer backend.Close()

	gw := storage.NewGateway(backend, cfg.Storage.Strict, &logger)

	switch command {
	case "run":
		err = runMenu(ctx, cfg, gw, &logger)
	case "migrate":
		err = runMigrate(ctx, gw, &logger)
	case "export":
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = runExport(ctx, gw, flag.Arg(1), &logger)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("command failed")
		backend.Close()
		stop()
		os.Exit(1)
	}
}

func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return storage.NewSQLiteBackend(cfg.Storage.SQLitePath)
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Address,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		return storage.NewRedisBackend(rdb, cfg.Storage.Redis.Prefix), nil
	default:
		return storage.NewFileBackend(cfg.Storage.DataDir)
	}
}

func loadStores(ctx context.Context, cfg *config.Config, gw *storage.Gateway, bus *events.Bus, logger *zerolog.Logger) (*store.Clients, *store.Reservations, error) {
	clients := store.NewClients(gw, bus, logger)
	if err := clients.Load(ctx); err != nil {
		return nil, nil, err
	}

	rules := store.Rules{
		Policy:            store.ConflictPolicy(cfg.Booking.ConflictPolicy),
		MinSeparationDays: cfg.MinSeparation(),
	}
	reservations := store.NewReservations(gw, clients, rules, bus, logger)
	if err := reservations.Load(ctx); err != nil {
		return nil, nil, err
	}
	return clients, reservations, nil
}

func runMenu(ctx context.Context, cfg *config.Config, gw *storage.Gateway, logger *zerolog.Logger) error {
	bus := events.NewBus(logger)
	clients, reservations, err := loadStores(ctx, cfg, gw, bus, logger)
	if err != nil {
		if errors.Is(err, storage.ErrMalformed) {
			return fmt.Errorf("%w (run \"salon migrate\" for legacy files, or disable storage.strict)", err)
		}
		return err
	}

	metrics.Attach(bus)
	metrics.SetCounts(clients.Count(), reservations.Count())

	if cfg.Monitoring.HealthCheckPort > 0 {
		go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, gw.Backend(), logger)
	}
	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}
	if cfg.Backup.Enabled {
		svc := backup.NewService(gw.Backend(), []string{storage.ClientsDocument, storage.ReservationsDocument}, backup.Config{
			Enabled:   true,
			Dir:       cfg.Backup.Path,
			Interval:  cfg.BackupInterval(),
			Retention: cfg.BackupRetention(),
		}, logger)
		go svc.Start(ctx)
	}

	logger.Info().
		Str("driver", cfg.Storage.Driver).
		Str("policy", string(reservations.Rules().Policy)).
		Msg("salon started")
	return cli.NewMenu(os.Stdin, os.Stdout, clients, reservations, logger).Run(ctx)
}

func runMigrate(ctx context.Context, gw *storage.Gateway, logger *zerolog.Logger) error {
	clients, err := gw.LoadClients(ctx)
	if err != nil {
		return err
	}
	report, err := gw.MigrateReservations(ctx, clients)
	if err != nil {
		return err
	}
	fmt.Printf("schema v%d -> v%d: %d converted, %d skipped, %d on an already booked date, %d without client DNI\n",
		report.FromVersion, report.ToVersion, report.Converted, report.Skipped, report.Conflicting, report.Unresolved)
	if report.BackupName != "" {
		fmt.Printf("original kept as %q\n", report.BackupName)
	}
	logger.Debug().Interface("report", report).Msg("migration finished")
	return nil
}

func runExport(ctx context.Context, gw *storage.Gateway, path string, logger *zerolog.Logger) error {
	clients, err := gw.LoadClients(ctx)
	if err != nil {
		return err
	}
	reservations, err := gw.LoadReservations(ctx)
	if err != nil {
		return err
	}
	store.SortByDate(reservations)

	if err := export.WriteFile(path, clients, reservations); err != nil {
		return err
	}
	logger.Info().Str("path", path).Int("clients", len(clients)).Int("reservations", len(reservations)).Msg("workbook exported")
	return nil
}

func startHealthServer(ctx context.Context, port int, backend storage.Backend, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := storage.Ping(ctxPing, backend); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	serve(ctx, "health", port, mux, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, "metrics", port, mux, logger)
}

func serve(ctx context.Context, name string, port int, handler http.Handler, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str("server", name).Msg("server error")
	}
}
