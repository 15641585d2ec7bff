package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/engine"
	"yatube/internal/logging"
	"yatube/internal/media"
	"yatube/internal/service"
	"yatube/internal/utils"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

var configPath string

// rootCmd is the yatube command without subcommands.
var rootCmd = &cobra.Command{
	Use:           "yatube",
	Short:         "Yatube: a small blogging platform",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles what every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *utils.MetricsCollector
	store   database.Store
	storage media.Storage
	svc     *service.Service
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.Config, metrics *utils.MetricsCollector, logger *slog.Logger) (database.Store, error) {
	switch cfg.Database.Type {
	case config.DBTypePostgres:
		db, err := database.NewPostgresDB(cfg.Database.URI)
		if err != nil {
			return nil, err
		}
		if err := db.MigrationsUp(); err != nil {
			db.Close(ctx)
			return nil, err
		}
		logger.Info("connected to PostgreSQL")
		return db, nil
	case config.DBTypeMongo:
		db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to MongoDB", "database", cfg.Database.Name)
		return db, nil
	case config.DBTypeMemory:
		logger.Warn("using the in-memory store; data is lost on exit")
		return engine.NewMemoryStore(metrics, cfg.Server.RequestTimeout), nil
	}
	return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.Database.Type)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	metrics := utils.NewMetricsCollector()

	store, err := openStore(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	storage, err := media.New(cfg.Media)
	if err != nil {
		store.Close(ctx)
		return nil, errors.Wrap(err, "open media storage")
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		store:   store,
		storage: storage,
		svc:     service.New(store, storage, service.WithLogger(logger)),
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Close(ctx); err != nil {
		a.logger.Error("failed to close store", "error", err)
	}
}

// withApp runs fn with a fully wired app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}
