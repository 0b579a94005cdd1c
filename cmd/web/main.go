package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jkoskela/fitsight/internal/analysis"
	"github.com/jkoskela/fitsight/internal/envstruct"
	"github.com/jkoskela/fitsight/internal/errors"
	"github.com/jkoskela/fitsight/internal/insight"
	"github.com/jkoskela/fitsight/internal/logging"
	"github.com/jkoskela/fitsight/internal/scheduler"
	"github.com/jkoskela/fitsight/internal/sqlite"
)

type application struct {
	logger         *slog.Logger
	insightService *insight.Service
	exportPath     string
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITSIGHT_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITSIGHT_SQLITE_URL" envDefault:"./fitsight.sqlite3"`
	// ThresholdsPath optionally points to a YAML file overriding analysis thresholds.
	ThresholdsPath string `env:"FITSIGHT_THRESHOLDS_PATH" envDefault:""`
	// NightlyCron is the cron expression for the nightly batch analysis.
	NightlyCron string `env:"FITSIGHT_NIGHTLY_CRON" envDefault:"15 3 * * *"`
	// ExportPath is the directory where user data exports are written.
	ExportPath string `env:"FITSIGHT_EXPORT_PATH" envDefault:"/tmp"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	thresholds := analysis.DefaultThresholds()
	if cfg.ThresholdsPath != "" {
		if thresholds, err = analysis.LoadThresholds(cfg.ThresholdsPath); err != nil {
			return errors.Wrap(err, "load thresholds", slog.String("path", cfg.ThresholdsPath))
		}
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	insightService := insight.NewService(db, thresholds, logger)

	nightly := scheduler.New(insightService, logger)
	if err = nightly.Register(ctx, cfg.NightlyCron); err != nil {
		return errors.Wrap(err, "register nightly analysis", slog.String("cron", cfg.NightlyCron))
	}
	nightly.Start()
	defer nightly.Stop()

	app := application{
		logger:         logger,
		insightService: insightService,
		exportPath:     cfg.ExportPath,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
