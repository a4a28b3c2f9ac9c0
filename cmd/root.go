package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/sayingsbot/internal/config"
	"github.com/example/sayingsbot/internal/database"
	"github.com/example/sayingsbot/internal/excel"
	"github.com/example/sayingsbot/internal/logging"
	"github.com/example/sayingsbot/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sayingsbot",
	Short: "Telegram quiz bot for translating Russian sayings",
	Long:  "sayingsbot asks Telegram users to pick the correct English translation of\n" +
		"Russian sayings and keeps per-saying answer statistics.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Execute runs the root command; ctx is cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db-driver", "", "Database driver: sqlite3 or postgres (overrides DB_DRIVER)")
	flags.String("db-dsn", "", "Database file or connection string (overrides DB_DSN)")
	flags.String("sayings", "", "Path to the sayings .xlsx or .csv file (overrides SAYINGS_FILE)")
	flags.String("sheet", "", "Sheet with the sayings; the first sheet when empty (overrides SAYINGS_SHEET)")
	flags.String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.String("log-format", "", "text or json (overrides LOG_FORMAT)")

	addServeFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
}

// setup resolves the configuration and the logger shared by every command
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openStore connects to the stats database
func openStore(cfg *config.Config, logger *slog.Logger) (*sqlx.DB, *database.SayingRepository, error) {
	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to database", slog.String("driver", cfg.Database.Driver))
	return db, database.NewSayingRepository(db), nil
}

// loadSayings reads the catalog file and seeds the store with new sayings
func loadSayings(ctx context.Context, cfg *config.Config, repo *database.SayingRepository, logger *slog.Logger) ([]models.Saying, *database.InitResult, error) {
	importConfig := excel.DefaultImportConfig()
	importConfig.FilePath = cfg.Catalog.Path
	importConfig.SheetName = cfg.Catalog.Sheet

	sayings, err := excel.LoadCatalog(importConfig)
	if err != nil {
		return nil, nil, err
	}

	result, err := repo.Initialize(ctx, sayings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize statistics: %w", err)
	}
	logger.Info("Sayings loaded",
		slog.String("path", cfg.Catalog.Path),
		slog.Int("total", result.TotalProcessed),
		slog.Int("created", result.Created),
		slog.Int("existing", result.Existing),
	)
	return sayings, result, nil
}
