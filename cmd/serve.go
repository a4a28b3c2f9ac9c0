package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/sayingsbot/internal/bank"
	"github.com/example/sayingsbot/internal/bot"
	"github.com/example/sayingsbot/internal/httpapi"
	"github.com/example/sayingsbot/internal/quiz"
	"github.com/example/sayingsbot/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("token", "", "Telegram bot token (overrides TELEGRAM_BOT_TOKEN)")
	flags.Bool("debug", false, "Log Telegram API traffic (overrides TELEGRAM_DEBUG)")
	flags.Int("workers", 0, "Update processing workers (overrides BOT_WORKERS)")
	flags.String("closing-asset", "", "Image sent when a chat ends the quiz (overrides CLOSING_ASSET)")
	flags.Duration("session-ttl", 0, "Drop sessions idle for longer than this (overrides SESSION_TTL)")
	flags.String("http-addr", "", "Listen address of the stats API, e.g. :8080 (overrides HTTP_ADDR)")
}

// runServe loads the catalog, seeds the store and runs the bot until the
// command context is cancelled.
func runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, repo, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	sayings, _, err := loadSayings(ctx, cfg, repo, logger)
	if err != nil {
		return err
	}
	catalog := bank.New(sayings)
	for _, tier := range catalog.Tiers() {
		logger.Debug("Difficulty tier", slog.Int("level", tier), slog.Int("sayings", catalog.Len(tier)))
	}

	engine := quiz.NewEngine(catalog, repo, quiz.Config{
		ClosingAsset: cfg.Bot.ClosingAsset,
	}, logger)

	sweeper := scheduler.New(engine.Sessions(), cfg.Session.SweepInterval, cfg.Session.TTL, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	httpErr := make(chan error, 1)
	if cfg.HTTP.Addr != "" {
		server := httpapi.NewServer(httpapi.Config{
			Addr:           cfg.HTTP.Addr,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		}, repo, logger)
		go func() { httpErr <- server.Run(ctx) }()
	} else {
		close(httpErr)
	}

	botConfig := bot.DefaultConfig()
	botConfig.Workers = cfg.Bot.Workers
	botConfig.Debug = cfg.Telegram.Debug

	b, err := bot.New(cfg.Telegram.Token, engine, botConfig, logger)
	if err != nil {
		return err
	}

	err = b.Start(ctx)
	if errors.Is(err, ctx.Err()) {
		err = nil
	}
	if srvErr := <-httpErr; srvErr != nil {
		err = errors.Join(err, srvErr)
	}
	if err != nil {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	logger.Info("Bot stopped successfully")
	return nil
}
