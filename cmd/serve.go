package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/jjenkins/trialfinder/internal/handlers"
	"github.com/jjenkins/trialfinder/internal/store"
	"github.com/spf13/cobra"
)

const sweepInterval = 5 * time.Minute

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trialfinder web server",
	Long:  `Start the web server with the clinical trial search form.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to run the server on (default from PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port == "" {
		port = cfg.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	sessions := store.NewSessionStore(cfg.SessionTTL)
	go sweep(ctx, sessions, deps.pgCache)

	app := fiber.New(fiber.Config{
		AppName:      "trialfinder",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	})

	app.Use(fiberlogger.New())

	handlers.Register(app, handlers.Deps{
		Searcher:      deps.searcher,
		RowTranslator: deps.rows,
		Sessions:      sessions,
		Gatherer:      deps.registry,
		Log:           logger,
	})

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("port", port).Str("translator", cfg.TranslatorProvider).
		Str("cache", cfg.CacheBackend).Str("jrct_strategy", cfg.JRCTStrategy).
		Msg("starting server")
	return app.Listen(":" + port)
}

// sweep expires idle sessions and, with the postgres cache, stale translations
func sweep(ctx context.Context, sessions *store.SessionStore, pg *store.PGCache) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug().Int("sessions", n).Msg("expired idle sessions")
			}
			if pg == nil {
				continue
			}
			n, err := pg.DeleteExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to delete expired translations")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("rows", n).Msg("deleted expired translations")
			}
		}
	}
}
