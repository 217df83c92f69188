package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayush/greenprompt/backend/internal/config"
	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/server"
	"github.com/ayush/greenprompt/backend/internal/stats"
	"github.com/ayush/greenprompt/backend/internal/store"
)

// cli carries the flags and loaded configuration shared by subcommands.
type cli struct {
	cfgFile string
	cfg     *config.Config
	logger  logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "greenprompt",
		Short:         "greenprompt backend: prompt optimization and CO₂ savings API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logging.New(os.Stdout, cfg.LogLevel)
			if cfg.SessionSecret == config.DefaultSessionSecret {
				c.logger.Warn(cmd.Context(), "using the development session secret, set SESSION_SECRET")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "path to a YAML config file")

	serve := c.serveCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, c.migrateCmd(), c.publishStatsCmd(), c.configCmd())
	return root
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.NewApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(ctx)
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := store.Open(ctx, c.cfg.DatabaseDriver, c.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx, c.logger); err != nil {
				return fmt.Errorf("db migrate: %w", err)
			}
			c.logger.Info(ctx, "migrations applied", "driver", string(db.Dialect))
			return nil
		},
	}
}

func (c *cli) publishStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-stats",
		Short: "Upload a stats snapshot to S3-compatible storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dst, err := store.NewMinioStore(ctx, store.MinioConfig{
				Endpoint:  c.cfg.MinioEndpoint,
				AccessKey: c.cfg.MinioAccessKey,
				SecretKey: c.cfg.MinioSecretKey,
				Bucket:    c.cfg.MinioBucket,
				UseSSL:    c.cfg.MinioUseSSL,
			})
			if err != nil {
				return err
			}

			app, err := server.NewApp(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			_, key, err := stats.NewPublisher(app.Aggregator(), dst, c.logger).Publish(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
