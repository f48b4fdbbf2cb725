// Command portfoliobot runs the portfolio submission and moderation bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m3rciful/portfoliobot/core/buildinfo"
	corecmd "github.com/m3rciful/portfoliobot/core/cmd"
	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	coredatabase "github.com/m3rciful/portfoliobot/core/database"
	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/internal/app"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	run := func(*cobra.Command, []string) error {
		return corecmd.Run(corecmd.Options{
			ConfigPath:        configPath,
			DefaultConfigPath: defaultConfigPath,
			Bootstrap:         app.Bootstrap,
		})
	}

	cmd := &cobra.Command{
		Use:           "portfoliobot",
		Short:         "Telegram bot for portfolio submissions and moderation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (YAML), overrides CONFIG_PATH")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the bot until interrupted",
			RunE:  run,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(*cobra.Command, []string) error {
				return migrate(configPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(c *cobra.Command, _ []string) {
				fmt.Fprintf(c.OutOrStdout(), "portfoliobot %s\n", buildinfo.String())
			},
		},
	)
	return cmd
}

func migrate(configPath string) error {
	path, err := corecmd.ResolveConfigPath(configPath, "", defaultConfigPath)
	if err != nil {
		return err
	}
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Shutdown() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return coredatabase.RunMigrations(ctx, cfg.Database)
}
