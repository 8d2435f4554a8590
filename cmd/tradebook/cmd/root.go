package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
	"github.com/rustyeddy/tradebook/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "Portfolio and position accounting for recorded fills",
	Long: `Tradebook books executions into a multi-currency portfolio.

It provides tools for:
  - Replaying recorded fills and price marks through a portfolio
  - FIFO or LIFO round-trip matching with margin and debt tracking
  - PnL, drawdown and round-trip statistics
  - Journaling transactions, round-trips and equity to CSV or SQLite

Complete documentation is available at https://github.com/rustyeddy/tradebook`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	envFiles []string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default settings when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", []string{".env"}, "dotenv files with TRADEBOOK_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig reads the config file, or the defaults, and applies the
// environment overrides and the --log-level flag.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(envFiles...); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, os.Stderr)
}
