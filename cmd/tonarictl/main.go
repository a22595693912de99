package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonari-app/tonari/internal/core/config"
	"github.com/tonari-app/tonari/internal/logger"
)

var (
	jsonfmt  bool
	logLevel string
)

// RootCmd is the tonarictl entry point.
var RootCmd = &cobra.Command{
	Use:           "tonarictl",
	Short:         "Inspect the facility feeds and client routes the gateway serves",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&jsonfmt, "json", "j", false, "print JSON instead of text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for upstream calls")
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tonarictl:", err)
		os.Exit(1)
	}
}

// setup reads the gateway configuration and a stderr logger.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	zl := logger.Build(logger.Config{Level: logLevel, Console: true, Service: "tonarictl"}, os.Stderr)
	return cfg, logger.NewSlog(&zl), nil
}
