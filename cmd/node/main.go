package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gocuria/config"
	"gocuria/node"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gocuria",
		Short: "gocuria - a proof-of-work ledger node",
		Long: `gocuria runs a single ledger node: it keeps a chain of proof-of-work blocks,
a pool of signed pending transactions and a set of peers it exchanges blocks,
transactions and chains with over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(keysCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig merges defaults, config file, environment and flags, then sets
// up the pterm-backed logger.
func initConfig(cmd *cobra.Command, args []string) error {
	v := config.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	configFile, _ := cmd.Flags().GetString("config")

	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}

	ptermLogger := pterm.DefaultLogger.WithLevel(logLevel(cfg.LogLevel))
	logger = slog.New(pterm.NewSlogHandler(ptermLogger))
	slog.SetDefault(logger)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}

func logLevel(level string) pterm.LogLevel {
	switch level {
	case "debug":
		return pterm.LogLevelDebug
	case "warn":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the node's HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := node.NewFullNode(cfg, logger)
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() { errc <- n.Start() }()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errc:
				n.Stop(context.Background())
				return fmt.Errorf("serve: %w", err)
			case <-sig:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return n.Stop(ctx)
		},
	}
}
