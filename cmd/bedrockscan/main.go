package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/bedrockscan/internal/config"
	"github.com/everstacklabs/bedrockscan/internal/scan"
)

var cfgFile string

func main() {
	var (
		output   string
		errorLog string
		limit    int
	)

	rootCmd := &cobra.Command{
		Use:          "bedrockscan",
		Short:        "Bedrock model compatibility matrix generator",
		Long:         "Discovers foundation models from bedrock-runtime and bedrock-mantle, classifies their inference profiles, probes every model across the four API variants, and writes a CSV compatibility matrix with an error log.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			if cmd.Flags().Changed("error-log") {
				cfg.ErrorLog = errorLog
			}
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
			}

			setupLogging(cfg.LogLevel)

			scanner, err := scan.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if _, err := scanner.Run(cmd.Context()); err != nil {
				slog.Error("scan failed", "error", err)
				os.Exit(scan.ExitCode(err))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.Flags().StringVar(&output, "output", "bedrock_compatibility_matrix.csv", "output CSV path")
	rootCmd.Flags().StringVar(&errorLog, "error-log", "bedrock_errors.log", "error log path")
	rootCmd.Flags().IntVar(&limit, "limit", -1, "limit number of models to test (negative: unlimited)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
