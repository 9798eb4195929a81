package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/plotloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger is replaced by loadConfig once flags are parsed.
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "plotloom",
	Short: "plotloom CLI: classify tabular data and reshape it into chart-ready JSON",
	Long: `plotloom loads CSV, TSV, XLSX and JSON tables, infers column types (dates, integers,
decimals, categories), reformats rows, aggregates and pivots them, and assembles
declarative chart specifications. Datasets and saved charts can be kept in projects.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.plotloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	} else {
		cfg = c
	}
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case logLevel != "":
		level = cfgpkg.ParseLevel(logLevel)
	case cfg != nil:
		level = cfgpkg.ParseLevel(cfg.LogLevel)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "config", cfgFile, "level", level.String())
}
