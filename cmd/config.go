package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/plotloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set plotloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "sample_size: %d\n", cfg.SampleSize)
		fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(out, "color_scheme: %s\n", cfg.ColorScheme)
		fmt.Fprintf(out, "default_aggregation: %s\n", cfg.DefaultAggregation)
		fmt.Fprintf(out, "projects_dir: %s\n", cfg.ProjectsDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		nonNegative := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return 0, fmt.Errorf("invalid non-negative int for %s: %v", key, val)
			}
			return i, nil
		}
		var err error
		switch key {
		case "sample_size":
			cfg.SampleSize, err = nonNegative()
		case "max_rows":
			cfg.MaxRows, err = nonNegative()
		case "chart_width":
			cfg.ChartWidth, err = nonNegative()
		case "chart_height":
			cfg.ChartHeight, err = nonNegative()
		case "color_scheme":
			cfg.ColorScheme = val
		case "default_aggregation":
			agg := analysis.ParseAggregationType(val)
			switch agg {
			case analysis.AggSum, analysis.AggMean, analysis.AggMedian, analysis.AggMin, analysis.AggMax, analysis.AggRaw:
				cfg.DefaultAggregation = string(agg)
			default:
				return fmt.Errorf("invalid default_aggregation: %s: %w", val, analysis.ErrUnknownAggregation)
			}
		case "projects_dir":
			cfg.ProjectsDir = val
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s (known: %v)", key, cfgpkg.Keys)
		}
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
