package cmd

import (
	"fmt"

	"github.com/KaramelBytes/plotloom-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	pmProject    string
	pmClear      bool
	pmWidth      int
	pmHeight     int
	pmScheme     string
	pmSampleSize int
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project settings, datasets and charts",
}

var projectSetDefaultsCmd = &cobra.Command{
	Use:   "set-defaults",
	Short: "Set or clear a project's chart size, color scheme and sample size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(pmProject)
		if err != nil {
			return err
		}
		if p.Config == nil || pmClear {
			p.Config = &project.ProjectConfig{}
		}
		f := cmd.Flags()
		if f.Changed("width") {
			p.Config.ChartWidth = pmWidth
		}
		if f.Changed("height") {
			p.Config.ChartHeight = pmHeight
		}
		if f.Changed("scheme") {
			p.Config.ColorScheme = pmScheme
		}
		if f.Changed("sample-size") {
			p.Config.SampleSize = pmSampleSize
		}
		if err := p.Save(); err != nil {
			return err
		}
		c := p.Config
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Project defaults for %s: width=%d height=%d scheme=%q sample_size=%d\n",
			p.Name, c.ChartWidth, c.ChartHeight, c.ColorScheme, c.SampleSize)
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a Markdown summary of a project's datasets and charts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(pmProject)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), p.Summary())
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <dataset|chart> <ref>",
	Short: "Remove a dataset (with its charts) or a saved chart",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(pmProject)
		if err != nil {
			return err
		}
		switch args[0] {
		case "dataset":
			err = p.RemoveDataset(args[1])
		case "chart":
			err = p.RemoveChart(args[1])
		default:
			return fmt.Errorf("unknown kind %q (use dataset or chart)", args[0])
		}
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetDefaultsCmd, projectShowCmd, projectRemoveCmd)

	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name (defaults to the enclosing project directory)")
	projectSetDefaultsCmd.Flags().BoolVar(&pmClear, "clear", false, "clear all overrides before applying flags")
	projectSetDefaultsCmd.Flags().IntVar(&pmWidth, "width", 0, "chart width in pixels (0 inherits)")
	projectSetDefaultsCmd.Flags().IntVar(&pmHeight, "height", 0, "chart height in pixels (0 inherits)")
	projectSetDefaultsCmd.Flags().StringVar(&pmScheme, "scheme", "", "color scheme (empty inherits)")
	projectSetDefaultsCmd.Flags().IntVar(&pmSampleSize, "sample-size", 0, "rows inspected when classifying added datasets (0 inherits)")
}
