package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/KaramelBytes/plotloom-cli/internal/parser"
	"github.com/KaramelBytes/plotloom-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	abFlags analyzeFlags
	abQuiet bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple tables with progress and optional project attachment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		popt, err := abFlags.parserOptions()
		if err != nil {
			return err
		}
		opt := abFlags.options()

		var p *project.Project
		if abFlags.project != "" {
			if p, err = openProject(abFlags.project); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := analysis.AnalyzeFile(path, popt, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			md := rep.Markdown()
			if p == nil {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			outFile, err := abFlags.attach(p, path, md)
			if err != nil {
				return err
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Added analysis to project '%s' as %s\n", p.Name, filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and files no parser accepts, and sorts the result.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			if !parser.Supported(m) {
				logger.Warn("skipping unsupported file", "file", m)
				continue
			}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.bind(analyzeBatchCmd)
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
