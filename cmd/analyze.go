package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/KaramelBytes/plotloom-cli/internal/project"
	"github.com/spf13/cobra"
)

// analyzeFlags are shared by analyze and analyze-batch.
type analyzeFlags struct {
	inputFlags
	project     string
	description string
	sampleRows  int
	groupBy     []string
	corr        bool
	outliers    bool
	outlierThr  float64
}

func (f *analyzeFlags) bind(cmd *cobra.Command) {
	f.inputFlags.bind(cmd)
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "project name to attach the dataset and its summary")
	cmd.Flags().StringVar(&f.description, "desc", "", "description when attaching to project")
	cmd.Flags().IntVar(&f.sampleRows, "sample-rows", 5, "number of sample rows to include")
	cmd.Flags().StringSliceVar(&f.groupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	cmd.Flags().BoolVar(&f.corr, "correlations", false, "compute Pearson correlations among numeric columns")
	cmd.Flags().BoolVar(&f.outliers, "outliers", true, "compute robust outlier counts (MAD)")
	cmd.Flags().Float64Var(&f.outlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}

func (f *analyzeFlags) options() analysis.Options {
	opt := f.analysisOptions()
	if f.sampleRows > 0 {
		opt.SampleRows = f.sampleRows
	}
	opt.GroupBy = splitList(f.groupBy)
	opt.Correlations = f.corr
	opt.Outliers = f.outliers
	if f.outlierThr > 0 {
		opt.OutlierThreshold = f.outlierThr
	}
	return opt
}

// attach records path as a dataset of p and stores md next to project.json.
// Existing summaries are kept; a numeric suffix avoids overwriting them.
func (f *analyzeFlags) attach(p *project.Project, path, md string) (string, error) {
	popt, err := f.parserOptions()
	if err != nil {
		return "", err
	}
	desc := f.description
	if desc == "" {
		desc = "Auto-generated dataset summary"
	}
	if _, err := p.AddDataset(path, desc, popt, f.analysisOptions()); err != nil {
		return "", err
	}
	outDir := filepath.Join(p.RootDir(), "dataset_summaries")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outFile := filepath.Join(outDir, base+".summary.md")
	for idx := 2; ; idx++ {
		if _, err := os.Stat(outFile); os.IsNotExist(err) {
			break
		}
		outFile = filepath.Join(outDir, fmt.Sprintf("%s__%d.summary.md", base, idx))
	}
	if err := os.WriteFile(outFile, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write project summary: %w", err)
	}
	if err := p.Save(); err != nil {
		return "", err
	}
	return outFile, nil
}

var (
	anaFlags      analyzeFlags
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX/JSON table and produce a Markdown summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		popt, err := anaFlags.parserOptions()
		if err != nil {
			return err
		}
		rep, err := analysis.AnalyzeFile(path, popt, anaFlags.options())
		if err != nil {
			return err
		}
		md := rep.Markdown()
		out := cmd.OutOrStdout()

		// Decide where to write: --output path, or attach to project, or stdout
		written := false
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if anaFlags.project != "" {
			p, err := openProject(anaFlags.project)
			if err != nil {
				return err
			}
			outFile, err := anaFlags.attach(p, path, md)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Added analysis to project '%s' as %s\n", p.Name, filepath.Base(outFile))
			written = true
		}
		if !written {
			fmt.Fprintln(out, md)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
}
