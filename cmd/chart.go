package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/KaramelBytes/plotloom-cli/internal/chart"
	"github.com/KaramelBytes/plotloom-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	chInput   inputFlags
	chType    string
	chX       string
	chY       []string
	chColor   string
	chFacet   string
	chAgg     string
	chBucket  string
	chWidth   int
	chHeight  int
	chScheme  string
	chProject string
	chSave    string
	chSaved   string
	chOutput  string
)

var chartCmd = &cobra.Command{
	Use:   "chart [file]",
	Short: "Build a declarative chart spec (JSON) from a table",
	Long: `Build a declarative chart spec from a table.

The selection is given with --type, --x, --y, --color, --facet, --agg and
--bucket. Use --save NAME -p PROJECT to store the selection in a project (the
file is added as a dataset when needed), and --saved NAME -p PROJECT to render a
stored chart again.`,
	Example: `  plotloom chart sales.csv --type bar --x region --y sales,cost --agg sum
  plotloom chart sales.csv --type line --x date --y sales --bucket month --save monthly -p shop
  plotloom chart --saved monthly -p shop`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			p    *project.Project
			path string
			sel  chart.Selection
			err  error
		)
		if chProject != "" || chSave != "" || chSaved != "" {
			if p, err = openProject(chProject); err != nil {
				return err
			}
		}
		if len(args) == 1 {
			path = args[0]
		}
		if chSaved != "" {
			saved, ok := p.Charts[chSaved]
			if !ok {
				return fmt.Errorf("chart %q: %w", chSaved, project.ErrNotFound)
			}
			sel = saved.Selection
			if path == "" {
				d, ok := p.Datasets[saved.DatasetID]
				if !ok {
					return fmt.Errorf("dataset of chart %q: %w", chSaved, project.ErrNotFound)
				}
				path = d.Path
			}
		}
		if path == "" {
			return errors.New("a data file is required unless --saved names a stored chart")
		}
		sel, err = applyChartFlags(cmd, sel)
		if err != nil {
			return err
		}

		res, err := chInput.load(path)
		if err != nil {
			return err
		}
		spec, err := chart.Build(res, sel, chartOptions(cmd, p))
		if err != nil {
			return err
		}
		if chSave != "" {
			if _, err := p.FindDataset(path); errors.Is(err, project.ErrNotFound) {
				popt, err := chInput.parserOptions()
				if err != nil {
					return err
				}
				if _, err := p.AddDataset(path, "", popt, chInput.analysisOptions()); err != nil {
					return err
				}
			}
			c, err := p.AddChart(chSave, path, sel)
			if err != nil {
				return err
			}
			if err := p.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved chart '%s' in project '%s'\n", c.Name, p.Name)
		}
		return writeJSON(cmd, chOutput, spec)
	},
}

// applyChartFlags folds the selection flags that were set into sel.
func applyChartFlags(cmd *cobra.Command, sel chart.Selection) (chart.Selection, error) {
	f := cmd.Flags()
	var actions []chart.Action
	if f.Changed("type") || sel.Type == "" {
		t, err := chart.ParseType(chType)
		if err != nil {
			return sel, err
		}
		actions = append(actions, chart.SetType{Type: t})
	}
	if f.Changed("x") {
		actions = append(actions, chart.SetX{Column: chX})
	}
	if f.Changed("y") {
		actions = append(actions, chart.SetY{Columns: splitList(chY)})
	}
	if f.Changed("color") {
		actions = append(actions, chart.SetColor{Column: chColor})
	}
	if f.Changed("facet") {
		actions = append(actions, chart.SetFacet{Column: chFacet})
	}
	if f.Changed("agg") {
		actions = append(actions, chart.SetAggregation{Type: analysis.ParseAggregationType(chAgg)})
	}
	if f.Changed("bucket") {
		b, err := analysis.ParseTimeBucket(chBucket)
		if err != nil {
			return sel, err
		}
		actions = append(actions, chart.SetBucket{Bucket: b})
	}
	for _, a := range actions {
		sel = chart.Reduce(sel, a)
	}
	return sel, nil
}

// chartOptions layers config, project and flag presentation settings.
func chartOptions(cmd *cobra.Command, p *project.Project) chart.Options {
	opt := chart.DefaultOptions()
	if cfg != nil {
		opt.Width, opt.Height, opt.ColorScheme = cfg.ChartWidth, cfg.ChartHeight, cfg.ColorScheme
	}
	if p != nil && p.Config != nil {
		if p.Config.ChartWidth > 0 {
			opt.Width = p.Config.ChartWidth
		}
		if p.Config.ChartHeight > 0 {
			opt.Height = p.Config.ChartHeight
		}
		if p.Config.ColorScheme != "" {
			opt.ColorScheme = p.Config.ColorScheme
		}
	}
	f := cmd.Flags()
	if f.Changed("width") {
		opt.Width = chWidth
	}
	if f.Changed("height") {
		opt.Height = chHeight
	}
	if f.Changed("scheme") {
		opt.ColorScheme = chScheme
	}
	opt.Logger = logger
	return opt
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chInput.bind(chartCmd)
	chartCmd.Flags().StringVarP(&chType, "type", "t", string(chart.Bar), "chart type: bar|line|scatter|histogram|boxplot")
	chartCmd.Flags().StringVar(&chX, "x", "", "x column")
	chartCmd.Flags().StringSliceVar(&chY, "y", nil, "measure columns (comma-separated or repeatable)")
	chartCmd.Flags().StringVar(&chColor, "color", "", "color column")
	chartCmd.Flags().StringVar(&chFacet, "facet", "", "facet column")
	chartCmd.Flags().StringVar(&chAgg, "agg", "", "aggregation for bar/line: sum|mean|median|min|max|raw")
	chartCmd.Flags().StringVar(&chBucket, "bucket", "", "date bucket for the x column: year|month|week|day")
	chartCmd.Flags().IntVar(&chWidth, "width", 0, "chart width in pixels")
	chartCmd.Flags().IntVar(&chHeight, "height", 0, "chart height in pixels")
	chartCmd.Flags().StringVar(&chScheme, "scheme", "", "color scheme name")
	chartCmd.Flags().StringVarP(&chProject, "project", "p", "", "project for --save/--saved and chart defaults")
	chartCmd.Flags().StringVar(&chSave, "save", "", "store the selection under this name in the project")
	chartCmd.Flags().StringVar(&chSaved, "saved", "", "render a chart stored in the project")
	chartCmd.Flags().StringVarP(&chOutput, "output", "o", "", "write JSON to this path instead of stdout")
}
