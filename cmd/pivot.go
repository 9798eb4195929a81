package cmd

import (
	"fmt"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	pvInput  inputFlags
	pvX      string
	pvY      []string
	pvColor  string
	pvFacet  string
	pvOutput string
)

var pivotCmd = &cobra.Command{
	Use:   "pivot <file>",
	Short: "Convert wide rows to long format, one row per (row, y column)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pvInput.load(args[0])
		if err != nil {
			return err
		}
		resolve := func(flag, name string) (string, error) {
			if name == "" {
				return "", nil
			}
			c, ok := res.Column(name)
			if !ok {
				return "", fmt.Errorf("unknown --%s column: %s", flag, name)
			}
			return c.DataIndex, nil
		}
		x, err := resolve("x", pvX)
		if err != nil {
			return err
		}
		ys := splitList(pvY)
		if len(ys) == 0 {
			return fmt.Errorf("--y is required")
		}
		for i, y := range ys {
			if ys[i], err = resolve("y", y); err != nil {
				return err
			}
		}
		color, err := resolve("color", pvColor)
		if err != nil {
			return err
		}
		facet, err := resolve("facet", pvFacet)
		if err != nil {
			return err
		}
		return writeJSON(cmd, pvOutput, analysis.ConvertWideToLong(res.Rows, x, ys, color, facet))
	},
}

func init() {
	rootCmd.AddCommand(pivotCmd)
	pvInput.bind(pivotCmd)
	pivotCmd.Flags().StringVar(&pvX, "x", "", "x column")
	pivotCmd.Flags().StringSliceVar(&pvY, "y", nil, "y columns to melt (comma-separated or repeatable)")
	pivotCmd.Flags().StringVar(&pvColor, "color", "", "column combined into the series name")
	pivotCmd.Flags().StringVar(&pvFacet, "facet", "", "facet column for the running index")
	pivotCmd.Flags().StringVarP(&pvOutput, "output", "o", "", "write JSON to this path instead of stdout")
}
