package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	addProjectName string
	addDesc        string
	addInput       inputFlags
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a dataset to a project and record its column types",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(addProjectName)
		if err != nil {
			return err
		}
		popt, err := addInput.parserOptions()
		if err != nil {
			return err
		}
		d, err := p.AddDataset(args[0], addDesc, popt, addInput.analysisOptions())
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dataset added: %s (%d rows; %s)\n", d.Name, d.Rows, columnTypes(d.Columns))
		if d.Dropped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "⚠ Dropped %d rows whose length did not match the header\n", d.Dropped)
		}
		return nil
	},
}

// columnTypes renders "title:type" pairs, using the date granularity for dates.
func columnTypes(cols []analysis.Column) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		kind := string(c.ColType)
		if c.IsDate {
			kind = string(c.DateType)
		}
		parts = append(parts, c.Title+":"+kind)
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addProjectName, "project", "p", "", "project name (defaults to the enclosing project directory)")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "dataset description")
	addInput.bind(addCmd)
}
