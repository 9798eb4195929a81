package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/plotloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	listProjects bool
	listDatasets bool
	listCharts   bool
	listProjName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, datasets or saved charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		selected := 0
		for _, b := range []bool{listProjects, listDatasets, listCharts} {
			if b {
				selected++
			}
		}
		if selected != 1 {
			return fmt.Errorf("specify exactly one of --projects, --datasets or --charts")
		}
		out := cmd.OutOrStdout()
		if listProjects {
			return listAllProjects(out)
		}
		p, err := openProject(listProjName)
		if err != nil {
			return err
		}
		if listDatasets {
			if len(p.Datasets) == 0 {
				fmt.Fprintln(out, "(no datasets)")
				return nil
			}
			for _, id := range p.DatasetIDs() {
				d := p.Datasets[id]
				fmt.Fprintf(out, "- %s: %s (%d rows; %s)", d.ID, d.Name, d.Rows, columnTypes(d.Columns))
				if d.Description != "" {
					fmt.Fprintf(out, " %s", d.Description)
				}
				fmt.Fprintln(out)
			}
			return nil
		}
		if len(p.Charts) == 0 {
			fmt.Fprintln(out, "(no charts)")
			return nil
		}
		names := make([]string, 0, len(p.Charts))
		for n := range p.Charts {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			c := p.Charts[n]
			ds := c.DatasetID
			if d, ok := p.Datasets[c.DatasetID]; ok {
				ds = d.Name
			}
			fmt.Fprintf(out, "- %s: %s x=%s y=%s (%s)\n", c.Name, c.Selection.Type, c.Selection.X, strings.Join(c.Selection.Y, ","), ds)
		}
		return nil
	},
}

func listAllProjects(out io.Writer) error {
	root, err := defaultProjectsDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), utils.ProjectFile)); err == nil {
			fmt.Fprintf(out, "- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Fprintln(out, "(no projects)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listProjects, "projects", false, "list projects")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a project")
	listCmd.Flags().BoolVar(&listCharts, "charts", false, "list saved charts in a project")
	listCmd.Flags().StringVarP(&listProjName, "project", "p", "", "project name for --datasets/--charts")
}
