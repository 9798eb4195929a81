package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/KaramelBytes/plotloom-cli/internal/project"
)

const salesCSV = "date,region,sales,cost\n" +
	"2023-01-01,east,10,4\n" +
	"2023-01-15,west,20,6\n" +
	"2023-02-01,east,5,2\n" +
	"2023-02-10,east,7,3\n"

// resetFlags restores every flag to its default; cobra keeps flag state
// between Execute calls on the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

// setupHome isolates config and projects under a temp HOME and writes the
// sales fixture there.
func setupHome(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	cfg = nil
	csvPath = filepath.Join(home, "sales.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(salesCSV), 0o644))
	return home, csvPath
}

func TestCLI_InitAddListChart(t *testing.T) {
	_, csvPath := setupHome(t)

	mustRun(t, "init", "shop", "-d", "shop numbers")
	_, err := runCmd(t, "init", "shop")
	assert.Error(t, err, "init must refuse an existing project")

	out := mustRun(t, "add", "-p", "shop", csvPath, "--desc", "weekly export")
	assert.Contains(t, out, "✓ Dataset added: sales.csv (4 rows; date:date, region:string, sales:integer, cost:integer)")

	out = mustRun(t, "list", "--datasets", "-p", "shop")
	assert.Contains(t, out, "sales.csv (4 rows;")
	assert.Contains(t, out, "weekly export")

	out = mustRun(t, "list", "--projects")
	assert.Contains(t, out, "- shop")

	out = mustRun(t, "chart", csvPath, "--x", "region", "--y", "sales", "--agg", "sum", "--save", "by-region", "-p", "shop")
	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &spec))
	assert.Equal(t, "bar", spec["type"])

	out = mustRun(t, "list", "--charts", "-p", "shop")
	assert.Contains(t, out, "- by-region: bar x=region y=sales (sales.csv)")

	out = mustRun(t, "chart", "--saved", "by-region", "-p", "shop", "--width", "720")
	spec = nil
	require.NoError(t, json.Unmarshal([]byte(out), &spec))
	assert.Equal(t, "bar", spec["type"])
	assert.Equal(t, 720.0, spec["width"])

	_, err = runCmd(t, "list", "--datasets", "--charts", "-p", "shop")
	assert.Error(t, err)
}

func TestCLI_ProjectDefaultsApplyToCharts(t *testing.T) {
	_, csvPath := setupHome(t)
	mustRun(t, "init", "shop")
	mustRun(t, "project", "set-defaults", "-p", "shop", "--width", "1000", "--scheme", "set2")

	out := mustRun(t, "chart", csvPath, "-t", "line", "--x", "date", "--y", "sales", "-p", "shop")
	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &spec))
	assert.Equal(t, 1000.0, spec["width"])
	assert.Equal(t, 400.0, spec["height"])

	dir, err := resolveProjectDirByName("shop")
	require.NoError(t, err)
	p, err := project.LoadProject(dir)
	require.NoError(t, err)
	assert.Equal(t, "set2", p.Config.ColorScheme)

	out = mustRun(t, "project", "show", "-p", "shop")
	assert.Contains(t, out, "# shop")
}

func TestCLI_Reformat(t *testing.T) {
	_, csvPath := setupHome(t)

	out := mustRun(t, "reformat", csvPath)
	var res struct {
		NewCols  []map[string]any `json:"newCols"`
		NewRows  []map[string]any `json:"newRows"`
		Validity []map[string]any `json:"validity"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.NewCols, 5)
	assert.Equal(t, "index", res.NewCols[4]["dataIndex"])
	require.Len(t, res.NewRows, 4)
	unix := res.NewRows[0]["unixDateValues"].(map[string]any)
	assert.Equal(t, 1672531200.0, unix["date"])
	assert.Equal(t, "0", res.NewRows[0]["key"])
	assert.Len(t, res.Validity, 3)
}

func TestCLI_Aggregate(t *testing.T) {
	_, csvPath := setupHome(t)

	out := mustRun(t, "aggregate", csvPath, "--group-by", "month=date:month", "--value", "sales", "--agg", "sum")
	var groups []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "2023-01", groups[0]["month"])
	assert.Equal(t, 30.0, groups[0]["value"])
	assert.Equal(t, "2023-02", groups[1]["month"])
	assert.Equal(t, 12.0, groups[1]["value"])

	out = mustRun(t, "aggregate", csvPath, "--group-by", "region", "--value", "cost", "--agg", "max", "--stats")
	groups = nil
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "east", groups[0]["region"])
	assert.Equal(t, 4.0, groups[0]["value"])
	assert.Contains(t, groups[0], "stats")

	_, err := runCmd(t, "aggregate", csvPath, "--group-by", "region", "--value", "sales", "--agg", "mode")
	assert.ErrorIs(t, err, analysis.ErrUnknownAggregation)

	_, err = runCmd(t, "aggregate", csvPath, "--group-by", "region:month", "--value", "sales")
	assert.Error(t, err)
}

func TestCLI_Pivot(t *testing.T) {
	_, csvPath := setupHome(t)

	out := mustRun(t, "pivot", csvPath, "--x", "region", "--y", "sales,cost")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 8)
	assert.Equal(t, "sales", rows[0][analysis.LabelField])
	assert.Equal(t, 10.0, rows[0][analysis.ValueField])
	assert.Equal(t, "cost", rows[1][analysis.LabelField])
	assert.Equal(t, 4.0, rows[1][analysis.ValueField])
	assert.Equal(t, 1.0, rows[1][analysis.FacetIndexField])

	_, err := runCmd(t, "pivot", csvPath, "--x", "region", "--y", "nope")
	assert.Error(t, err)
}

func TestCLI_Analyze(t *testing.T) {
	home, csvPath := setupHome(t)

	out := mustRun(t, "analyze", csvPath)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "- date: datetime")

	mdPath := filepath.Join(home, "report.md")
	out = mustRun(t, "analyze", csvPath, "-o", mdPath)
	assert.Contains(t, out, "✓ Wrote analysis to")
	b, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[SCHEMA]")
}

func TestCLI_AnalyzeBatchAttach(t *testing.T) {
	home, _ := setupHome(t)

	// Two files with the same basename in different directories
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	for _, d := range []string{"d1", "d2"} {
		dir := filepath.Join(home, d)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "metrics.csv"), []byte(csv), 0o644))
	}

	mustRun(t, "init", "batchp", "-d", "batch project")
	mustRun(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "-p", "batchp", "--quiet")

	projDir, err := resolveProjectDirByName("batchp")
	require.NoError(t, err)
	dsDir := filepath.Join(projDir, "dataset_summaries")
	assert.FileExists(t, filepath.Join(dsDir, "metrics.summary.md"))
	assert.FileExists(t, filepath.Join(dsDir, "metrics__2.summary.md"))

	p, err := project.LoadProject(projDir)
	require.NoError(t, err)
	assert.Len(t, p.Datasets, 2)

	_, err = runCmd(t, "analyze-batch", filepath.Join(home, "nothing*.csv"))
	assert.Error(t, err)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	setupHome(t)

	mustRun(t, "config", "set", "chart_width", "900")
	mustRun(t, "config", "set", "default_aggregation", "avg")
	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "chart_width: 900")
	assert.Contains(t, out, "default_aggregation: mean")

	_, err := runCmd(t, "config", "set", "default_aggregation", "mode")
	assert.ErrorIs(t, err, analysis.ErrUnknownAggregation)
	_, err = runCmd(t, "config", "set", "chart_width", "-1")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "api_key", "x")
	assert.Error(t, err)
}
