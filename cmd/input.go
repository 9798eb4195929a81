package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/KaramelBytes/plotloom-cli/internal/parser"
	"github.com/KaramelBytes/plotloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

// inputFlags are the loader flags shared by every command that reads a table.
type inputFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
	sampleSize int
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config max_rows)")
	cmd.Flags().IntVar(&f.sampleSize, "sample-size", 0, "rows inspected when inferring column types (0 = config sample_size)")
}

func (f *inputFlags) parserOptions() (parser.Options, error) {
	opt := parser.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex, MaxRows: f.maxRows}
	if opt.MaxRows <= 0 && cfg != nil {
		opt.MaxRows = cfg.MaxRows
	}
	switch strings.ToLower(f.delimiter) {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *inputFlags) analysisOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	if cfg != nil && cfg.SampleSize > 0 {
		opt.SampleSize = cfg.SampleSize
	}
	if f.sampleSize > 0 {
		opt.SampleSize = f.sampleSize
	}
	opt.Logger = logger
	return opt
}

// load reads path and reformats it, logging every column whose values did not
// all convert.
func (f *inputFlags) load(path string) (*analysis.Result, error) {
	popt, err := f.parserOptions()
	if err != nil {
		return nil, err
	}
	t, err := parser.LoadFile(path, popt)
	if err != nil {
		return nil, err
	}
	if t.Dropped > 0 {
		logger.Warn("dropped ragged rows", "file", t.Name, "rows", t.Dropped)
	}
	if len(t.Rows) < t.TotalRows {
		logger.Warn("row limit reached", "file", t.Name, "kept", len(t.Rows), "total", t.TotalRows)
	}
	res, err := analysis.ReFormatData(t.Rows, t.Columns, f.analysisOptions())
	if err != nil {
		return nil, fmt.Errorf("reformat %s: %w", t.Name, err)
	}
	for _, v := range res.Failures() {
		logger.Warn("values failed conversion", "file", t.Name, "column", v.Column,
			"kind", v.Kind, "failed", v.Failed, "first", v.FirstError)
	}
	return res, nil
}

// writeJSON prints v as indented JSON to the command's output, or atomically to
// path when set.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", path)
	return nil
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
