package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is a decoded tabular file: ordered column names and fixed-width rows.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
	// TotalRows counts every data row seen, including rows past MaxRows.
	TotalRows int
	// Dropped counts ragged rows removed by Sanitize.
	Dropped int
}

// Options controls how tabular files are decoded.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the header line (or '\t' for .tsv).
	Delimiter rune
	// XLSX sheet selection. SheetIndex is 1-based; used when SheetName is empty.
	SheetName  string
	SheetIndex int
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
}

// Parser decodes one tabular format.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte, opt Options) (*Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported tabular format")

// LoadFile selects a parser by filename, decodes the file and sanitizes the result.
func LoadFile(path string, opt Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if opt.Delimiter == 0 && strings.HasSuffix(strings.ToLower(path), ".tsv") {
		opt.Delimiter = '\t'
	}
	for _, p := range registry {
		if !p.CanParse(path) {
			continue
		}
		t, err := p.Parse(data, opt)
		if err != nil {
			return nil, err
		}
		t.Name = filepath.Base(path)
		Sanitize(t)
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Supported reports whether any registered parser accepts the filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
}

// keepRow applies MaxRows while still counting the row.
func keepRow(t *Table, opt Options) bool {
	t.TotalRows++
	return opt.MaxRows <= 0 || len(t.Rows) < opt.MaxRows
}
