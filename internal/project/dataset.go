package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/plotloom-cli/internal/analysis"
	"github.com/KaramelBytes/plotloom-cli/internal/parser"
	"github.com/google/uuid"
)

// Dataset represents a tabular file registered in a project together with
// the column classification computed when it was added.
type Dataset struct {
	ID          string            `json:"id"`
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Format      string            `json:"format"`
	Rows        int               `json:"rows"`
	Dropped     int               `json:"dropped,omitempty"`
	Columns     []analysis.Column `json:"columns"`
	AddedAt     time.Time         `json:"added_at"`
}

// AddDataset loads a tabular file, classifies its columns and records it.
// Adding the same path again refreshes the existing entry.
func (p *Project) AddDataset(path, description string, popt parser.Options, opt analysis.Options) (*Dataset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	t, err := parser.LoadFile(abs, popt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if p.Config != nil && p.Config.SampleSize > 0 {
		opt.SampleSize = p.Config.SampleSize
	}

	d := &Dataset{
		ID:          uuid.NewString(),
		Path:        abs,
		Name:        filepath.Base(abs),
		Description: description,
		Format:      strings.TrimPrefix(strings.ToLower(filepath.Ext(abs)), "."),
		Rows:        t.TotalRows,
		Dropped:     t.Dropped,
		Columns:     analysis.ClassifyColumns(t.Columns, t.Rows, opt),
		AddedAt:     info.ModTime(),
	}
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	for id, prev := range p.Datasets {
		if prev.Path == abs {
			d.ID = id
			if description == "" {
				d.Description = prev.Description
			}
		}
	}
	p.Datasets[d.ID] = d
	p.UpdatedAt = time.Now()
	return d, nil
}

// RemoveDataset deletes a dataset and every chart saved over it.
func (p *Project) RemoveDataset(ref string) error {
	d, err := p.FindDataset(ref)
	if err != nil {
		return err
	}
	for name, c := range p.Charts {
		if c.DatasetID == d.ID {
			delete(p.Charts, name)
		}
	}
	delete(p.Datasets, d.ID)
	p.UpdatedAt = time.Now()
	return nil
}
