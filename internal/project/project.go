package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/plotloom-cli/internal/chart"
	"github.com/KaramelBytes/plotloom-cli/internal/utils"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a dataset or chart reference matches nothing.
var ErrNotFound = errors.New("not found")

// Project represents a plotloom project persisted on disk.
type Project struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Datasets    map[string]*Dataset    `json:"datasets"`
	Charts      map[string]*SavedChart `json:"charts"`
	Config      *ProjectConfig         `json:"config"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// ProjectConfig overrides global chart and sampling defaults. Zero values inherit.
type ProjectConfig struct {
	ChartWidth  int    `json:"chart_width,omitempty"`
	ChartHeight int    `json:"chart_height,omitempty"`
	ColorScheme string `json:"color_scheme,omitempty"`
	SampleSize  int    `json:"sample_size,omitempty"`
}

// SavedChart is a named chart selection over one of the project's datasets.
type SavedChart struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	DatasetID string          `json:"dataset_id"`
	Selection chart.Selection `json:"selection"`
	SavedAt   time.Time       `json:"saved_at"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Datasets:    make(map[string]*Dataset),
		Charts:      make(map[string]*SavedChart),
		Config:      &ProjectConfig{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, utils.ProjectFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	if p.Charts == nil {
		p.Charts = make(map[string]*SavedChart)
	}
	if p.Config == nil {
		p.Config = &ProjectConfig{}
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureProjectDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, utils.ProjectFile), data)
}

// FindDataset resolves a dataset by ID, path, or file name, in that order.
func (p *Project) FindDataset(ref string) (*Dataset, error) {
	if d, ok := p.Datasets[ref]; ok {
		return d, nil
	}
	ids := p.DatasetIDs()
	if abs, err := filepath.Abs(ref); err == nil {
		for _, id := range ids {
			if p.Datasets[id].Path == abs {
				return p.Datasets[id], nil
			}
		}
	}
	for _, id := range ids {
		if strings.EqualFold(p.Datasets[id].Name, filepath.Base(ref)) {
			return p.Datasets[id], nil
		}
	}
	return nil, fmt.Errorf("dataset %q: %w", ref, ErrNotFound)
}

// AddChart stores sel under name. Saving under an existing name replaces the
// selection and keeps the chart's ID.
func (p *Project) AddChart(name, datasetRef string, sel chart.Selection) (*SavedChart, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("chart name is required")
	}
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("chart %s: %w", name, err)
	}
	d, err := p.FindDataset(datasetRef)
	if err != nil {
		return nil, err
	}
	if p.Charts == nil {
		p.Charts = make(map[string]*SavedChart)
	}
	c, ok := p.Charts[name]
	if !ok {
		c = &SavedChart{ID: uuid.NewString(), Name: name}
		p.Charts[name] = c
	}
	c.DatasetID = d.ID
	c.Selection = chart.Reduce(sel, nil)
	c.SavedAt = time.Now()
	p.UpdatedAt = time.Now()
	return c, nil
}

// RemoveChart deletes a saved chart by name.
func (p *Project) RemoveChart(name string) error {
	if _, ok := p.Charts[name]; !ok {
		return fmt.Errorf("chart %q: %w", name, ErrNotFound)
	}
	delete(p.Charts, name)
	p.UpdatedAt = time.Now()
	return nil
}

// Summary renders the project's datasets and charts as Markdown.
func (p *Project) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", p.Description)
	}
	sb.WriteString("\n## Datasets\n\n")
	if len(p.Datasets) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, id := range p.DatasetIDs() {
		d := p.Datasets[id]
		fmt.Fprintf(&sb, "- %s (%s, %d rows, %d columns)", d.Name, d.Format, d.Rows, len(d.Columns))
		if d.Description != "" {
			fmt.Fprintf(&sb, ": %s", d.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n## Charts\n\n")
	if len(p.Charts) == 0 {
		sb.WriteString("(none)\n")
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
		fmt.Fprintf(&sb, "- %s: %s of %s by %s on %s\n", c.Name, c.Selection.Type, strings.Join(c.Selection.Y, ", "), c.Selection.X, ds)
	}
	return sb.String()
}

// DatasetIDs returns dataset IDs ordered by the time they were added.
func (p *Project) DatasetIDs() []string {
	ids := make([]string, 0, len(p.Datasets))
	for id := range p.Datasets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := p.Datasets[ids[i]], p.Datasets[ids[j]]
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.Before(b.AddedAt)
		}
		return ids[i] < ids[j]
	})
	return ids
}
