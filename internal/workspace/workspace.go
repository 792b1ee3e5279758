// Package workspace defines the persistent editing unit of sqlweave: a
// named main query plus the CTE fragments it was decomposed into.
// Workspaces round-trip through YAML files for editing and through the
// store for the workspace commands.
package workspace

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sqlweave/sqlweave/internal/cte"
	"github.com/sqlweave/sqlweave/internal/decompose"
)

// Workspace is one decomposed statement under editing.
//
// CTEs is a slice, not a mapping, so the file format preserves the
// order the author (or the original WITH list) declared; Mapping()
// converts to engine form per call.
type Workspace struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Main      string     `yaml:"main" json:"main"`
	MainDeps  []string   `yaml:"main_deps,omitempty" json:"main_deps,omitempty"`
	CTEs      []*cte.CTE `yaml:"ctes,omitempty" json:"ctes,omitempty"`
	CreatedAt time.Time  `yaml:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time  `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// New creates an empty workspace with a fresh UUIDv7 identifier.
// UUIDv7 keeps store listings in creation order when sorted by id.
func New(name string) *Workspace {
	now := time.Now().UTC()
	return &Workspace{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EnsureID assigns a fresh id to hand-authored workspaces that have
// none. Existing ids are kept so re-saving stays an update.
func (w *Workspace) EnsureID() {
	if w.ID == "" {
		w.ID = uuid.Must(uuid.NewV7()).String()
	}
}

// FromDecomposition builds a workspace from a decomposed statement,
// keeping the WITH-list declaration order.
func FromDecomposition(name string, d *decompose.Decomposition) *Workspace {
	ws := New(name)
	ws.Main = d.Main.Query
	ws.MainDeps = d.Main.Dependencies
	for _, cteName := range d.Order {
		ws.CTEs = append(ws.CTEs, d.CTEs[cteName])
	}
	return ws
}

// Mapping converts the CTE slice to engine form. Duplicate or empty
// names cannot key a mapping and are rejected here, before any
// traversal sees them.
func (w *Workspace) Mapping() (cte.Mapping, error) {
	m := make(cte.Mapping, len(w.CTEs))
	for _, c := range w.CTEs {
		if c.Name == "" {
			return nil, fmt.Errorf("workspace %q: cte with empty name", w.Name)
		}
		if _, dup := m[c.Name]; dup {
			return nil, fmt.Errorf("workspace %q: duplicate cte name %q", w.Name, c.Name)
		}
		m[c.Name] = c
	}
	return m, nil
}

// Load reads a workspace YAML file.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var ws Workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", path, err)
	}
	if _, err := ws.Mapping(); err != nil {
		return nil, err
	}
	return &ws, nil
}

// Save writes the workspace to a YAML file, bumping UpdatedAt.
func (w *Workspace) Save(path string) error {
	w.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workspace %q: %w", w.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workspace: %w", err)
	}
	return nil
}
