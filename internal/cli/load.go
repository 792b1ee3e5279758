package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlweave/sqlweave/internal/cte"
	"github.com/sqlweave/sqlweave/internal/decompose"
	"github.com/sqlweave/sqlweave/internal/workspace"
)

// loadSource turns an input file into a workspace plus its engine
// mapping. Workspace YAML files (.yaml/.yml) load directly; anything
// else is read as raw SQL and decomposed first, so every command
// accepts both forms.
func loadSource(path string) (*workspace.Workspace, cte.Mapping, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		ws, err := workspace.Load(path)
		if err != nil {
			return nil, nil, err
		}
		m, err := ws.Mapping()
		if err != nil {
			return nil, nil, err
		}
		return ws, m, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		d, err := decompose.Decompose(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("decompose %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return workspace.FromDecomposition(name, d), d.CTEs, nil
	}
}
