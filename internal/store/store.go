// Package store persists workspaces in SQLite.
//
// The store is deliberately dumb: workspaces go in and come out whole,
// and the resolution engine never touches it. One writer connection
// with WAL mode is enough for a single-user authoring tool.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sqlweave/sqlweave/internal/cte"
	"github.com/sqlweave/sqlweave/internal/workspace"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// ErrWorkspaceNotFound is returned by lookups for ids or names with no
// stored workspace.
var ErrWorkspaceNotFound = errors.New("store: workspace not found")

// Store provides durable storage for sqlweave workspaces.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and
// applies pragmas and schema. Safe to call on an existing database.
//
// Configuration:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//   - single writer connection (SQLite allows only one anyway)
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveWorkspace inserts or replaces a workspace by id. The updated_at
// column is set to now; the name must be unique across workspaces.
func (s *Store) SaveWorkspace(ctx context.Context, ws *workspace.Workspace) error {
	ctesJSON, err := json.Marshal(ws.CTEs)
	if err != nil {
		return fmt.Errorf("save workspace %q: %w", ws.Name, err)
	}
	depsJSON, err := json.Marshal(ws.MainDeps)
	if err != nil {
		return fmt.Errorf("save workspace %q: %w", ws.Name, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	created := ws.CreatedAt.UTC().Format(time.RFC3339Nano)
	if ws.CreatedAt.IsZero() {
		created = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, main, main_deps, ctes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			main = excluded.main,
			main_deps = excluded.main_deps,
			ctes = excluded.ctes,
			updated_at = excluded.updated_at
	`,
		ws.ID,
		ws.Name,
		ws.Main,
		string(depsJSON),
		string(ctesJSON),
		created,
		now,
	)
	if err != nil {
		return fmt.Errorf("save workspace %q: %w", ws.Name, err)
	}
	return nil
}

// GetWorkspace fetches a workspace by id.
func (s *Store) GetWorkspace(ctx context.Context, id string) (*workspace.Workspace, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, main, main_deps, ctes, created_at, updated_at
		FROM workspaces WHERE id = ?
	`, id)
	return scanWorkspace(row)
}

// GetWorkspaceByName fetches a workspace by its unique name.
func (s *Store) GetWorkspaceByName(ctx context.Context, name string) (*workspace.Workspace, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, main, main_deps, ctes, created_at, updated_at
		FROM workspaces WHERE name = ?
	`, name)
	return scanWorkspace(row)
}

// ListWorkspaces returns all workspaces ordered by name, so listings
// are stable across runs.
func (s *Store) ListWorkspaces(ctx context.Context) ([]*workspace.Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, main, main_deps, ctes, created_at, updated_at
		FROM workspaces ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var out []*workspace.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return out, nil
}

// DeleteWorkspace removes a workspace by id. Deleting an unknown id
// returns ErrWorkspaceNotFound.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	if n == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(row rowScanner) (*workspace.Workspace, error) {
	var ws workspace.Workspace
	var depsJSON, ctesJSON, created, updated string

	err := row.Scan(&ws.ID, &ws.Name, &ws.Main, &depsJSON, &ctesJSON, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}

	if err := json.Unmarshal([]byte(depsJSON), &ws.MainDeps); err != nil {
		return nil, fmt.Errorf("decode workspace %q deps: %w", ws.Name, err)
	}
	var ctes []*cte.CTE
	if err := json.Unmarshal([]byte(ctesJSON), &ctes); err != nil {
		return nil, fmt.Errorf("decode workspace %q ctes: %w", ws.Name, err)
	}
	ws.CTEs = ctes

	if ws.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("decode workspace %q created_at: %w", ws.Name, err)
	}
	if ws.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("decode workspace %q updated_at: %w", ws.Name, err)
	}
	return &ws, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}
