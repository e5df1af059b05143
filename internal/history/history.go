package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dashlab/labctl/internal/models"
)

// Store defines the run history operations
type Store interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Run operations
	CreateRun(ctx context.Context, run *models.Run) error
	FinishRun(ctx context.Context, id string, status models.RunStatus, exitCode int, errMsg string) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, int, error)
}

// SQLite implements the Store interface for SQLite
type SQLite struct {
	db   *sql.DB
	path string
}

// New creates a new SQLite history store
func New(path string) *SQLite {
	return &SQLite{path: path}
}

// Connect opens the SQLite database, creating the schema if needed
func (s *SQLite) Connect(ctx context.Context) error {
	// Expand the path (handle ~ and relative paths)
	dbPath := s.path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database at path '%s': %w", dbPath, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping history database at path '%s': %w", dbPath, err)
	}

	s.db = db

	if err := s.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for migrations
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// createTables creates necessary tables
func (s *SQLite) createTables(ctx context.Context) error {
	createRunsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		environment TEXT,
		action TEXT NOT NULL,
		services TEXT, -- JSON array of service names
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);`

	createIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);",
		"CREATE INDEX IF NOT EXISTS idx_runs_environment ON runs(environment);",
		"CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);",
	}

	queries := append([]string{createRunsTable}, createIndexes...)
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// CreateRun inserts a new run record
func (s *SQLite) CreateRun(ctx context.Context, run *models.Run) error {
	services, err := json.Marshal(run.Services)
	if err != nil {
		return fmt.Errorf("failed to marshal services: %w", err)
	}

	query := `
	INSERT INTO runs (id, environment, action, services, status, exit_code, error, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.Environment, run.Action, string(services),
		string(run.Status), run.ExitCode, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// FinishRun marks a run as finished with its terminal status
func (s *SQLite) FinishRun(ctx context.Context, id string, status models.RunStatus, exitCode int, errMsg string) error {
	now := time.Now().UTC()

	query := `UPDATE runs SET status = ?, exit_code = ?, error = ?, finished_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, string(status), exitCode, errMsg, now, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// GetRun retrieves a run by ID
func (s *SQLite) GetRun(ctx context.Context, id string) (*models.Run, error) {
	query := `
	SELECT id, environment, action, services, status, exit_code, error, started_at, finished_at
	FROM runs WHERE id = ?`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns runs ordered by start time, newest first, along with the
// total run count for pagination.
func (s *SQLite) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	query := `
	SELECT id, environment, action, services, status, exit_code, error, started_at, finished_at
	FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, total, nil
}

// scanner matches both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*models.Run, error) {
	var run models.Run
	var environment, services, errMsg sql.NullString
	var status string
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &environment, &run.Action, &services,
		&status, &run.ExitCode, &errMsg, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.Environment = environment.String
	run.Status = models.RunStatus(status)
	run.Error = errMsg.String
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	if services.Valid && services.String != "" {
		if err := json.Unmarshal([]byte(services.String), &run.Services); err != nil {
			return nil, fmt.Errorf("failed to unmarshal services: %w", err)
		}
	}

	return &run, nil
}
