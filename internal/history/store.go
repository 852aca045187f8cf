// Package history keeps every recorded assessment run in SQLite so runs can
// be listed, compared and replayed.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"floorsense/internal/assess"
	"floorsense/internal/rating"
)

// ErrRunNotFound is returned when no run matches an id or prefix.
var ErrRunNotFound = errors.New("run not found")

// Store manages assessment history in SQLite.
type Store struct {
	DBPath string
	db     *sql.DB
}

// Run is one recorded assessment.
type Run struct {
	ID              string
	Layout          string
	LayoutHash      string
	Source          string
	EfficiencyScore float64
	SafetyScore     float64
	SafetyLevel     rating.SafetyLevel
	CreatedAt       time.Time
	ReportJSON      string
}

// Report decodes the stored report.
func (r Run) Report() (assess.Report, error) {
	var rep assess.Report
	if err := json.Unmarshal([]byte(r.ReportJSON), &rep); err != nil {
		return assess.Report{}, fmt.Errorf("decode report of run %s: %w", r.ID, err)
	}
	return rep, nil
}

// Open opens or creates the history database.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve history db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	store := &Store{DBPath: absPath, db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	layout TEXT NOT NULL,
	layout_hash TEXT NOT NULL,
	source TEXT NOT NULL,
	efficiency_score REAL NOT NULL,
	safety_score REAL NOT NULL,
	safety_level TEXT NOT NULL,
	created_at TEXT NOT NULL,
	report_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_layout_created ON runs(layout, created_at);

CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// Record stores a report under a fresh run id and returns the run.
func (s *Store) Record(report assess.Report, layoutHash, source string) (*Run, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	createdAt := report.AssessedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	run := &Run{
		ID:              uuid.NewString(),
		Layout:          report.Layout,
		LayoutHash:      layoutHash,
		Source:          source,
		EfficiencyScore: report.Efficiency.OverallScore,
		SafetyScore:     report.Safety.OverallScore,
		SafetyLevel:     report.Safety.SafetyLevel,
		CreatedAt:       createdAt.UTC(),
		ReportJSON:      string(reportJSON),
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, layout, layout_hash, source, efficiency_score, safety_score,
		                  safety_level, created_at, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Layout, run.LayoutHash, run.Source, run.EfficiencyScore, run.SafetyScore,
		string(run.SafetyLevel), run.CreatedAt.Format(time.RFC3339Nano), run.ReportJSON)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Get returns the run whose id equals idOrPrefix or, failing that, the
// single run whose id starts with it.
func (s *Store) Get(idOrPrefix string) (*Run, error) {
	runs, err := s.query("SELECT "+runColumns+" FROM runs WHERE id = ?", idOrPrefix)
	if err != nil {
		return nil, err
	}
	if len(runs) == 1 {
		return &runs[0], nil
	}

	if idOrPrefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	runs, err = s.query("SELECT "+runColumns+" FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2",
		len(idOrPrefix), idOrPrefix)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", idOrPrefix)
	}
}

func (s *Store) query(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// List returns up to limit runs, newest first, optionally for one layout.
func (s *Store) List(layoutName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + runColumns + " FROM runs"
	args := []any{}
	if layoutName != "" {
		query += " WHERE layout = ?"
		args = append(args, layoutName)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	return s.query(query, args...)
}

// Latest returns the newest run of a layout, or nil when there is none.
func (s *Store) Latest(layoutName string) (*Run, error) {
	runs, err := s.List(layoutName, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

const runColumns = `id, layout, layout_hash, source, efficiency_score, safety_score,
		       safety_level, created_at, report_json`

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var run Run
		var level, createdAt string
		if err := rows.Scan(
			&run.ID, &run.Layout, &run.LayoutHash, &run.Source,
			&run.EfficiencyScore, &run.SafetyScore, &level, &createdAt, &run.ReportJSON,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.SafetyLevel = rating.SafetyLevel(level)
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetKV retrieves a value from the key-value store. Missing keys yield "".
func (s *Store) GetKV(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get kv: %w", err)
	}
	return value, nil
}

// SetKV sets a value in the key-value store.
func (s *Store) SetKV(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO kv (key, value)
		VALUES (?, ?)
	`, key, value)
	if err != nil {
		return fmt.Errorf("set kv: %w", err)
	}
	return nil
}
