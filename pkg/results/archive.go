package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	network_name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	model TEXT NOT NULL,
	beta REAL NOT NULL,
	gamma REAL NOT NULL,
	lambda REAL NOT NULL,
	iterations INTEGER NOT NULL,
	repetitions INTEGER NOT NULL,
	seed INTEGER NOT NULL,
	nodes INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_network_beta ON runs(network_name, beta);

CREATE TABLE IF NOT EXISTS outbreaks (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	node INTEGER NOT NULL,
	label TEXT,
	m REAL NOT NULL,
	m_std REAL,
	degree INTEGER,
	coreness INTEGER,
	centrality REAL,
	PRIMARY KEY (run_id, node)
);
`

// RunSummary is one row of the runs table
type RunSummary struct {
	RunID       string
	NetworkName string
	CreatedAt   time.Time
	Model       string
	Beta        float64
	Repetitions int
	Nodes       int
}

// Archive stores many sweeps in a single SQLite database
type Archive struct {
	db   *sql.DB
	path string
}

// OpenArchive opens or creates the archive at path
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// a single connection keeps writes serialized and in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive tables: %w", err)
	}
	return &Archive{db: db, path: path}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file
func (a *Archive) Path() string {
	return a.path
}

// Put stores a blob, replacing any run with the same id
func (a *Archive) Put(ctx context.Context, b *Blob) error {
	if err := b.Validate(); err != nil {
		return err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM outbreaks WHERE run_id = ?`, b.RunID); err != nil {
		return fmt.Errorf("failed to clear run %s: %w", b.RunID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(run_id, network_name, created_at, model, beta, gamma, lambda, iterations, repetitions, seed, nodes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.RunID, b.NetworkName, b.CreatedAt.UTC().Format(time.RFC3339Nano), b.Model,
		b.Beta, b.Gamma, b.Lambda, b.Iterations, b.Repetitions, int64(b.Seed), len(b.M))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", b.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outbreaks (run_id, node, label, m, m_std, degree, coreness, centrality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare outbreak insert: %w", err)
	}
	defer stmt.Close()

	for v, m := range b.M {
		_, err := stmt.ExecContext(ctx, b.RunID, v,
			nullString(b.Labels, v), m, nullFloat(b.MStd, v),
			nullInt(b.Degrees, v), nullInt(b.Corenesses, v), nullFloat(b.Centralities, v))
		if err != nil {
			return fmt.Errorf("failed to insert node %d: %w", v, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", b.RunID, err)
	}
	return nil
}

// Get loads a stored run by id
func (a *Archive) Get(ctx context.Context, runID string) (*Blob, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT run_id, network_name, created_at, model, beta, gamma, lambda, iterations, repetitions, seed
		FROM runs WHERE run_id = ?`, runID)

	b, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	if err := a.loadOutbreaks(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Latest returns the most recent run for a network and beta
func (a *Archive) Latest(ctx context.Context, networkName string, beta float64) (*Blob, error) {
	var runID string
	err := a.db.QueryRowContext(ctx, `
		SELECT run_id FROM runs
		WHERE network_name = ? AND beta = ?
		ORDER BY created_at DESC LIMIT 1`, networkName, beta).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: network %s beta %v", ErrNotFound, networkName, beta)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return a.Get(ctx, runID)
}

// List returns every stored run, newest first
func (a *Archive) List(ctx context.Context) ([]RunSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT run_id, network_name, created_at, model, beta, repetitions, nodes
		FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var created string
		if err := rows.Scan(&r.RunID, &r.NetworkName, &created, &r.Model, &r.Beta, &r.Repetitions, &r.Nodes); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s has bad timestamp: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(row *sql.Row) (*Blob, error) {
	var b Blob
	var created string
	var seed int64
	err := row.Scan(&b.RunID, &b.NetworkName, &created, &b.Model,
		&b.Beta, &b.Gamma, &b.Lambda, &b.Iterations, &b.Repetitions, &seed)
	if err != nil {
		return nil, err
	}
	b.Seed = uint64(seed)
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("run %s has bad timestamp: %w", b.RunID, err)
	}
	return &b, nil
}

func (a *Archive) loadOutbreaks(ctx context.Context, b *Blob) error {
	rows, err := a.db.QueryContext(ctx, `
		SELECT label, m, m_std, degree, coreness, centrality
		FROM outbreaks WHERE run_id = ? ORDER BY node`, b.RunID)
	if err != nil {
		return fmt.Errorf("failed to query outbreaks: %w", err)
	}
	defer rows.Close()

	var (
		labels              []sql.NullString
		stds, centralities  []sql.NullFloat64
		degrees, corenesses []sql.NullInt64
	)
	for rows.Next() {
		var (
			label     sql.NullString
			m         float64
			std, cb   sql.NullFloat64
			deg, core sql.NullInt64
		)
		if err := rows.Scan(&label, &m, &std, &deg, &core, &cb); err != nil {
			return fmt.Errorf("failed to scan outbreak: %w", err)
		}
		b.M = append(b.M, m)
		labels = append(labels, label)
		stds = append(stds, std)
		degrees = append(degrees, deg)
		corenesses = append(corenesses, core)
		centralities = append(centralities, cb)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	b.Labels = collect(labels, func(s sql.NullString) (string, bool) { return s.String, s.Valid })
	b.MStd = collect(stds, func(f sql.NullFloat64) (float64, bool) { return f.Float64, f.Valid })
	b.Degrees = collect(degrees, func(i sql.NullInt64) (int, bool) { return int(i.Int64), i.Valid })
	b.Corenesses = collect(corenesses, func(i sql.NullInt64) (int, bool) { return int(i.Int64), i.Valid })
	b.Centralities = collect(centralities, func(f sql.NullFloat64) (float64, bool) { return f.Float64, f.Valid })
	return b.Validate()
}

// collect returns the column values, or nil when any row lacks one
func collect[S, T any](col []S, get func(S) (T, bool)) []T {
	out := make([]T, len(col))
	for i, s := range col {
		v, ok := get(s)
		if !ok {
			return nil
		}
		out[i] = v
	}
	return out
}

func nullString(s []string, i int) sql.NullString {
	if i >= len(s) {
		return sql.NullString{}
	}
	return sql.NullString{String: s[i], Valid: true}
}

func nullFloat(s []float64, i int) sql.NullFloat64 {
	if i >= len(s) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: s[i], Valid: true}
}

func nullInt(s []int, i int) sql.NullInt64 {
	if i >= len(s) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(s[i]), Valid: true}
}
