// Package sqlite implements store.Store on SQLite via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/internalerr"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
	"github.com/cognicore/kognate/pkg/kognate/store"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a SQLite database with WAL
// mode enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	method TEXT NOT NULL,
	epochs INTEGER NOT NULL,
	initial_pairs INTEGER NOT NULL,
	final_pairs INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pmi_scores (
	run_id TEXT NOT NULL,
	sym_a TEXT NOT NULL,
	sym_b TEXT NOT NULL,
	score REAL NOT NULL,
	PRIMARY KEY (run_id, sym_a, sym_b),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS classes (
	run_id TEXT NOT NULL,
	concept TEXT NOT NULL,
	class_idx INTEGER NOT NULL,
	language TEXT NOT NULL,
	line INTEGER NOT NULL,
	form TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_classes_run ON classes(run_id, concept, class_idx);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun upserts run metadata.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, method, epochs, initial_pairs, final_pairs)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at = excluded.created_at,
	method = excluded.method,
	epochs = excluded.epochs,
	initial_pairs = excluded.initial_pairs,
	final_pairs = excluded.final_pairs`,
		r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Method, r.Epochs, r.InitialPairs, r.FinalPairs)
	return err
}

// GetRun returns a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, created_at, method, epochs, initial_pairs, final_pairs
FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns all runs ordered by ID.
func (s *sqliteStore) ListRuns(ctx context.Context) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, method, epochs, initial_pairs, final_pairs
FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var r store.Run
	var created string
	if err := row.Scan(&r.ID, &created, &r.Method, &r.Epochs,
		&r.InitialPairs, &r.FinalPairs); err != nil {
		return store.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}

// SaveMatrix writes every A <= B cell of the matrix in one
// transaction; loading restores both orders.
func (s *sqliteStore) SaveMatrix(ctx context.Context, runID string, m *pmi.Matrix) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pmi_scores WHERE run_id = ?`, runID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO pmi_scores (run_id, sym_a, sym_b, score) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range m.Items() {
		if k.A > k.B {
			continue
		}
		if _, err := stmt.ExecContext(ctx, runID, k.A, k.B, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadMatrix rebuilds a stored matrix.
func (s *sqliteStore) LoadMatrix(ctx context.Context, runID string) (*pmi.Matrix, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT sym_a, sym_b, score FROM pmi_scores WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pmi.NewMatrix()
	found := false
	for rows.Next() {
		var a, b string
		var score float64
		if err := rows.Scan(&a, &b, &score); err != nil {
			return nil, err
		}
		m.Set(a, b, score)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("sqlite: matrix for run %s: %w", runID, internalerr.ErrNotFound)
	}
	return m, nil
}

// SaveClasses writes the partition; word symbols are stored
// space-joined so multi-rune symbols survive the roundtrip.
func (s *sqliteStore) SaveClasses(ctx context.Context, runID string, classes map[string][]cluster.Class) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM classes WHERE run_id = ?`, runID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO classes (run_id, concept, class_idx, language, line, form)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for concept, conceptClasses := range classes {
		for idx, class := range conceptClasses {
			for _, w := range class {
				form := strings.Join(w.Symbols, " ")
				if _, err := stmt.ExecContext(ctx,
					runID, concept, idx, w.Language, w.Line, form); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

// LoadClasses returns a stored partition.
func (s *sqliteStore) LoadClasses(ctx context.Context, runID string) (map[string][]cluster.Class, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT concept, class_idx, language, line, form
FROM classes WHERE run_id = ?
ORDER BY concept, class_idx, language, line`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]cluster.Class)
	found := false
	for rows.Next() {
		var concept, language, form string
		var idx, line int
		if err := rows.Scan(&concept, &idx, &language, &line, &form); err != nil {
			return nil, err
		}
		found = true
		for len(out[concept]) <= idx {
			out[concept] = append(out[concept], cluster.Class{})
		}
		out[concept][idx] = append(out[concept][idx], word.Word{
			Concept:  concept,
			Language: language,
			Line:     line,
			Symbols:  strings.Split(form, " "),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("sqlite: classes for run %s: %w", runID, internalerr.ErrNotFound)
	}
	return out, nil
}
