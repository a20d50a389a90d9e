// Package fitlog persists one provenance row per objective evaluation so a
// fitting run can be inspected or compared after the fact. The evaluation
// loop works without it; attach a Store as its recorder to enable logging.
package fitlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/atomistic-fit/go-fitter/internal/dispatch"
)

// #region schema

const evaluationsSchema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	call_num      INTEGER NOT NULL,
	control_code  TEXT NOT NULL,
	objective     REAL NOT NULL,
	penalty       REAL NOT NULL,
	was_nan       INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);
`

const evaluationsIndex = `
CREATE INDEX IF NOT EXISTS idx_evaluations_run
ON evaluations(run_id, call_num);
`

// #endregion schema

// #region types

// Evaluation is one recorded objective evaluation.
type Evaluation struct {
	RunID     string
	CallNum   int64
	Code      string
	Objective float64
	Penalty   float64
	WasNaN    bool
	CreatedAt time.Time
}

// #endregion types

// #region store

// Store records evaluations in SQLite under a per-run UUID.
type Store struct {
	db    *sql.DB
	runID string
}

// NewStore opens (creating if needed) the fitlog database and starts a new
// run identity.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open fitlog db: %w", err)
	}
	if _, err := db.Exec(evaluationsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create evaluations table: %w", err)
	}
	if _, err := db.Exec(evaluationsIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("create evaluations index: %w", err)
	}
	return &Store{db: db, runID: uuid.NewString()}, nil
}

// RunID returns the identity of the current run.
func (s *Store) RunID() string {
	return s.runID
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region record

// Record persists one evaluation row. Implements dispatch.Recorder.
func (s *Store) Record(call int64, code dispatch.Code, objective, penalty float64, wasNaN bool) error {
	nan := 0
	if wasNaN {
		nan = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO evaluations
		(run_id, call_num, control_code, objective, penalty, was_nan, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.runID,
		call,
		code.String(),
		objective,
		penalty,
		nan,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

var _ dispatch.Recorder = (*Store)(nil)

// #endregion record

// #region queries

// Best returns the lowest non-NaN objective recorded for a run.
// Returns sql.ErrNoRows wrapped if the run has no usable evaluations.
func (s *Store) Best(runID string) (Evaluation, error) {
	row := s.db.QueryRow(`
		SELECT run_id, call_num, control_code, objective, penalty, was_nan, created_at
		FROM evaluations
		WHERE run_id = ? AND was_nan = 0
		ORDER BY objective ASC, call_num ASC
		LIMIT 1`,
		runID,
	)
	return scanEvaluation(row)
}

// Recent returns the latest n evaluations across all runs, newest first.
func (s *Store) Recent(n int) ([]Evaluation, error) {
	rows, err := s.db.Query(`
		SELECT run_id, call_num, control_code, objective, penalty, was_nan, created_at
		FROM evaluations
		ORDER BY id DESC
		LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent evaluations: %w", err)
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	return evals, rows.Err()
}

// Run returns every evaluation of one run in call order.
func (s *Store) Run(runID string) ([]Evaluation, error) {
	rows, err := s.db.Query(`
		SELECT run_id, call_num, control_code, objective, penalty, was_nan, created_at
		FROM evaluations
		WHERE run_id = ?
		ORDER BY call_num ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	return evals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var ev Evaluation
	var nan int
	var created string
	if err := row.Scan(&ev.RunID, &ev.CallNum, &ev.Code, &ev.Objective, &ev.Penalty, &nan, &created); err != nil {
		return ev, fmt.Errorf("scan evaluation: %w", err)
	}
	ev.WasNaN = nan == 1
	ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return ev, nil
}

// #endregion queries
