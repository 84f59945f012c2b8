package db

import (
	"crypto/rand"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/plusblocks/internal/errors"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusHalted    = "halted"
	StatusFailed    = "failed"
)

// Run is one sync-catalog invocation.
type Run struct {
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	Category      string `json:"category,omitempty"`
	Block         string `json:"block,omitempty"`
	Force         bool   `json:"force"`
	MetadataOnly  bool   `json:"metadataOnly"`
	Status        string `json:"status"`
	BlocksTotal   int    `json:"blocksTotal"`
	BlocksSynced  int    `json:"blocksSynced"`
	BlocksSkipped int    `json:"blocksSkipped"`
	BlocksFailed  int    `json:"blocksFailed"`
	Variants      int    `json:"variants"`
	Codes         int    `json:"codes"`
	Error         string `json:"error,omitempty"`
	StartedAt     int64  `json:"startedAt"`
	FinishedAt    *int64 `json:"finishedAt,omitempty"`
}

// Failure is one block that could not be synced during a run.
type Failure struct {
	ID        int64  `json:"id"`
	RunID     string `json:"runId"`
	BlockKey  string `json:"blockKey"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// NewRunID returns a fresh ULID stamped with t.
func NewRunID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

const runColumns = `
	id, mode, category, block, force, metadata_only, status,
	blocks_total, blocks_synced, blocks_skipped, blocks_failed, variants, codes,
	error, started_at, finished_at`

// InsertRun records the start of a run.
func InsertRun(db *sql.DB, r *Run) error {
	_, err := db.Exec(`INSERT INTO sync_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Mode, toNullString(r.Category), toNullString(r.Block), r.Force, r.MetadataOnly, r.Status,
		r.BlocksTotal, r.BlocksSynced, r.BlocksSkipped, r.BlocksFailed, r.Variants, r.Codes,
		toNullString(r.Error), r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateRun stores the run's counters, status and finish time.
func UpdateRun(db *sql.DB, r *Run) error {
	result, err := db.Exec(`
		UPDATE sync_runs SET
			status = ?, blocks_total = ?, blocks_synced = ?, blocks_skipped = ?,
			blocks_failed = ?, variants = ?, codes = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		r.Status, r.BlocksTotal, r.BlocksSynced, r.BlocksSkipped,
		r.BlocksFailed, r.Variants, r.Codes, toNullString(r.Error), r.FinishedAt,
		r.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewInvalidRequest("unknown sync run " + r.ID)
	}
	return nil
}

// GetRun retrieves a run by its ULID. It returns nil when none exists.
func GetRun(db *sql.DB, id string) (*Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM sync_runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun returns the most recently started run, or nil when there is none.
// ULIDs break ties between runs started in the same millisecond.
func LatestRun(db *sql.DB) (*Run, error) {
	row := db.QueryRow(`SELECT ` + runColumns + ` FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	return scanRun(row)
}

// ListRuns returns up to limit runs, newest first.
func ListRuns(db *sql.DB, limit int) ([]Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return runs, nil
}

// PruneRuns deletes all but the newest keep runs along with their failures.
func PruneRuns(db *sql.DB, keep int) (int64, error) {
	result, err := db.Exec(`
		DELETE FROM sync_runs WHERE id NOT IN (
			SELECT id FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// InsertFailure records a failed block for a run.
func InsertFailure(db *sql.DB, f *Failure) error {
	result, err := db.Exec(`
		INSERT INTO sync_failures (run_id, block_key, code, message, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.RunID, f.BlockKey, toNullString(f.Code), f.Message, f.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	if id, err := result.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

// ListFailures returns a run's failures in insertion order.
func ListFailures(db *sql.DB, runID string) ([]Failure, error) {
	rows, err := db.Query(`
		SELECT id, run_id, block_key, code, message, created_at
		FROM sync_failures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	failures := make([]Failure, 0)
	for rows.Next() {
		var (
			f    Failure
			code sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.RunID, &f.BlockKey, &code, &f.Message, &f.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		f.Code = code.String
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return failures, nil
}

// CountFailures returns how many failures a run recorded.
func CountFailures(db *sql.DB, runID string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sync_failures WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r          Run
		category   sql.NullString
		blk        sql.NullString
		errText    sql.NullString
		finishedAt sql.NullInt64
	)
	err := row.Scan(
		&r.ID, &r.Mode, &category, &blk, &r.Force, &r.MetadataOnly, &r.Status,
		&r.BlocksTotal, &r.BlocksSynced, &r.BlocksSkipped, &r.BlocksFailed, &r.Variants, &r.Codes,
		&errText, &r.StartedAt, &finishedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	r.Category = category.String
	r.Block = blk.String
	r.Error = errText.String
	if finishedAt.Valid {
		r.FinishedAt = &finishedAt.Int64
	}
	return &r, nil
}

// toNullString maps "" to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
