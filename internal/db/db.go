// Package db persists solver and model-fit runs to a local SQLite database.
//
// Schema changes are managed with golang-migrate; the migration files are
// embedded in the binary so deployments never need the source tree.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/skcajs/autolens/internal/geom"
)

type DB struct {
	*sql.DB
}

// OpenDB opens (or creates) the SQLite database at path. The schema is not
// created here; run migrations before first use.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc.org/sqlite serializes writes itself but a single connection
	// avoids SQLITE_BUSY under concurrent API requests.
	db.SetMaxOpenConns(1)
	return &DB{db}, nil
}

// LensRun is one persisted solver or fit invocation.
type LensRun struct {
	RunID         string          `json:"run_id"`
	Kind          string          `json:"kind"` // "solve" or "fit"
	DatasetName   string          `json:"dataset_name,omitempty"`
	Model         json.RawMessage `json:"model"`
	Positions     []geom.Coord    `json:"positions"`
	ChiSquared    float64         `json:"chi_squared"`
	LogLikelihood float64         `json:"log_likelihood"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InsertLensRun stores a run and returns its generated run ID.
func (db *DB) InsertLensRun(run LensRun) (string, error) {
	if run.Kind != "solve" && run.Kind != "fit" {
		return "", fmt.Errorf("invalid run kind %q", run.Kind)
	}
	runID := uuid.NewString()

	positions, err := json.Marshal(run.Positions)
	if err != nil {
		return "", fmt.Errorf("failed to encode positions: %w", err)
	}
	model := run.Model
	if model == nil {
		model = json.RawMessage("null")
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.Exec(
		`INSERT INTO lens_runs (
			run_id, kind, dataset_name, model_json, positions_json,
			chi_squared, log_likelihood, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, run.Kind, run.DatasetName, string(model), string(positions),
		run.ChiSquared, run.LogLikelihood, createdAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert lens run: %w", err)
	}
	return runID, nil
}

// GetLensRun fetches one run by ID. Returns sql.ErrNoRows when absent.
func (db *DB) GetLensRun(runID string) (LensRun, error) {
	row := db.QueryRow(
		`SELECT run_id, kind, dataset_name, model_json, positions_json,
			chi_squared, log_likelihood, created_unix_nanos
		FROM lens_runs WHERE run_id = ?`, runID)
	return scanLensRun(row)
}

// ListLensRuns returns the most recent runs, newest first, up to limit.
// A limit below 1 falls back to 100.
func (db *DB) ListLensRuns(limit int) ([]LensRun, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT run_id, kind, dataset_name, model_json, positions_json,
			chi_squared, log_likelihood, created_unix_nanos
		FROM lens_runs ORDER BY created_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []LensRun
	for rows.Next() {
		run, err := scanLensRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLensRun(row rowScanner) (LensRun, error) {
	var (
		run           LensRun
		modelJSON     string
		positionsJSON string
		createdUnixNs int64
	)
	if err := row.Scan(
		&run.RunID, &run.Kind, &run.DatasetName, &modelJSON, &positionsJSON,
		&run.ChiSquared, &run.LogLikelihood, &createdUnixNs,
	); err != nil {
		return LensRun{}, err
	}

	run.Model = json.RawMessage(modelJSON)
	if err := json.Unmarshal([]byte(positionsJSON), &run.Positions); err != nil {
		return LensRun{}, fmt.Errorf("failed to decode positions for run %s: %w", run.RunID, err)
	}
	run.CreatedAt = time.Unix(0, createdUnixNs).UTC()
	return run, nil
}
