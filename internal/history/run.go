package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relgate/relgate/internal/gate"
	"github.com/relgate/relgate/pkg/release"
)

// Run is one recorded gate run.
type Run struct {
	ID         string            `json:"id"`
	Project    string            `json:"project"`
	Version    string            `json:"version"`
	HeadRev    string            `json:"head_rev"`
	TagRev     string            `json:"tag_rev"`
	Status     release.RunStatus `json:"status"`
	FailedStep release.Step      `json:"failed_step,omitempty"`
	Error      string            `json:"error,omitempty"`
	Steps      []StepRecord      `json:"steps,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	Duration   time.Duration     `json:"duration"`
}

// StepRecord is the stored outcome of one gate step.
type StepRecord struct {
	Step     release.Step  `json:"step"`
	Passed   bool          `json:"passed"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

// NewRun converts a gate result into a history record with a fresh id.
func NewRun(res *gate.Result, startedAt time.Time) *Run {
	r := &Run{
		ID:         fmt.Sprintf("run-%s", uuid.New().String()[:8]),
		Project:    res.Project.Name,
		Version:    res.Version,
		HeadRev:    res.HeadRev,
		TagRev:     res.TagRev,
		Status:     res.Status,
		FailedStep: res.FailedStep(),
		StartedAt:  startedAt,
		Duration:   res.Duration,
	}
	if r.Project == "" {
		r.Project = res.Project.DisplayName
	}
	if err := res.Err(); err != nil {
		r.Error = err.Error()
	}
	for _, s := range res.Steps {
		r.Steps = append(r.Steps, StepRecord{
			Step:     s.Step,
			Passed:   s.Passed,
			Detail:   s.Detail,
			Duration: s.Duration,
		})
	}
	return r
}

// Run CRUD operations

// CreateRun records a run.
func (db *DB) CreateRun(r *Run) error {
	steps, _ := json.Marshal(r.Steps)

	_, err := db.conn.Exec(`
		INSERT INTO runs (id, project, version, head_rev, tag_rev, status, failed_step, error, steps, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Project, r.Version, r.HeadRev, r.TagRev, string(r.Status), string(r.FailedStep), r.Error, string(steps), encodeTime(r.StartedAt), r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when no run matches.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(`
		SELECT id, project, version, head_rev, tag_rev, status, failed_step, error, steps, started_at, duration_ms
		FROM runs WHERE id = ?
	`, id)

	var r Run
	var version, headRev, tagRev, failedStep, errMsg, steps sql.NullString
	var startedAt string
	var durationMS int64
	err := row.Scan(&r.ID, &r.Project, &version, &headRev, &tagRev, &r.Status, &failedStep, &errMsg, &steps, &startedAt, &durationMS)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	fillRun(&r, version, headRev, tagRev, failedStep, errMsg, steps, startedAt, durationMS)
	return &r, nil
}

// DeleteRun deletes a run by ID.
func (db *DB) DeleteRun(id string) error {
	_, err := db.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// ListRuns lists recorded runs, most recent first. An empty project
// matches every project; a limit of 0 or less means no limit.
func (db *DB) ListRuns(project string, limit int) ([]Run, error) {
	query := `
		SELECT id, project, version, head_rev, tag_rev, status, failed_step, error, steps, started_at, duration_ms
		FROM runs`
	var args []any
	if project != "" {
		query += " WHERE project = ?"
		args = append(args, project)
	}
	query += " ORDER BY started_at DESC, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var version, headRev, tagRev, failedStep, errMsg, steps sql.NullString
		var startedAt string
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Project, &version, &headRev, &tagRev, &r.Status, &failedStep, &errMsg, &steps, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		fillRun(&r, version, headRev, tagRev, failedStep, errMsg, steps, startedAt, durationMS)
		runs = append(runs, r)
	}
	return runs, nil
}

// LastRun returns the most recent run for a project, if any.
func (db *DB) LastRun(project string) (*Run, error) {
	runs, err := db.ListRuns(project, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ClearRuns deletes recorded runs. An empty project clears every
// project. Returns the number of runs deleted.
func (db *DB) ClearRuns(project string) (int64, error) {
	var result sql.Result
	var err error

	if project != "" {
		result, err = db.conn.Exec("DELETE FROM runs WHERE project = ?", project)
	} else {
		result, err = db.conn.Exec("DELETE FROM runs")
	}
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return result.RowsAffected()
}

// PurgeOldRuns deletes runs that started before now minus olderThan.
// Returns the number of runs deleted.
func (db *DB) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	cutoff := encodeTime(time.Now().Add(-olderThan))
	result, err := db.conn.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	return result.RowsAffected()
}

// fillRun populates the nullable and encoded columns of a scanned run.
func fillRun(r *Run, version, headRev, tagRev, failedStep, errMsg, steps sql.NullString, startedAt string, durationMS int64) {
	if version.Valid {
		r.Version = version.String
	}
	if headRev.Valid {
		r.HeadRev = headRev.String
	}
	if tagRev.Valid {
		r.TagRev = tagRev.String
	}
	if failedStep.Valid {
		r.FailedStep = release.Step(failedStep.String)
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if steps.Valid && steps.String != "" {
		json.Unmarshal([]byte(steps.String), &r.Steps)
	}
	r.StartedAt, _ = decodeTime(startedAt)
	r.Duration = time.Duration(durationMS) * time.Millisecond
}
