// internal/store/jobspecs.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"
)

// JobSpecStore reads job specs and their interviewer panels. Both are
// written by back-office tooling and treated as immutable here.
type JobSpecStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewJobSpecStore(db *sql.DB, log logger.Logger) *JobSpecStore {
	return &JobSpecStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "jobspec-store"}),
	}
}

func (s *JobSpecStore) GetJobSpec(ctx context.Context, id string) (*models.JobSpec, error) {
	var spec models.JobSpec
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, passing_score, high_watermark
		FROM job_specs
		WHERE id = $1`, id).
		Scan(&spec.ID, &spec.Title, &spec.Description, &spec.PassingScore, &spec.HighWatermark)
	if err == sql.ErrNoRows {
		return nil, errors.NewInvalidRequestError("unknown job spec: " + id)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("get job spec", err)
	}
	return &spec, nil
}

// ListInterviewers returns the interviewer panel assigned to a job
// spec. Working hours are stored as JSON alongside the row.
func (s *JobSpecStore) ListInterviewers(ctx context.Context, jobSpecID string) ([]models.Interviewer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, calendar_ref, role, working_hours
		FROM interviewers
		WHERE job_spec_id = $1
		ORDER BY role, id`, jobSpecID)
	if err != nil {
		return nil, errors.NewDatabaseError("list interviewers", err)
	}
	defer rows.Close()

	var out []models.Interviewer
	for rows.Next() {
		var (
			iv        models.Interviewer
			role      string
			hoursJSON []byte
		)
		if err := rows.Scan(&iv.ID, &iv.Name, &iv.Email, &iv.CalendarRef, &role, &hoursJSON); err != nil {
			return nil, errors.NewDatabaseError("scan interviewer", err)
		}
		iv.Role = models.Role(role)
		if len(hoursJSON) > 0 {
			if err := json.Unmarshal(hoursJSON, &iv.Hours); err != nil {
				return nil, errors.NewDatabaseError("decode working hours", err)
			}
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("list interviewers", err)
	}
	return out, nil
}
