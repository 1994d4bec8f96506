// internal/store/candidates.go
// Package store persists candidate records. The orchestrator is the
// only writer once a run has started; reads serve the intake API and
// operational inspection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"
)

type CandidateStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewCandidateStore(db *sql.DB, log logger.Logger) *CandidateStore {
	return &CandidateStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-store"}),
	}
}

// Create inserts a freshly submitted candidate. The ID is assigned
// here when the caller left it empty.
func (s *CandidateStore) Create(ctx context.Context, c *models.Candidate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Stage == "" {
		c.Stage = models.StageReceived
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidates (
			id, name, email, position, resume_text,
			job_spec_id, stage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		c.ID,
		c.Name,
		c.Email,
		c.Position,
		c.ResumeText,
		c.JobSpecID,
		string(c.Stage),
		now,
	)
	if err != nil {
		return errors.NewDatabaseError("insert candidate", err)
	}

	s.logger.Info("candidate record created", map[string]interface{}{
		"candidateId": c.ID,
		"jobSpecId":   c.JobSpecID,
	})
	return nil
}

// UpdateStage records a stage transition. Score, scheduling and
// failure snapshots travel with the stage so a record always reflects
// a consistent point in the run.
func (s *CandidateStore) UpdateStage(ctx context.Context, c *models.Candidate) error {
	c.UpdatedAt = time.Now().UTC()

	scoreJSON, err := marshalNullable(c.Score)
	if err != nil {
		return errors.NewDatabaseError("marshal score", err)
	}
	parsedJSON, err := marshalNullable(c.ParsedCV)
	if err != nil {
		return errors.NewDatabaseError("marshal parsed cv", err)
	}
	schedulingJSON, err := marshalNullable(c.Scheduling)
	if err != nil {
		return errors.NewDatabaseError("marshal scheduling result", err)
	}
	failureJSON, err := marshalNullable(c.Failure)
	if err != nil {
		return errors.NewDatabaseError("marshal failure info", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET stage = $2, score = $3, parsed_cv = $4,
		    scheduling = $5, failure = $6, updated_at = $7
		WHERE id = $1`,
		c.ID,
		string(c.Stage),
		scoreJSON,
		parsedJSON,
		schedulingJSON,
		failureJSON,
		c.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseError("update candidate stage", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NewDatabaseError("update candidate stage", sql.ErrNoRows)
	}

	s.logger.Debug("candidate stage persisted", map[string]interface{}{
		"candidateId": c.ID,
		"stage":       string(c.Stage),
	})
	return nil
}

// Get loads a single candidate by id. A missing record yields an
// invalid-request error so callers can tell it apart from a store
// outage.
func (s *CandidateStore) Get(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, position, resume_text, job_spec_id,
		       stage, score, parsed_cv, scheduling, failure,
		       created_at, updated_at
		FROM candidates
		WHERE id = $1`, id)

	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewInvalidRequestError("unknown candidate: " + id)
	}
	return c, err
}

// ListByStage returns candidates currently in the given stage, oldest
// first. Used for operational inspection and run recovery.
func (s *CandidateStore) ListByStage(ctx context.Context, stage models.Stage, limit int) ([]*models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, position, resume_text, job_spec_id,
		       stage, score, parsed_cv, scheduling, failure,
		       created_at, updated_at
		FROM candidates
		WHERE stage = $1
		ORDER BY created_at ASC
		LIMIT $2`, string(stage), limit)
	if err != nil {
		return nil, errors.NewDatabaseError("list candidates by stage", err)
	}
	defer rows.Close()

	var out []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("list candidates by stage", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var (
		c              models.Candidate
		stage          string
		scoreJSON      []byte
		parsedJSON     []byte
		schedulingJSON []byte
		failureJSON    []byte
	)

	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Position, &c.ResumeText, &c.JobSpecID,
		&stage, &scoreJSON, &parsedJSON, &schedulingJSON, &failureJSON,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, errors.NewDatabaseError("scan candidate: "+pqErr.Code.Name(), err)
		}
		return nil, errors.NewDatabaseError("scan candidate", err)
	}

	c.Stage = models.Stage(stage)
	if err := unmarshalNullable(scoreJSON, &c.Score); err != nil {
		return nil, errors.NewDatabaseError("decode score", err)
	}
	if err := unmarshalNullable(parsedJSON, &c.ParsedCV); err != nil {
		return nil, errors.NewDatabaseError("decode parsed cv", err)
	}
	if err := unmarshalNullable(schedulingJSON, &c.Scheduling); err != nil {
		return nil, errors.NewDatabaseError("decode scheduling result", err)
	}
	if err := unmarshalNullable(failureJSON, &c.Failure); err != nil {
		return nil, errors.NewDatabaseError("decode failure info", err)
	}
	return &c, nil
}

func marshalNullable(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case *models.ScoreResult:
		if val == nil {
			return nil, nil
		}
	case *models.ParsedCV:
		if val == nil {
			return nil, nil
		}
	case *models.SchedulingResult:
		if val == nil {
			return nil, nil
		}
	case *models.FailureInfo:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func unmarshalNullable(data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
