// internal/api/server.go
// Package api exposes the candidate intake surface. A submission is
// validated, persisted and answered with 202 Accepted; the pipeline
// run itself proceeds in its own goroutine, one per candidate.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"
)

const submissionSchema = `{
	"type": "object",
	"properties": {
		"name":       {"type": "string", "minLength": 1, "maxLength": 200},
		"email":      {"type": "string", "format": "email"},
		"position":   {"type": "string", "minLength": 1, "maxLength": 200},
		"resumeText": {"type": "string", "minLength": 1},
		"jobSpecId":  {"type": "string", "minLength": 1}
	},
	"required": ["name", "email", "resumeText", "jobSpecId"],
	"additionalProperties": false
}`

// Runner starts a candidate's pipeline run.
type Runner interface {
	Run(ctx context.Context, c *models.Candidate, jobSpec models.JobSpec, interviewers []models.Interviewer) error
}

// CandidateCreator persists new submissions and serves lookups.
type CandidateCreator interface {
	Create(ctx context.Context, c *models.Candidate) error
	Get(ctx context.Context, id string) (*models.Candidate, error)
}

// JobSpecSource resolves job specs and their interviewer panels.
type JobSpecSource interface {
	GetJobSpec(ctx context.Context, id string) (*models.JobSpec, error)
	ListInterviewers(ctx context.Context, jobSpecID string) ([]models.Interviewer, error)
}

type Server struct {
	candidates CandidateCreator
	jobSpecs   JobSpecSource
	runner     Runner
	runTimeout time.Duration
	schema     *gojsonschema.Schema
	logger     logger.Logger
}

func NewServer(candidates CandidateCreator, jobSpecs JobSpecSource, runner Runner, runTimeout time.Duration, log logger.Logger) (*Server, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(submissionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile submission schema: %w", err)
	}
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	return &Server{
		candidates: candidates,
		jobSpecs:   jobSpecs,
		runner:     runner,
		runTimeout: runTimeout,
		schema:     schema,
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/candidates", s.handleSubmit)
	mux.HandleFunc("GET /api/v1/candidates/{id}", s.handleGet)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type submission struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	ResumeText string `json:"resumeText"`
	JobSpecID  string `json:"jobSpecId"`
}

type submitResponse struct {
	CandidateID string `json:"candidateId"`
	Stage       string `json:"stage"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, 2<<20)
	defer body.Close()

	raw := json.RawMessage{}
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON", nil)
		return
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "request body could not be validated", nil)
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		s.writeError(w, http.StatusBadRequest, "submission failed validation", details)
		return
	}

	var sub submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON", nil)
		return
	}

	jobSpec, err := s.jobSpecs.GetJobSpec(r.Context(), sub.JobSpecID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidRequest) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		s.logger.Error("job spec lookup failed", map[string]interface{}{"error": err})
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	interviewers, err := s.jobSpecs.ListInterviewers(r.Context(), jobSpec.ID)
	if err != nil {
		s.logger.Error("interviewer lookup failed", map[string]interface{}{"error": err})
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	position := sub.Position
	if position == "" {
		position = jobSpec.Title
	}
	candidate := &models.Candidate{
		Name:       sub.Name,
		Email:      sub.Email,
		Position:   position,
		ResumeText: sub.ResumeText,
		JobSpecID:  jobSpec.ID,
	}
	if err := s.candidates.Create(r.Context(), candidate); err != nil {
		s.logger.Error("candidate create failed", map[string]interface{}{"error": err})
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	s.launchRun(candidate, *jobSpec, interviewers)

	s.logger.Info("candidate submitted", map[string]interface{}{
		"candidateId": candidate.ID,
		"jobSpecId":   jobSpec.ID,
	})
	s.writeJSON(w, http.StatusAccepted, submitResponse{
		CandidateID: candidate.ID,
		Stage:       string(candidate.Stage),
	})
}

// launchRun starts the pipeline in its own goroutine with a fresh
// context, so the run outlives the HTTP request that submitted it.
func (s *Server) launchRun(c *models.Candidate, jobSpec models.JobSpec, interviewers []models.Interviewer) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		if err := s.runner.Run(ctx, c, jobSpec, interviewers); err != nil {
			s.logger.Warn("pipeline run ended in failure", map[string]interface{}{
				"candidateId": c.ID,
				"error":       err,
			})
		}
	}()
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	candidate, err := s.candidates.Get(r.Context(), id)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInvalidRequest) {
			s.writeError(w, http.StatusNotFound, "candidate not found", nil)
			return
		}
		s.logger.Error("candidate lookup failed", map[string]interface{}{"error": err})
		s.writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	// The résumé body is large and not useful to API consumers.
	candidate.ResumeText = ""
	s.writeJSON(w, http.StatusOK, candidate)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("response encode failed", map[string]interface{}{"error": err})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, details []string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
