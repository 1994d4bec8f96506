// internal/api/server_test.go
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

type stubCandidates struct {
	mu      sync.Mutex
	created []*models.Candidate
	byID    map[string]*models.Candidate
	getErr  error
}

func newStubCandidates() *stubCandidates {
	return &stubCandidates{byID: map[string]*models.Candidate{}}
}

func (s *stubCandidates) Create(ctx context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = "cand-001"
	c.Stage = models.StageReceived
	s.created = append(s.created, c)
	s.byID[c.ID] = c
	return nil
}

func (s *stubCandidates) Get(ctx context.Context, id string) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.byID[id]
	if !ok {
		return nil, errors.NewInvalidRequestError("unknown candidate: " + id)
	}
	copied := *c
	return &copied, nil
}

type stubJobSpecs struct {
	spec         *models.JobSpec
	interviewers []models.Interviewer
}

func (s *stubJobSpecs) GetJobSpec(ctx context.Context, id string) (*models.JobSpec, error) {
	if s.spec == nil || s.spec.ID != id {
		return nil, errors.NewInvalidRequestError("unknown job spec: " + id)
	}
	return s.spec, nil
}

func (s *stubJobSpecs) ListInterviewers(ctx context.Context, jobSpecID string) ([]models.Interviewer, error) {
	return s.interviewers, nil
}

type stubRunner struct {
	mu   sync.Mutex
	runs []string
	done chan struct{}
}

func newStubRunner() *stubRunner {
	return &stubRunner{done: make(chan struct{}, 8)}
}

func (s *stubRunner) Run(ctx context.Context, c *models.Candidate, jobSpec models.JobSpec, interviewers []models.Interviewer) error {
	s.mu.Lock()
	s.runs = append(s.runs, c.ID)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func newTestServer(t *testing.T) (*Server, *stubCandidates, *stubRunner) {
	candidates := newStubCandidates()
	runner := newStubRunner()
	jobSpecs := &stubJobSpecs{
		spec: &models.JobSpec{ID: "job-001", Title: "Backend Engineer", PassingScore: 60},
		interviewers: []models.Interviewer{
			{ID: "iv-1", Role: models.RoleRequired},
		},
	}
	srv, err := NewServer(candidates, jobSpecs, runner, time.Minute, newTestLogger(t))
	require.NoError(t, err)
	return srv, candidates, runner
}

func validSubmission() string {
	return `{
		"name": "Ada Lovelace",
		"email": "ada@example.com",
		"position": "Backend Engineer",
		"resumeText": "resume text",
		"jobSpecId": "job-001"
	}`
}

// ==========================
// Core Functionality Tests
// ==========================

func TestServer_Submit_AcceptsAndLaunchesRun(t *testing.T) {
	srv, candidates, runner := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(validSubmission()))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cand-001", resp.CandidateID)
	assert.Equal(t, "received", resp.Stage)

	require.Len(t, candidates.created, 1)
	assert.Equal(t, "job-001", candidates.created[0].JobSpecID)

	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("pipeline run was not launched")
	}
	assert.Equal(t, []string{"cand-001"}, runner.runs)
}

func TestServer_Submit_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: `{{`},
		{name: "missing name", body: `{"email": "a@b.co", "resumeText": "x", "jobSpecId": "job-001"}`},
		{name: "missing resume", body: `{"name": "Ada", "email": "a@b.co", "jobSpecId": "job-001"}`},
		{name: "empty resume", body: `{"name": "Ada", "email": "a@b.co", "resumeText": "", "jobSpecId": "job-001"}`},
		{name: "unknown field", body: `{"name": "Ada", "email": "a@b.co", "resumeText": "x", "jobSpecId": "job-001", "extra": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, candidates, _ := newTestServer(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, candidates.created, "invalid submissions must not be persisted")
		})
	}
}

func TestServer_Submit_UnknownJobSpec(t *testing.T) {
	srv, candidates, _ := newTestServer(t)

	body := strings.Replace(validSubmission(), "job-001", "job-missing", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, candidates.created)
}

func TestServer_Get_ReturnsCandidateWithoutResume(t *testing.T) {
	srv, _, runner := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(validSubmission()))
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)
	<-runner.done

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/cand-001", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, getReq)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cand-001", got.ID)
	assert.Empty(t, got.ResumeText)
}

func TestServer_Get_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/missing", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Get_StoreOutageReturns500(t *testing.T) {
	srv, candidates, _ := newTestServer(t)
	candidates.getErr = errors.NewDatabaseError("get candidate", sql.ErrConnDone)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/cand-001", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "not found",
		"a store outage must not be reported as a missing candidate")
}

func TestServer_Healthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
