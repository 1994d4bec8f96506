// internal/notify/composer_test.go
package notify

import (
	"testing"
	"time"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCandidate() models.Candidate {
	return models.Candidate{
		ID:       "cand-001",
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Position: "Backend Engineer",
		Score: &models.ScoreResult{
			Score:     88,
			Qualified: true,
			Priority:  models.PriorityHighlyRecommended,
			Rationale: "Strong systems background with relevant Go experience.",
		},
	}
}

func testSlot(start string, durationMin int) models.MeetingSlot {
	s, _ := time.Parse(time.RFC3339, start)
	return models.MeetingSlot{Start: s, End: s.Add(time.Duration(durationMin) * time.Minute)}
}

func TestCompose_Scheduled(t *testing.T) {
	c := testCandidate()
	c.Scheduling = &models.SchedulingResult{
		EventID:   "evt-42",
		EventLink: "https://calendar.example.com/evt-42",
		Slot:      testSlot("2025-12-02T14:00:00Z", 45),
		Alternates: []models.MeetingSlot{
			testSlot("2025-12-03T10:00:00Z", 45),
		},
	}

	artifact, err := Compose(c, OutcomeScheduled)

	require.NoError(t, err)
	assert.Equal(t, "Interview Scheduled - Backend Engineer", artifact.Subject)
	assert.Contains(t, artifact.Body, "Dear Ada Lovelace")
	assert.Contains(t, artifact.Body, "Tuesday, December 2, 2025 at 2:00 PM - 2:45 PM UTC")
	assert.Contains(t, artifact.Body, "https://calendar.example.com/evt-42")
	assert.Contains(t, artifact.Body, "Wednesday, December 3, 2025 at 10:00 AM - 10:45 AM UTC")
}

func TestCompose_Scheduled_RequiresSchedulingResult(t *testing.T) {
	c := testCandidate()

	_, err := Compose(c, OutcomeScheduled)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestCompose_Rejected_IncludesRationale(t *testing.T) {
	c := testCandidate()
	c.Score.Rationale = "The role requires Kubernetes experience not present in the CV."

	artifact, err := Compose(c, OutcomeRejected)

	require.NoError(t, err)
	assert.Equal(t, "Update on your application - Backend Engineer", artifact.Subject)
	assert.Contains(t, artifact.Body, "not to move forward")
	assert.Contains(t, artifact.Body, "Kubernetes experience")
}

func TestCompose_Rejected_WithoutScore(t *testing.T) {
	c := testCandidate()
	c.Score = nil

	artifact, err := Compose(c, OutcomeRejected)

	require.NoError(t, err)
	assert.NotEmpty(t, artifact.Body)
}

func TestCompose_Failed_AsksForAvailability(t *testing.T) {
	c := testCandidate()
	c.Failure = &models.FailureInfo{
		Stage:     models.StageScheduling,
		ErrorCode: string(errors.ErrCodeNoSlotAvailable),
		Reason:    "no common slot in search window",
	}

	artifact, err := Compose(c, OutcomeFailed)

	require.NoError(t, err)
	assert.Equal(t, "Interview Opportunity - Backend Engineer", artifact.Subject)
	assert.Contains(t, artifact.Body, "reply with your availability")
	assert.NotContains(t, artifact.Body, "no common slot", "internal failure reasons must not leak to candidates")
}

func TestCompose_UnknownOutcome(t *testing.T) {
	_, err := Compose(testCandidate(), Outcome("bogus"))

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestCompose_BlankNameFallsBack(t *testing.T) {
	c := testCandidate()
	c.Name = "  "

	artifact, err := Compose(c, OutcomeRejected)

	require.NoError(t, err)
	assert.Contains(t, artifact.Body, "Dear Candidate")
}

func TestEventSummaryAndDescription(t *testing.T) {
	c := testCandidate()
	c.ParsedCV = &models.ParsedCV{Skills: []string{"Go", "PostgreSQL"}}

	assert.Equal(t, "Interview - Ada Lovelace for Backend Engineer", EventSummary(c))

	desc := EventDescription(c)
	assert.Contains(t, desc, "Screening score: 88/100")
	assert.Contains(t, desc, "Go, PostgreSQL")
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ada@example.com", true},
		{" ada@example.com ", true},
		{"", false},
		{"ada", false},
		{"ada@", false},
		{"@example.com", false},
		{"ada@localhost", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidEmail(tt.email), tt.email)
	}
}

func TestRecruiterAlert(t *testing.T) {
	c := testCandidate()
	c.Scheduling = &models.SchedulingResult{Slot: testSlot("2025-12-02T14:00:00Z", 45)}

	msg := RecruiterAlert(c)

	assert.Contains(t, msg, "Ada Lovelace")
	assert.Contains(t, msg, "score 88")
	assert.Contains(t, msg, "ada@example.com")
}
