// internal/models/candidate.go
package models

import "time"

// Stage identifies where a candidate sits in the hiring pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageAnalyzing  Stage = "analyzing"
	StageScored     Stage = "scored"
	StageScheduling Stage = "scheduling"
	StageScheduled  Stage = "scheduled"
	StageNotifying  Stage = "notifying"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Terminal reports whether no further transition may occur from s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Candidate is the unit of work flowing through the pipeline. Only the
// workflow orchestrator mutates it once a run has started.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	ResumeText string `json:"resumeText"`
	JobSpecID  string `json:"jobSpecId"`

	Stage      Stage             `json:"stage"`
	ParsedCV   *ParsedCV         `json:"parsedCv,omitempty"`
	Score      *ScoreResult      `json:"score,omitempty"`
	Scheduling *SchedulingResult `json:"scheduling,omitempty"`
	Failure    *FailureInfo      `json:"failure,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FailureInfo records the terminal failure of a run: which stage it
// originated in and which error kind caused it.
type FailureInfo struct {
	Stage     Stage     `json:"stage"`
	ErrorCode string    `json:"errorCode"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// SchedulingResult captures a successfully created interview event.
type SchedulingResult struct {
	EventID   string      `json:"eventId"`
	EventLink string      `json:"eventLink,omitempty"`
	Slot      MeetingSlot `json:"slot"`
	Attendees []string    `json:"attendees"`
	// Alternates are later slots offered to the candidate in the
	// confirmation email, for rebooking without another search.
	Alternates []MeetingSlot `json:"alternates,omitempty"`
}

// JobSpec describes the role a candidate is evaluated against.
// Immutable once a run references it.
type JobSpec struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// PassingScore is the qualification threshold; a score equal to it
	// qualifies. HighWatermark marks the highly-recommended tier.
	PassingScore  float64 `json:"passingScore"`
	HighWatermark float64 `json:"highWatermark"`
}
