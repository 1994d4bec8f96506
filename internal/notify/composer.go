// internal/notify/composer.go
// Package notify builds and delivers candidate-facing communication.
// Composition is a pure function of final workflow state; delivery is
// a separate concern behind the Mailer interface.
package notify

import (
	"fmt"
	"strings"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/models"
)

// Outcome selects which artifact Compose builds.
type Outcome string

const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Artifact is a composed message ready for delivery.
type Artifact struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Compose builds the artifact matching the candidate's outcome. It
// performs no I/O and reads only the candidate's own state.
func Compose(c models.Candidate, outcome Outcome) (Artifact, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "Candidate"
	}

	switch outcome {
	case OutcomeScheduled:
		if c.Scheduling == nil {
			return Artifact{}, errors.NewInvalidRequestError("scheduled outcome requires a scheduling result")
		}
		return composeScheduled(name, c), nil
	case OutcomeRejected:
		return composeRejected(name, c), nil
	case OutcomeFailed:
		return composeFailed(name, c), nil
	default:
		return Artifact{}, errors.NewInvalidRequestError(fmt.Sprintf("unknown notification outcome: %s", outcome))
	}
}

func composeScheduled(name string, c models.Candidate) Artifact {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "Great news! Your interview for the %s position has been scheduled.\n\n", c.Position)
	fmt.Fprintf(&b, "When: %s\n", formatSlot(c.Scheduling.Slot))
	if c.Scheduling.EventLink != "" {
		fmt.Fprintf(&b, "Calendar invite: %s\n", c.Scheduling.EventLink)
	}

	if len(c.Scheduling.Alternates) > 0 {
		b.WriteString("\nIf this time does not work for you, we can also offer:\n")
		for _, alt := range c.Scheduling.Alternates {
			fmt.Fprintf(&b, "- %s\n", formatSlot(alt))
		}
		b.WriteString("Reply to this email and we will rebook.\n")
	}

	b.WriteString("\nWe look forward to speaking with you.\n\nBest regards,\nThe Recruiting Team")

	return Artifact{
		Subject: fmt.Sprintf("Interview Scheduled - %s", c.Position),
		Body:    b.String(),
	}
}

func composeRejected(name string, c models.Candidate) Artifact {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your interest in the %s position and for taking the time to apply.\n\n", c.Position)
	b.WriteString("After careful review, we have decided not to move forward with your application at this time.\n")
	if c.Score != nil && strings.TrimSpace(c.Score.Rationale) != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(c.Score.Rationale))
	}
	b.WriteString("\nWe encourage you to apply for future openings that match your profile.\n\nBest regards,\nThe Recruiting Team")

	return Artifact{
		Subject: fmt.Sprintf("Update on your application - %s", c.Position),
		Body:    b.String(),
	}
}

// composeFailed covers runs where scheduling could not complete. The
// candidate is asked for availability directly so the process is not
// silently stalled.
func composeFailed(name string, c models.Candidate) Artifact {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your interest in the %s position. We would like to schedule an interview with you.\n\n", c.Position)
	b.WriteString("We were unable to find a suitable time automatically. ")
	b.WriteString("Please reply with your availability for the coming week and we will find a time that works.\n")
	b.WriteString("\nBest regards,\nThe Recruiting Team")

	return Artifact{
		Subject: fmt.Sprintf("Interview Opportunity - %s", c.Position),
		Body:    b.String(),
	}
}

// formatSlot renders a slot like
// "Monday, December 2, 2025 at 2:00 PM - 2:45 PM UTC".
func formatSlot(slot models.MeetingSlot) string {
	start := slot.Start.UTC()
	end := slot.End.UTC()
	return fmt.Sprintf("%s at %s - %s UTC",
		start.Format("Monday, January 2, 2006"),
		start.Format("3:04 PM"),
		end.Format("3:04 PM"))
}

// EventSummary is the calendar event title for an interview.
func EventSummary(c models.Candidate) string {
	return fmt.Sprintf("Interview - %s for %s", c.Name, c.Position)
}

// EventDescription is the calendar event body shown to interviewers.
func EventDescription(c models.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview with %s for the %s position.\n", c.Name, c.Position)
	if c.Score != nil {
		fmt.Fprintf(&b, "\nScreening score: %.0f/100 (%s)\n", c.Score.Score, c.Score.Priority)
		if c.Score.Rationale != "" {
			fmt.Fprintf(&b, "Notes: %s\n", c.Score.Rationale)
		}
	}
	if c.ParsedCV != nil && len(c.ParsedCV.Skills) > 0 {
		fmt.Fprintf(&b, "Key skills: %s\n", strings.Join(c.ParsedCV.Skills, ", "))
	}
	return b.String()
}

// RecruiterAlert is the plain-text message published when a candidate
// lands in the highly-recommended tier.
func RecruiterAlert(c models.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Highly recommended candidate: %s for %s", c.Name, c.Position)
	if c.Score != nil {
		fmt.Fprintf(&b, " (score %.0f)", c.Score.Score)
	}
	if c.Scheduling != nil {
		fmt.Fprintf(&b, "\nInterview: %s", formatSlot(c.Scheduling.Slot))
	}
	fmt.Fprintf(&b, "\nCandidate contact: %s", c.Email)
	return b.String()
}
