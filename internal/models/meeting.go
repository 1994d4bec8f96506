// internal/models/meeting.go
package models

import "time"

// Role marks whether an interviewer's presence is mandatory for a slot.
type Role string

const (
	RoleRequired Role = "required"
	RoleOptional Role = "optional"
)

// Interviewer identifies a participant whose calendar constrains the
// meeting search.
type Interviewer struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	CalendarRef string       `json:"calendarRef"`
	Role        Role         `json:"role"`
	Hours       WorkingHours `json:"hours"`
}

// WorkingHours declares when an interviewer takes meetings, in their
// own timezone. A weekday absent from Days is fully closed. BreakStart
// and BreakEnd optionally close a mid-day window on every open day.
type WorkingHours struct {
	Timezone   string              `json:"timezone"`
	Days       map[string]DayHours `json:"days"` // keyed by lowercase weekday name
	BreakStart string              `json:"breakStart,omitempty"`
	BreakEnd   string              `json:"breakEnd,omitempty"`
}

// DayHours is a single day's open window as "15:04" clock times.
type DayHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ForWeekday returns the open window for a weekday, if any.
func (w WorkingHours) ForWeekday(d time.Weekday) (DayHours, bool) {
	dh, ok := w.Days[weekdayNames[d]]
	return dh, ok
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// Window is a half-open [Start, End) search range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the window is well-formed.
func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// BusyInterval is one occupied stretch of an interviewer's calendar,
// normalized to UTC. Invariant: Start < End.
type BusyInterval struct {
	InterviewerID string    `json:"interviewerId"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// MeetingRequest describes one slot search.
type MeetingRequest struct {
	Required []Interviewer `json:"required"`
	Optional []Interviewer `json:"optional"`
	// Quorum is the minimum number of optional interviewers that must
	// be free during a slot. Zero means optional attendance is best-effort.
	Quorum   int           `json:"quorum"`
	Duration time.Duration `json:"duration"`
	Window   Window        `json:"window"`
	// Buffer is enforced before and after every existing busy interval.
	Buffer time.Duration `json:"buffer"`
	// MaxPerDay caps emitted slots per calendar day; zero means unlimited.
	MaxPerDay int `json:"maxPerDay"`
}

// MeetingSlot is a bookable window of exactly the requested duration.
// Produced only by the slot intersection engine.
type MeetingSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// OptionalFree is how many optional interviewers are free for the
	// whole slot.
	OptionalFree int `json:"optionalFree"`
}
