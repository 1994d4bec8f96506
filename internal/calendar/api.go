// internal/calendar/api.go
// Package calendar resolves interviewer availability from an external
// calendar capability and normalizes it for the slot engine.
package calendar

import (
	"context"
	"time"

	"hiring-coordinator/internal/models"
)

// API is the contract with the external calendar capability.
type API interface {
	// ListBusy returns the raw busy intervals for a calendar within a
	// window. Order and overlap are not guaranteed.
	ListBusy(ctx context.Context, calendarRef string, window models.Window) ([]models.BusyInterval, error)

	// CreateEvent books an interview event and returns its reference.
	CreateEvent(ctx context.Context, req EventRequest) (*EventResult, error)
}

// EventRequest carries everything needed to create an interview event.
type EventRequest struct {
	CalendarRef   string    `json:"calendarRef"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Timezone      string    `json:"timezone"`
	Attendees     []string  `json:"attendees"`
	AddConference bool      `json:"addConference"`
}

// EventResult identifies a created event.
type EventResult struct {
	EventID   string `json:"eventId"`
	EventLink string `json:"eventLink,omitempty"`
}
