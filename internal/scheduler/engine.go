// internal/scheduler/engine.go
// Package scheduler computes meeting slots satisfying every required
// interviewer's calendar, working hours and buffer constraints. It is
// pure: identical inputs always yield identical output.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/metrics"
	"hiring-coordinator/internal/models"
)

// FindSlots returns every bookable slot for the request, ascending by
// start, each exactly req.Duration long. busy maps interviewer ID to
// that interviewer's merged busy intervals; an interviewer missing from
// the map has no availability data and is treated as fully busy.
//
// An empty result with a nil error means the search succeeded and found
// nothing.
func FindSlots(req models.MeetingRequest, busy map[string][]models.BusyInterval) ([]models.MeetingSlot, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Free sets for required interviewers; intersection across all.
	var common []span
	for i, iv := range req.Required {
		free, err := freeSpans(iv, req, busy)
		if err != nil {
			return nil, err
		}
		if len(free) == 0 {
			return nil, nil
		}
		if i == 0 {
			common = free
		} else {
			common = intersectSpans(common, free)
		}
		if len(common) == 0 {
			return nil, nil
		}
	}

	optionalFree := make([][]span, len(req.Optional))
	for i, iv := range req.Optional {
		free, err := freeSpans(iv, req, busy)
		if err != nil {
			return nil, err
		}
		optionalFree[i] = free
	}

	slots := sliceSlots(common, req, optionalFree)
	metrics.SlotsFound.Observe(float64(len(slots)))
	return slots, nil
}

func validateRequest(req models.MeetingRequest) error {
	if len(req.Required) == 0 {
		return errors.NewInvalidRequestError("at least one required interviewer is needed")
	}
	if req.Duration <= 0 {
		return errors.NewInvalidRequestError(fmt.Sprintf("duration must be positive, got %s", req.Duration))
	}
	if !req.Window.Valid() {
		return errors.NewInvalidRequestError("search window start must precede end")
	}
	if req.Quorum < 0 || req.Quorum > len(req.Optional) {
		return errors.NewInvalidRequestError(fmt.Sprintf(
			"quorum %d out of range for %d optional interviewers", req.Quorum, len(req.Optional)))
	}
	if req.Buffer < 0 {
		return errors.NewInvalidRequestError("buffer must not be negative")
	}
	return nil
}

// freeSpans computes one interviewer's free intervals inside the search
// window: working-hours windows minus buffer-expanded busy intervals.
// No availability data at all means fully busy.
func freeSpans(iv models.Interviewer, req models.MeetingRequest, busy map[string][]models.BusyInterval) ([]span, error) {
	intervals, ok := busy[iv.ID]
	if !ok {
		return nil, nil
	}

	open, err := workingSpans(iv.Hours, req.Window)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	occupied := make([]span, 0, len(intervals))
	for _, b := range intervals {
		occupied = append(occupied, newSpan(b.Start.Add(-req.Buffer), b.End.Add(req.Buffer)))
	}

	return subtractSpans(open, mergeSpans(occupied)), nil
}

// workingSpans expands a working-hours policy into concrete UTC spans
// for every day the search window touches, honoring the declared
// timezone's offset at each instant.
func workingSpans(hours models.WorkingHours, window models.Window) ([]span, error) {
	tz := hours.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("unknown timezone %q", tz))
	}

	bounds := newSpan(window.Start, window.End)

	var out []span
	day := time.Date(
		window.Start.In(loc).Year(), window.Start.In(loc).Month(), window.Start.In(loc).Day(),
		0, 0, 0, 0, loc)
	for day.Before(window.End.In(loc)) {
		dh, open := hours.ForWeekday(day.Weekday())
		if open {
			daySpans, err := dayOpenSpans(day, dh, hours, loc)
			if err != nil {
				return nil, err
			}
			for _, s := range daySpans {
				clamped := intersectSpans([]span{s}, []span{bounds})
				out = append(out, clamped...)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return mergeSpans(out), nil
}

// dayOpenSpans builds the open span(s) for one day, splitting around the
// mid-day closed window when one is declared.
func dayOpenSpans(day time.Time, dh models.DayHours, hours models.WorkingHours, loc *time.Location) ([]span, error) {
	start, err := clockOnDay(day, dh.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := clockOnDay(day, dh.End, loc)
	if err != nil {
		return nil, err
	}

	open := []span{newSpan(start, end)}

	if hours.BreakStart != "" && hours.BreakEnd != "" {
		bs, err := clockOnDay(day, hours.BreakStart, loc)
		if err != nil {
			return nil, err
		}
		be, err := clockOnDay(day, hours.BreakEnd, loc)
		if err != nil {
			return nil, err
		}
		open = subtractSpans(open, []span{newSpan(bs, be)})
	}

	return open, nil
}

// clockOnDay resolves a "15:04" clock string on a given day in loc.
func clockOnDay(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, errors.NewInvalidRequestError(fmt.Sprintf("malformed clock time %q", clock))
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, errors.NewInvalidRequestError(fmt.Sprintf("malformed clock time %q", clock))
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, errors.NewInvalidRequestError(fmt.Sprintf("malformed clock time %q", clock))
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}

// sliceSlots cuts each common free window into fixed-duration,
// non-overlapping slots from its start, then applies the optional
// quorum and the per-day cap.
func sliceSlots(common []span, req models.MeetingRequest, optionalFree [][]span) []models.MeetingSlot {
	var slots []models.MeetingSlot
	perDay := map[string]int{}

	for _, w := range common {
		for start := w.start; !start.Add(req.Duration).After(w.end); start = start.Add(req.Duration) {
			s := span{start: start, end: start.Add(req.Duration)}

			freeCount := 0
			for _, free := range optionalFree {
				if coveredBy(s, free) {
					freeCount++
				}
			}
			if freeCount < req.Quorum {
				continue
			}

			if req.MaxPerDay > 0 {
				dayKey := s.start.Format("2006-01-02")
				if perDay[dayKey] >= req.MaxPerDay {
					continue
				}
				perDay[dayKey]++
			}

			slots = append(slots, models.MeetingSlot{
				Start:        s.start,
				End:          s.end,
				OptionalFree: freeCount,
			})
		}
	}
	return slots
}
