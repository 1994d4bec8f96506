// internal/calendar/resolver.go
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"

	"github.com/redis/go-redis/v9"
)

// Resolver fetches an interviewer's busy intervals and normalizes them:
// UTC, whole-second granularity, sorted by start, overlapping or
// adjacent intervals merged. It holds no cross-call state; the redis
// cache only smooths repeated fetches within a short TTL.
type Resolver struct {
	api      API
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewResolver(api API, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		api:      api,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "availability-resolver"}),
	}
}

// Resolve returns the interviewer's merged busy intervals inside the
// window. A failed fetch surfaces as a retryable CALENDAR_UNAVAILABLE.
func (r *Resolver) Resolve(ctx context.Context, iv models.Interviewer, window models.Window) ([]models.BusyInterval, error) {
	if !window.Valid() {
		return nil, errors.NewInvalidRequestError("availability window start must precede end")
	}

	cacheKey := fmt.Sprintf("busy:%s:%d:%d", iv.CalendarRef, window.Start.Unix(), window.End.Unix())
	if cached := r.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	raw, err := r.api.ListBusy(ctx, iv.CalendarRef, window)
	if err != nil {
		r.logger.Warn("busy fetch failed", map[string]interface{}{
			"interviewerId": iv.ID,
			"calendarRef":   iv.CalendarRef,
			"error":         err,
		})
		return nil, errors.NewUnavailableDataError(iv.CalendarRef, err)
	}

	intervals := normalize(iv.ID, raw, window)

	r.toCache(ctx, cacheKey, intervals)

	r.logger.Debug("availability resolved", map[string]interface{}{
		"interviewerId": iv.ID,
		"intervals":     len(intervals),
	})
	return intervals, nil
}

// normalize converts raw API intervals to UTC whole-second intervals
// clipped to the window, drops malformed ones, and merges the rest.
func normalize(interviewerID string, raw []models.BusyInterval, window models.Window) []models.BusyInterval {
	clipped := make([]models.BusyInterval, 0, len(raw))
	for _, b := range raw {
		start := b.Start.UTC().Truncate(time.Second)
		end := b.End.UTC().Truncate(time.Second)
		if !start.Before(end) {
			continue
		}
		if start.Before(window.Start) {
			start = window.Start.UTC().Truncate(time.Second)
		}
		if end.After(window.End) {
			end = window.End.UTC().Truncate(time.Second)
		}
		if !start.Before(end) {
			continue
		}
		clipped = append(clipped, models.BusyInterval{InterviewerID: interviewerID, Start: start, End: end})
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	merged := make([]models.BusyInterval, 0, len(clipped))
	for _, b := range clipped {
		if len(merged) > 0 && !b.Start.After(merged[len(merged)-1].End) {
			if b.End.After(merged[len(merged)-1].End) {
				merged[len(merged)-1].End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

func (r *Resolver) fromCache(ctx context.Context, key string) []models.BusyInterval {
	if r.redis == nil {
		return nil
	}
	val, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var intervals []models.BusyInterval
	if err := json.Unmarshal([]byte(val), &intervals); err != nil {
		return nil
	}
	return intervals
}

func (r *Resolver) toCache(ctx context.Context, key string, intervals []models.BusyInterval) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(intervals)
	if err != nil {
		return
	}
	r.redis.Set(ctx, key, data, r.cacheTTL)
}
