// internal/calendar/resolver_test.go
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
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

type fakeAPI struct {
	busy  []models.BusyInterval
	err   error
	calls int
}

func (f *fakeAPI) ListBusy(ctx context.Context, calendarRef string, window models.Window) ([]models.BusyInterval, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.busy, nil
}

func (f *fakeAPI) CreateEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func setupMiniRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func mkTime(t *testing.T, value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func testInterviewer() models.Interviewer {
	return models.Interviewer{ID: "iv-1", Name: "Grace", CalendarRef: "cal-grace", Role: models.RoleRequired}
}

func testWindow(t *testing.T) models.Window {
	return models.Window{
		Start: mkTime(t, "2025-12-01T00:00:00Z"),
		End:   mkTime(t, "2025-12-08T00:00:00Z"),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestResolver_Resolve_NormalizesAndMerges(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	api := &fakeAPI{busy: []models.BusyInterval{
		// Out of order, non-UTC, overlapping and adjacent intervals.
		{Start: mkTime(t, "2025-12-01T14:00:00Z"), End: mkTime(t, "2025-12-01T15:00:00Z")},
		{Start: time.Date(2025, 12, 1, 11, 0, 0, 0, berlin), End: time.Date(2025, 12, 1, 12, 0, 0, 0, berlin)}, // 10:00-11:00 UTC
		{Start: mkTime(t, "2025-12-01T10:30:00Z"), End: mkTime(t, "2025-12-01T11:30:00Z")},
		{Start: mkTime(t, "2025-12-01T11:30:00Z"), End: mkTime(t, "2025-12-01T12:00:00Z")},
	}}
	r := NewResolver(api, nil, time.Minute, newTestLogger(t))

	intervals, err := r.Resolve(context.Background(), testInterviewer(), testWindow(t))

	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, mkTime(t, "2025-12-01T10:00:00Z"), intervals[0].Start)
	assert.Equal(t, mkTime(t, "2025-12-01T12:00:00Z"), intervals[0].End)
	assert.Equal(t, mkTime(t, "2025-12-01T14:00:00Z"), intervals[1].Start)
	assert.Equal(t, "iv-1", intervals[0].InterviewerID)
}

func TestResolver_Resolve_ClipsToWindowAndDropsMalformed(t *testing.T) {
	window := testWindow(t)
	api := &fakeAPI{busy: []models.BusyInterval{
		// Straddles the window start.
		{Start: mkTime(t, "2025-11-30T22:00:00Z"), End: mkTime(t, "2025-12-01T02:00:00Z")},
		// Entirely outside.
		{Start: mkTime(t, "2025-11-01T10:00:00Z"), End: mkTime(t, "2025-11-01T11:00:00Z")},
		// Inverted, must be dropped.
		{Start: mkTime(t, "2025-12-02T12:00:00Z"), End: mkTime(t, "2025-12-02T10:00:00Z")},
	}}
	r := NewResolver(api, nil, time.Minute, newTestLogger(t))

	intervals, err := r.Resolve(context.Background(), testInterviewer(), window)

	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Equal(t, window.Start, intervals[0].Start)
	assert.Equal(t, mkTime(t, "2025-12-01T02:00:00Z"), intervals[0].End)
}

func TestResolver_Resolve_FetchFailure(t *testing.T) {
	api := &fakeAPI{err: fmt.Errorf("connection refused")}
	r := NewResolver(api, nil, time.Minute, newTestLogger(t))

	_, err := r.Resolve(context.Background(), testInterviewer(), testWindow(t))

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCalendarUnavailable))
	assert.True(t, errors.IsRetryable(err))
}

func TestResolver_Resolve_InvalidWindow(t *testing.T) {
	api := &fakeAPI{}
	r := NewResolver(api, nil, time.Minute, newTestLogger(t))

	window := testWindow(t)
	window.Start, window.End = window.End, window.Start
	_, err := r.Resolve(context.Background(), testInterviewer(), window)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	assert.Zero(t, api.calls)
}

func TestResolver_Resolve_CachesFetches(t *testing.T) {
	api := &fakeAPI{busy: []models.BusyInterval{
		{Start: mkTime(t, "2025-12-01T10:00:00Z"), End: mkTime(t, "2025-12-01T11:00:00Z")},
	}}
	rdb := setupMiniRedis(t)
	r := NewResolver(api, rdb, time.Minute, newTestLogger(t))

	first, err := r.Resolve(context.Background(), testInterviewer(), testWindow(t))
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), testInterviewer(), testWindow(t))
	require.NoError(t, err)

	assert.Equal(t, 1, api.calls, "second resolve must be served from cache")
	assert.Equal(t, first, second)
}

func TestResolver_Resolve_CacheWriteUsesTTL(t *testing.T) {
	window := testWindow(t)
	api := &fakeAPI{busy: []models.BusyInterval{
		{Start: mkTime(t, "2025-12-01T10:00:00Z"), End: mkTime(t, "2025-12-01T11:00:00Z")},
	}}

	expected := []models.BusyInterval{{
		InterviewerID: "iv-1",
		Start:         mkTime(t, "2025-12-01T10:00:00Z"),
		End:           mkTime(t, "2025-12-01T11:00:00Z"),
	}}
	data, err := json.Marshal(expected)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	key := fmt.Sprintf("busy:cal-grace:%d:%d", window.Start.Unix(), window.End.Unix())
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, data, time.Minute).SetVal("OK")

	r := NewResolver(api, rdb, time.Minute, newTestLogger(t))
	intervals, err := r.Resolve(context.Background(), testInterviewer(), window)

	require.NoError(t, err)
	assert.Equal(t, expected, intervals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_Resolve_DistinctWindowsDoNotShareCache(t *testing.T) {
	api := &fakeAPI{}
	rdb := setupMiniRedis(t)
	r := NewResolver(api, rdb, time.Minute, newTestLogger(t))

	windowA := testWindow(t)
	windowB := models.Window{Start: windowA.Start.Add(24 * time.Hour), End: windowA.End}

	_, err := r.Resolve(context.Background(), testInterviewer(), windowA)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), testInterviewer(), windowB)
	require.NoError(t, err)

	assert.Equal(t, 2, api.calls)
}
