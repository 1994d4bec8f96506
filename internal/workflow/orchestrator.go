// internal/workflow/orchestrator.go
// Package workflow drives a candidate through the hiring pipeline:
// analysis, scoring, conditional scheduling and notification. The
// orchestrator owns every Candidate mutation; other components are
// pure functions over the inputs they are handed.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hiring-coordinator/internal/calendar"
	"hiring-coordinator/internal/common/config"
	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/common/metrics"
	"hiring-coordinator/internal/common/observability"
	"hiring-coordinator/internal/models"
	"hiring-coordinator/internal/notify"
	"hiring-coordinator/internal/scheduler"
)

// Scorer produces the score result and parsed CV for a résumé.
type Scorer interface {
	Score(ctx context.Context, resumeText string, jobSpec models.JobSpec) (*models.ScoreResult, *models.ParsedCV, error)
}

// AvailabilityResolver fetches one interviewer's normalized busy intervals.
type AvailabilityResolver interface {
	Resolve(ctx context.Context, iv models.Interviewer, window models.Window) ([]models.BusyInterval, error)
}

// EventCreator books the interview on the external calendar.
type EventCreator interface {
	CreateEvent(ctx context.Context, req calendar.EventRequest) (*calendar.EventResult, error)
}

// CandidateRepo persists candidate state between transitions.
type CandidateRepo interface {
	UpdateStage(ctx context.Context, c *models.Candidate) error
}

// SlotFinder computes bookable slots from a request and busy data.
// scheduler.FindSlots in production; swappable for tests.
type SlotFinder func(req models.MeetingRequest, busy map[string][]models.BusyInterval) ([]models.MeetingSlot, error)

// maxAlternateSlots bounds how many later slots are offered to the
// candidate for rebooking.
const maxAlternateSlots = 2

type Orchestrator struct {
	scorer    Scorer
	resolver  AvailabilityResolver
	events    EventCreator
	findSlots SlotFinder
	mailer    notify.Mailer
	alerter   notify.Alerter
	repo      CandidateRepo

	retryCfg config.RetryConfig
	schedCfg config.SchedulingConfig
	obs      *observability.Observability
	logger   logger.Logger
}

type Dependencies struct {
	Scorer    Scorer
	Resolver  AvailabilityResolver
	Events    EventCreator
	FindSlots SlotFinder
	Mailer    notify.Mailer
	Alerter   notify.Alerter
	Repo      CandidateRepo

	RetryConfig      config.RetryConfig
	SchedulingConfig config.SchedulingConfig
	Observability    *observability.Observability
	Logger           logger.Logger
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	findSlots := deps.FindSlots
	if findSlots == nil {
		findSlots = scheduler.FindSlots
	}
	alerter := deps.Alerter
	if alerter == nil {
		alerter = notify.NopAlerter{}
	}
	return &Orchestrator{
		scorer:    deps.Scorer,
		resolver:  deps.Resolver,
		events:    deps.Events,
		findSlots: findSlots,
		mailer:    deps.Mailer,
		alerter:   alerter,
		repo:      deps.Repo,
		retryCfg:  deps.RetryConfig,
		schedCfg:  deps.SchedulingConfig,
		obs:       deps.Observability,
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Run advances the candidate from submission to a terminal stage. The
// candidate ends in StageDone (scheduled or rejected, notified) or
// StageFailed with the originating stage and error kind recorded.
// Runs for different candidates are independent and may execute
// concurrently.
func (o *Orchestrator) Run(ctx context.Context, c *models.Candidate, jobSpec models.JobSpec, interviewers []models.Interviewer) error {
	log := o.logger.WithFields(map[string]interface{}{"candidateId": c.ID})
	log.Info("pipeline run started", map[string]interface{}{
		"jobSpecId": jobSpec.ID,
	})

	if err := o.analyze(ctx, c, jobSpec, log); err != nil {
		return o.fail(ctx, c, models.StageAnalyzing, err, log)
	}

	if !c.Score.Qualified {
		log.Info("candidate rejected by score", map[string]interface{}{
			"score":     c.Score.Score,
			"threshold": jobSpec.PassingScore,
		})
		return o.notifyAndFinish(ctx, c, notify.OutcomeRejected, log)
	}

	if c.Score.Priority == models.PriorityHighlyRecommended {
		o.alerter.AlertHighPriority(ctx, *c)
	}

	if err := o.schedule(ctx, c, interviewers, log); err != nil {
		return o.fail(ctx, c, models.StageScheduling, err, log)
	}

	return o.notifyAndFinish(ctx, c, notify.OutcomeScheduled, log)
}

// --- Analyzing -> Scored ---

func (o *Orchestrator) analyze(ctx context.Context, c *models.Candidate, jobSpec models.JobSpec, log logger.Logger) error {
	started := time.Now()
	o.transition(ctx, c, models.StageAnalyzing, log)

	var (
		score  *models.ScoreResult
		parsed *models.ParsedCV
	)
	err := retryWithBackoff(ctx, o.retryCfg, log, "cv analysis", func(ctx context.Context) error {
		var err error
		score, parsed, err = o.scorer.Score(ctx, c.ResumeText, jobSpec)
		return err
	})
	o.recordStage(ctx, models.StageAnalyzing, started)
	if err != nil {
		return err
	}

	c.Score = score
	c.ParsedCV = parsed
	o.transition(ctx, c, models.StageScored, log)
	return nil
}

// --- Scored(qualified) -> Scheduling -> Scheduled ---

func (o *Orchestrator) schedule(ctx context.Context, c *models.Candidate, interviewers []models.Interviewer, log logger.Logger) error {
	started := time.Now()
	o.transition(ctx, c, models.StageScheduling, log)

	req, err := o.buildRequest(interviewers)
	if err != nil {
		return err
	}

	busy, err := o.fetchAvailability(ctx, req, log)
	if err != nil {
		return err
	}

	slots, err := o.findSlots(req, busy)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return errors.NewNoSlotAvailableError(fmt.Sprintf(
			"no common slot for %d required interviewers within %s to %s",
			len(req.Required),
			req.Window.Start.Format(time.RFC3339),
			req.Window.End.Format(time.RFC3339)))
	}

	chosen := slots[0]
	alternates := slots[1:]
	if len(alternates) > maxAlternateSlots {
		alternates = alternates[:maxAlternateSlots]
	}

	attendees := make([]string, 0, len(interviewers)+1)
	attendees = append(attendees, c.Email)
	for _, iv := range interviewers {
		attendees = append(attendees, iv.Email)
	}

	c.Scheduling = &models.SchedulingResult{
		Slot:       chosen,
		Attendees:  attendees,
		Alternates: alternates,
	}

	var result *calendar.EventResult
	err = retryWithBackoff(ctx, o.retryCfg, log, "calendar event creation", func(ctx context.Context) error {
		var err error
		result, err = o.events.CreateEvent(ctx, calendar.EventRequest{
			CalendarRef:   o.organizerRef(req),
			Summary:       notify.EventSummary(*c),
			Description:   notify.EventDescription(*c),
			Start:         chosen.Start,
			End:           chosen.End,
			Timezone:      o.schedCfg.DefaultTimezone,
			Attendees:     attendees,
			AddConference: true,
		})
		return err
	})
	o.recordStage(ctx, models.StageScheduling, started)
	if err != nil {
		// EventCreator implementations outside this module may fail with
		// uncoded errors; the failure record still needs a kind.
		if errors.CodeOf(err) == "" {
			err = errors.NewEventCreateFailedError(err)
		}
		return err
	}

	c.Scheduling.EventID = result.EventID
	c.Scheduling.EventLink = result.EventLink
	o.transition(ctx, c, models.StageScheduled, log)

	log.Info("interview scheduled", map[string]interface{}{
		"eventId":   result.EventID,
		"slotStart": chosen.Start.Format(time.RFC3339),
	})
	return nil
}

func (o *Orchestrator) buildRequest(interviewers []models.Interviewer) (models.MeetingRequest, error) {
	var req models.MeetingRequest
	for _, iv := range interviewers {
		if len(iv.Hours.Days) == 0 {
			iv.Hours = o.defaultHours()
		}
		if iv.Role == models.RoleOptional {
			req.Optional = append(req.Optional, iv)
		} else {
			req.Required = append(req.Required, iv)
		}
	}
	if len(req.Required) == 0 {
		return req, errors.NewInvalidRequestError("at least one required interviewer is needed")
	}

	now := time.Now().UTC().Truncate(time.Second)
	days := o.schedCfg.SearchDaysAhead
	if days <= 0 {
		days = 7
	}
	duration := time.Duration(o.schedCfg.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = 45 * time.Minute
	}

	req.Window = models.Window{Start: now, End: now.AddDate(0, 0, days)}
	req.Duration = duration
	req.Buffer = time.Duration(o.schedCfg.BufferMinutes) * time.Minute
	req.MaxPerDay = o.schedCfg.MaxSlotsPerDay
	return req, nil
}

// defaultHours is the working-hours policy applied to an interviewer
// with no hours configured: the configured workday on weekdays, with
// the lunch window closed.
func (o *Orchestrator) defaultHours() models.WorkingHours {
	start := o.schedCfg.WorkdayStart
	if start == "" {
		start = "10:00"
	}
	end := o.schedCfg.WorkdayEnd
	if end == "" {
		end = "18:00"
	}
	days := make(map[string]models.DayHours, 5)
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		days[d] = models.DayHours{Start: start, End: end}
	}
	return models.WorkingHours{
		Timezone:   o.schedCfg.DefaultTimezone,
		Days:       days,
		BreakStart: o.schedCfg.LunchStart,
		BreakEnd:   o.schedCfg.LunchEnd,
	}
}

// organizerRef is the calendar the event is created on: the first
// required interviewer's.
func (o *Orchestrator) organizerRef(req models.MeetingRequest) string {
	return req.Required[0].CalendarRef
}

// fetchAvailability fans out one fetch per interviewer, concurrently.
// A required interviewer's fetch failing after retries fails the stage;
// a failed optional fetch degrades that interviewer to fully busy by
// leaving their key out of the map.
func (o *Orchestrator) fetchAvailability(ctx context.Context, req models.MeetingRequest, log logger.Logger) (map[string][]models.BusyInterval, error) {
	busy := make(map[string][]models.BusyInterval)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	fetch := func(iv models.Interviewer, required bool) func() error {
		return func() error {
			var intervals []models.BusyInterval
			err := retryWithBackoff(gctx, o.retryCfg, log, "availability fetch", func(ctx context.Context) error {
				var err error
				intervals, err = o.resolver.Resolve(ctx, iv, req.Window)
				return err
			})
			if err != nil {
				if required {
					return err
				}
				log.Warn("optional interviewer availability unavailable, treating as fully busy", map[string]interface{}{
					"interviewerId": iv.ID,
					"error":         err,
				})
				return nil
			}

			mu.Lock()
			busy[iv.ID] = intervals
			mu.Unlock()
			return nil
		}
	}

	for _, iv := range req.Required {
		g.Go(fetch(iv, true))
	}
	for _, iv := range req.Optional {
		g.Go(fetch(iv, false))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return busy, nil
}

// --- Notifying -> Done ---

// notifyAndFinish dispatches the outcome artifact and closes the run.
// Notification is attempted even when the surrounding context was
// cancelled, so a booked event never goes unannounced.
func (o *Orchestrator) notifyAndFinish(ctx context.Context, c *models.Candidate, outcome notify.Outcome, log logger.Logger) error {
	started := time.Now()
	o.transition(ctx, c, models.StageNotifying, log)

	notifyCtx := context.WithoutCancel(ctx)

	artifact, err := notify.Compose(*c, outcome)
	if err == nil {
		err = retryWithBackoff(notifyCtx, o.retryCfg, log, "notification dispatch", func(ctx context.Context) error {
			return o.mailer.Send(ctx, c.Email, artifact)
		})
	}
	o.recordStage(notifyCtx, models.StageNotifying, started)
	if err != nil {
		return o.fail(notifyCtx, c, models.StageNotifying, err, log)
	}

	o.transition(notifyCtx, c, models.StageDone, log)
	metrics.PipelineRunsCompleted.WithLabelValues(string(outcome)).Inc()
	if o.obs != nil {
		o.obs.RecordRunCompleted(notifyCtx, string(outcome))
	}

	log.Info("pipeline run finished", map[string]interface{}{
		"outcome": string(outcome),
	})
	return nil
}

// fail records the terminal failure, persists it and still attempts a
// candidate notification so the run never ends silently.
func (o *Orchestrator) fail(ctx context.Context, c *models.Candidate, stage models.Stage, cause error, log logger.Logger) error {
	code := string(errors.CodeOf(cause))
	c.Failure = &models.FailureInfo{
		Stage:     stage,
		ErrorCode: code,
		Reason:    cause.Error(),
		At:        time.Now().UTC(),
	}
	o.transition(ctx, c, models.StageFailed, log)

	metrics.PipelineRunsFailed.WithLabelValues(string(stage), code).Inc()
	if o.obs != nil {
		o.obs.RecordRunCompleted(ctx, "failed")
	}
	log.Error("pipeline run failed", map[string]interface{}{
		"stage":     string(stage),
		"errorCode": code,
		"error":     cause,
	})

	notifyCtx := context.WithoutCancel(ctx)
	if artifact, composeErr := notify.Compose(*c, notify.OutcomeFailed); composeErr == nil {
		if sendErr := o.mailer.Send(notifyCtx, c.Email, artifact); sendErr != nil {
			log.Warn("failure notification could not be delivered", map[string]interface{}{
				"error": sendErr,
			})
		}
	}

	return cause
}

// transition is the single mutation path for the candidate's stage.
// Persistence failures are logged but do not abort the run; in-memory
// state remains authoritative for its duration.
func (o *Orchestrator) transition(ctx context.Context, c *models.Candidate, stage models.Stage, log logger.Logger) {
	c.Stage = stage
	c.UpdatedAt = time.Now().UTC()

	if o.repo != nil {
		if err := o.repo.UpdateStage(ctx, c); err != nil {
			log.Warn("stage persistence failed", map[string]interface{}{
				"stage": string(stage),
				"error": err,
			})
		}
	}

	log.Debug("stage transition", map[string]interface{}{
		"stage": string(stage),
	})
}

func (o *Orchestrator) recordStage(ctx context.Context, stage models.Stage, started time.Time) {
	elapsed := time.Since(started)
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if o.obs != nil {
		o.obs.RecordStageDuration(ctx, string(stage), elapsed)
	}
}
