// internal/scoring/coordinator.go
package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hiring-coordinator/internal/common/config"
	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"
)

// Coordinator turns a raw external analysis into a ScoreResult. The
// qualification verdict is computed here, never taken from the model:
// verdict = score >= the job spec's passing threshold.
type Coordinator struct {
	analyzer Analyzer
	cfg      config.ScoringConfig
	logger   logger.Logger
}

func NewCoordinator(analyzer Analyzer, cfg config.ScoringConfig, log logger.Logger) *Coordinator {
	return &Coordinator{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "scoring-coordinator"}),
	}
}

// Score evaluates the résumé against the job spec. A malformed or
// out-of-range external score is reported as ANALYSIS_MALFORMED, never
// silently clamped.
func (c *Coordinator) Score(ctx context.Context, resumeText string, jobSpec models.JobSpec) (*models.ScoreResult, *models.ParsedCV, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, nil, errors.NewInvalidRequestError("resume text must not be empty")
	}
	if jobSpec.ID == "" {
		return nil, nil, errors.NewInvalidRequestError("job spec reference must be resolvable")
	}

	if c.cfg.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	analysis, err := c.analyzer.Analyze(ctx, resumeText, jobSpec)
	if err != nil {
		return nil, nil, err
	}
	if analysis == nil {
		return nil, nil, errors.NewAnalysisMalformedError("analyzer returned no result")
	}

	if analysis.Score < 0 || analysis.Score > 100 {
		return nil, nil, errors.NewAnalysisMalformedError(
			fmt.Sprintf("score %.2f outside the 0-100 range", analysis.Score))
	}

	threshold := jobSpec.PassingScore
	if threshold <= 0 {
		threshold = c.cfg.PassingScore
	}
	highWatermark := jobSpec.HighWatermark
	if highWatermark <= 0 {
		highWatermark = c.cfg.HighWatermark
	}

	result := &models.ScoreResult{
		Score:     analysis.Score,
		Qualified: analysis.Score >= threshold,
		Priority:  c.classify(analysis, threshold, highWatermark),
		Rationale: analysis.Rationale,
	}

	c.logger.Info("candidate scored", map[string]interface{}{
		"jobSpecId": jobSpec.ID,
		"score":     result.Score,
		"qualified": result.Qualified,
		"priority":  string(result.Priority),
	})

	parsed := analysis.ParsedCV
	return result, &parsed, nil
}

// classify prefers the analyzer's own tier when it is one of the known
// values, falling back to a threshold-derived tier otherwise.
func (c *Coordinator) classify(analysis *Analysis, threshold, highWatermark float64) models.Priority {
	switch models.Priority(analysis.Priority) {
	case models.PriorityHighlyRecommended, models.PriorityRecommended, models.PriorityNotRecommended:
		return models.Priority(analysis.Priority)
	}

	switch {
	case highWatermark > 0 && analysis.Score >= highWatermark:
		return models.PriorityHighlyRecommended
	case analysis.Score >= threshold:
		return models.PriorityRecommended
	default:
		return models.PriorityNotRecommended
	}
}
