// internal/scoring/analyzer.go
// Package scoring evaluates a candidate's résumé against a job
// description. The semantic judgment is delegated to an external
// analysis capability; this package validates inputs, parses the
// external result and applies the passing threshold.
package scoring

import (
	"context"

	"hiring-coordinator/internal/models"
)

// Analysis is the raw result produced by the external capability,
// before threshold policy is applied.
type Analysis struct {
	ParsedCV  models.ParsedCV `json:"parsed_cv"`
	Score     float64         `json:"score"`
	Priority  string          `json:"priority"`
	Rationale string          `json:"rationale"`
}

// Analyzer abstracts the external résumé analysis capability.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText string, jobSpec models.JobSpec) (*Analysis, error)
}
