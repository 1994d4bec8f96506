// internal/models/score.go
package models

// Priority tiers mirror the recruiter-facing classification.
type Priority string

const (
	PriorityHighlyRecommended Priority = "highly-recommended"
	PriorityRecommended       Priority = "recommended"
	PriorityNotRecommended    Priority = "not-recommended"
)

// ScoreResult is the normalized outcome of CV analysis. Rationale is
// display-only; only Qualified drives pipeline control flow.
type ScoreResult struct {
	Score     float64  `json:"score"` // 0-100
	Qualified bool     `json:"qualified"`
	Priority  Priority `json:"priority"`
	Rationale string   `json:"rationale"`
}

// ParsedCV is the structured form of a resume as extracted by the
// analysis capability.
type ParsedCV struct {
	FullName       string       `json:"fullName"`
	Contact        Contact      `json:"contact"`
	Summary        string       `json:"summary"`
	Skills         []string     `json:"skills"`
	Languages      []string     `json:"languages"`
	Education      []Education  `json:"education"`
	Experience     []Experience `json:"experience"`
	Certifications []string     `json:"certifications"`
	Projects       []Project    `json:"projects"`
}

type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	Location string `json:"location"`
}

type Education struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
	StartYear   string `json:"startYear"`
	EndYear     string `json:"endYear"`
}

type Experience struct {
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
