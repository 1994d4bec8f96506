// internal/scoring/genai.go
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"hiring-coordinator/internal/common/config"
	"hiring-coordinator/internal/common/errors"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/models"
)

const analysisPromptTemplate = `You are an AI assistant that reviews resumes (CVs) and evaluates their suitability for a job.

Your task is to:
- Extract structured candidate information from the provided CV.
- Compare this data against the provided job description.
- Score the candidate's fit on a 0-100 scale and classify their priority.

Job Description:
%s

Resume:
%s

Return the following JSON structure:

{
    "parsed_cv": {
        "fullName": "",
        "contact": {"email": "", "phone": "", "linkedin": "", "location": ""},
        "summary": "",
        "skills": [],
        "languages": [],
        "education": [{"degree": "", "field": "", "institution": "", "startYear": "", "endYear": ""}],
        "experience": [{"jobTitle": "", "company": "", "location": "", "startDate": "", "endDate": "", "description": ""}],
        "certifications": [],
        "projects": [{"title": "", "description": ""}]
    },
    "score": 0,
    "priority": "recommended" | "highly-recommended" | "not-recommended",
    "rationale": "Explain in 2-4 sentences why this candidate is classified as such. This text will be sent directly to the candidate as feedback."
}

If any section is missing in the CV, use empty strings or empty lists.
Normalize inconsistent date formats and job titles. Use your best judgment.

Respond with a valid JSON object only.`

// GenAIAnalyzer implements Analyzer on top of the Gemini API.
type GenAIAnalyzer struct {
	client    *genai.Client
	modelName string
	logger    logger.Logger
}

func NewGenAIAnalyzer(ctx context.Context, cfg config.GenAIConfig, log logger.Logger) (*GenAIAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenAIAnalyzer{
		client:    client,
		modelName: cfg.Model,
		logger:    log.WithFields(map[string]interface{}{"component": "genai-analyzer"}),
	}, nil
}

func (g *GenAIAnalyzer) Analyze(ctx context.Context, resumeText string, jobSpec models.JobSpec) (*Analysis, error) {
	prompt := fmt.Sprintf(analysisPromptTemplate, jobSpec.Description, resumeText)

	temperature := float32(0.1)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return nil, errors.NewAnalysisError(err)
	}
	if resp == nil {
		return nil, errors.NewAnalysisMalformedError("model returned nil response")
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.NewAnalysisMalformedError("model returned no text content")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &analysis); err != nil {
		g.logger.Warn("analysis response is not valid JSON", map[string]interface{}{"error": err})
		return nil, errors.NewAnalysisMalformedError(fmt.Sprintf("invalid JSON in model response: %v", err))
	}

	return &analysis, nil
}

// stripCodeFence removes a markdown ```json ... ``` wrapper the model
// sometimes emits around the payload.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
