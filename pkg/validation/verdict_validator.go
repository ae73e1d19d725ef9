package validation

import (
	"strings"

	"food-quality-api/pkg/models"
)

// VerdictValidator repairs collaborator verdicts into the shape the API
// promises: assessment is one of GOOD/BAD/UNKNOWN, confidence sits in
// [0,100], advisory strings are never empty.
type VerdictValidator struct {
	minConfidence float64
	maxConfidence float64
}

// NewVerdictValidator creates a validator with the standard 0-100
// confidence bounds.
func NewVerdictValidator() *VerdictValidator {
	return &VerdictValidator{
		minConfidence: 0,
		maxConfidence: 100,
	}
}

const missingFieldText = "Not provided"

// Repair normalizes a parsed verdict in place of rejecting it. Collaborator
// output is advisory, so a malformed field degrades to a safe default
// instead of failing the request.
func (v *VerdictValidator) Repair(verdict models.FreshnessVerdict) models.FreshnessVerdict {
	verdict.Assessment = normalizeAssessment(verdict.Assessment)
	verdict.Confidence = clamp(verdict.Confidence, v.minConfidence, v.maxConfidence)
	if strings.TrimSpace(verdict.Reasoning) == "" {
		verdict.Reasoning = missingFieldText
	}
	if strings.TrimSpace(verdict.Recommendations) == "" {
		verdict.Recommendations = missingFieldText
	}
	return verdict
}

func normalizeAssessment(assessment string) string {
	switch strings.ToUpper(strings.TrimSpace(assessment)) {
	case models.AssessmentGood:
		return models.AssessmentGood
	case models.AssessmentBad:
		return models.AssessmentBad
	default:
		return models.AssessmentUnknown
	}
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
