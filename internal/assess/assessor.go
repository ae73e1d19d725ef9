package assess

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"food-quality-api/internal/features"
	"food-quality-api/internal/llm"
	"food-quality-api/internal/logger"
	"food-quality-api/internal/reference"
	"food-quality-api/pkg/models"
	"food-quality-api/pkg/validation"
)

// Assessor turns extracted features plus a reference profile into a
// freshness verdict by way of a vision collaborator. One round trip per
// request, no retry: any failure along the way degrades to a fixed BAD
// verdict, because an unanswerable safety question fails closed.
type Assessor struct {
	vision    llm.VisionCompleter
	validator *validation.VerdictValidator
}

// NewAssessor creates an assessor over the given vision collaborator
func NewAssessor(vision llm.VisionCompleter) *Assessor {
	return &Assessor{
		vision:    vision,
		validator: validation.NewVerdictValidator(),
	}
}

// Assess runs the prompt/response round trip for one image
func (a *Assessor) Assess(ctx context.Context, image []byte, mimeType, foodName string, f features.Features, profile reference.Profile) models.FreshnessVerdict {
	prompt := buildAssessmentPrompt(foodName, f, profile)

	raw, err := a.vision.CompleteVision(ctx, prompt, image, mimeType)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"food_name": foodName,
		}).Warn("Vision collaborator failed, returning fallback verdict")
		return FallbackVerdict()
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		logger.WithFields(logrus.Fields{
			"food_name": foodName,
			"response":  truncate(raw, 200),
		}).Warn("Could not parse collaborator response, returning fallback verdict")
		return FallbackVerdict()
	}
	return a.validator.Repair(verdict)
}

// StatsCompletion runs the stats-only variant: a text completion over the
// numeric descriptors, with no structured output contract.
func StatsCompletion(ctx context.Context, completer llm.TextCompleter, f features.Features) (string, error) {
	return completer.CompleteText(ctx, buildStatsPrompt(f))
}

// StatsVisionCompletion is the stats variant for vision-capable
// collaborators, which also see the image itself.
func StatsVisionCompletion(ctx context.Context, completer llm.VisionCompleter, image []byte, mimeType string, f features.Features) (string, error) {
	return completer.CompleteVision(ctx, buildStatsPrompt(f), image, mimeType)
}

// parseVerdict tries the whole body as JSON first, then the substring
// between the first '{' and the last '}'.
func parseVerdict(raw string) (models.FreshnessVerdict, bool) {
	var verdict models.FreshnessVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err == nil {
		return verdict, true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return models.FreshnessVerdict{}, false
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &verdict); err != nil {
		return models.FreshnessVerdict{}, false
	}
	return verdict, true
}

// FallbackVerdict is the fixed fail-closed answer used whenever the
// collaborator cannot produce a usable one.
func FallbackVerdict() models.FreshnessVerdict {
	return models.FreshnessVerdict{
		Assessment:      models.AssessmentBad,
		Confidence:      0,
		Reasoning:       "Error in analysis. Unable to determine food quality.",
		Recommendations: "Please retry with a clearer image or consult a human expert.",
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
