package assess

import (
	"encoding/json"
	"fmt"

	"food-quality-api/internal/features"
	"food-quality-api/internal/reference"
)

// buildAssessmentPrompt frames the vision collaborator as a food safety
// inspector and pins down both the decision policy (mandatory BAD on any
// spoilage signal or low confidence) and the output shape (strict JSON).
func buildAssessmentPrompt(foodName string, f features.Features, profile reference.Profile) string {
	refJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		refJSON = []byte("{}")
	}

	return fmt.Sprintf(`# Food Quality Assessment System

You are FoodQualityGPT, a specialized AI food safety inspector with expertise in visual food quality assessment.
Your task is to analyze food images to determine if they appear fresh and safe to eat.

## Assessment Framework
1. OBJECTIVE ANALYSIS: First analyze the quantitative visual measurements against reference values
2. VISUAL INSPECTION: Then analyze the actual image for signs of spoilage or quality issues
3. CONFIDENCE SCORING: Assign a confidence score to your assessment

## Food Item: %s

## Visual Measurements:
- HSV: (%.2f, %.2f, %.2f)
- Brightness: %.2f
- Vibrancy: %.2f
- Mold Indicator: %.2f%%

## Reference Values for %s:
%s

## Critical Rules:
- If you detect ANY signs of mold, spoilage, or food safety risks, you MUST classify as "BAD"
- Default to safety when uncertain - if confidence is below 70%%, classify as "BAD"
- Do NOT be swayed by aesthetic qualities - focus ONLY on food safety and freshness

## Output Format Requirements:
You MUST return a valid JSON object with these fields:
- assessment: Either "GOOD" or "BAD"
- confidence: Number between 0-100
- reasoning: Brief explanation (max 100 words)
- recommendations: Brief safety advice

Determine if this %s appears fresh and safe to eat based on visual analysis.
Return ONLY valid JSON with no additional text or explanation outside the JSON structure.`,
		foodName,
		f.AvgHSV[0], f.AvgHSV[1], f.AvgHSV[2],
		f.Brightness,
		f.Vibrancy,
		f.MoldPercentage,
		foodName,
		refJSON,
		foodName,
	)
}

// buildStatsPrompt is the lightweight variant used by the stats-only
// endpoints: no image context, just the numeric descriptors.
func buildStatsPrompt(f features.Features) string {
	return fmt.Sprintf(
		"Based on these image stats - HSV: (%.2f, %.2f, %.2f), Brightness: %.2f, Vibrancy: %.2f - "+
			"how fresh is the food? Respond with a short description.",
		f.AvgHSV[0], f.AvgHSV[1], f.AvgHSV[2], f.Brightness, f.Vibrancy,
	)
}
