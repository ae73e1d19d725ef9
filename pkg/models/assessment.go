package models

// FreshnessVerdict is the structured answer from a vision collaborator.
// Collaborators are not trusted to produce it well-formed; see
// pkg/validation for the repair rules.
type FreshnessVerdict struct {
	Assessment      string  `json:"assessment"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
	Recommendations string  `json:"recommendations"`
}

const (
	AssessmentGood    = "GOOD"
	AssessmentBad     = "BAD"
	AssessmentUnknown = "UNKNOWN"
)

// VisualFeatures is the client-facing slice of the extracted image features.
type VisualFeatures struct {
	AvgHSV         [3]float64 `json:"avg_hsv"`
	Brightness     float64    `json:"brightness"`
	Vibrancy       float64    `json:"vibrancy"`
	MoldPercentage float64    `json:"mold_percentage"`
}

// PredictResponse is the full assessment returned by POST /predict.
type PredictResponse struct {
	FoodName        string         `json:"food_name"`
	Assessment      string         `json:"assessment"`
	Confidence      float64        `json:"confidence"`
	Reasoning       string         `json:"reasoning"`
	Recommendations string         `json:"recommendations"`
	VisualFeatures  VisualFeatures `json:"visual_features"`
}

// TextPredictRequest is the payload of the metadata-only POST /predict/text.
type TextPredictRequest struct {
	Food     string  `json:"food" binding:"required"`
	HoursOld float64 `json:"hours_old"`
	Storage  string  `json:"storage"`
}

// TextPredictResponse echoes the request fields alongside the classifier
// label and the rule-based quality verdict.
type TextPredictResponse struct {
	Food     string  `json:"food"`
	MealType string  `json:"meal_type"`
	HoursOld float64 `json:"hours_old"`
	Storage  string  `json:"storage"`
	Quality  string  `json:"quality"`
}

// StatsPredictResponse is the stats-plus-completion variant response.
type StatsPredictResponse struct {
	Result     string     `json:"result"`
	HSV        [3]float64 `json:"hsv"`
	Brightness float64    `json:"brightness"`
	Vibrancy   float64    `json:"vibrancy"`
}

// ResultResponse carries only the collaborator's free-form text.
type ResultResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
