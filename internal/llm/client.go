package llm

import "context"

// VisionCompleter accepts a prompt plus inline image bytes and returns
// free-form text, usually containing a JSON object.
type VisionCompleter interface {
	CompleteVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// TextCompleter accepts a prompt and returns free-form text.
type TextCompleter interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
}

// MealClassifier maps a short food description to one label from a fixed
// label set (breakfast, lunch, dinner, snacks).
type MealClassifier interface {
	ClassifyMeal(ctx context.Context, text string) (string, error)
}
