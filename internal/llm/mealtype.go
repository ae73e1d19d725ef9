package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "food-quality-api/internal/errors"
)

// HTTPMealClassifier calls a fine-tuned meal-type classification sidecar.
// The sidecar takes a short food description and answers with one label from
// its fixed label set.
type HTTPMealClassifier struct {
	url    string
	client *http.Client
}

// NewHTTPMealClassifier creates a classifier client for the given endpoint
func NewHTTPMealClassifier(url string, timeout time.Duration) *HTTPMealClassifier {
	return &HTTPMealClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label string `json:"label"`
}

// ClassifyMeal returns the predicted meal-type label for the food text
func (c *HTTPMealClassifier) ClassifyMeal(ctx context.Context, text string) (string, error) {
	if c.url == "" {
		return "", apperrors.NewCollaboratorError("meal classifier URL not configured", nil)
	}

	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode classify request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(payload))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build classify request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewCollaboratorError("meal classifier unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewCollaboratorError("failed to read classifier response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewCollaboratorError(
			fmt.Sprintf("meal classifier returned status %d", resp.StatusCode), nil)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperrors.NewMalformedResponseError("classifier response is not valid JSON", err)
	}
	label := strings.ToLower(strings.TrimSpace(parsed.Label))
	if label == "" {
		return "", apperrors.NewMalformedResponseError("empty classifier label", nil)
	}
	return label, nil
}
