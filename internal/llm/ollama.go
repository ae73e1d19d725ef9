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

// OllamaClient talks to a locally hosted model server over its generate API.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClient creates a client for a local Ollama server
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// CompleteText sends the prompt in a single non-streaming round trip
func (o *OllamaClient) CompleteText(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode ollama request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewBuffer(payload))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build ollama request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", apperrors.NewCollaboratorError("ollama server unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewCollaboratorError("failed to read ollama response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewCollaboratorError(
			fmt.Sprintf("ollama returned status %d", resp.StatusCode), nil)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperrors.NewMalformedResponseError("ollama response is not valid JSON", err)
	}
	if parsed.Response == "" {
		return "", apperrors.NewMalformedResponseError("empty ollama response", nil)
	}
	return strings.TrimSpace(parsed.Response), nil
}
