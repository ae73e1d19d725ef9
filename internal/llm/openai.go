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

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIClient backs the text-completion collaborator contract with the
// chat-completions API.
type OpenAIClient struct {
	apiKey       string
	model        string
	apiURL       string
	systemPrompt string
	client       *http.Client
}

// NewOpenAIClient creates a chat-completion client. The system prompt frames
// every completion and is fixed per client.
func NewOpenAIClient(apiKey, model, systemPrompt string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:       apiKey,
		model:        model,
		apiURL:       defaultOpenAIURL,
		systemPrompt: systemPrompt,
		client:       &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompleteText sends a system+user message pair and returns the first choice
func (o *OpenAIClient) CompleteText(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", apperrors.NewCollaboratorError("missing OPENAI_API_KEY", nil)
	}

	messages := []chatMessage{}
	if o.systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: o.systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build chat request", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", apperrors.NewCollaboratorError("chat completion request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewCollaboratorError("failed to read chat response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewCollaboratorError(
			fmt.Sprintf("chat completion returned status %d", resp.StatusCode), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", apperrors.NewMalformedResponseError("chat response is not valid JSON", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", apperrors.NewMalformedResponseError("empty chat completion", nil)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
