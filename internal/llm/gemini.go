package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	apperrors "food-quality-api/internal/errors"
)

// GeminiClient backs both the vision-completion and text-completion
// collaborator contracts with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed collaborator client
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

// generationConfig keeps decoding tight so repeated calls on the same image
// stay close to each other.
func (g *GeminiClient) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		TopP:        genai.Ptr(float32(0.95)),
		TopK:        genai.Ptr(float32(40)),
	}
}

// CompleteText sends a text-only prompt and returns the raw completion
func (g *GeminiClient) CompleteText(ctx context.Context, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, g.generationConfig())
	if err != nil {
		return "", apperrors.NewCollaboratorError("gemini text completion failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", apperrors.NewMalformedResponseError("empty gemini response", nil)
	}
	return text, nil
}

// CompleteVision sends a prompt together with inline image bytes
func (g *GeminiClient) CompleteVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	content := genai.NewContentFromParts(parts, genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, g.generationConfig())
	if err != nil {
		return "", apperrors.NewCollaboratorError("gemini vision completion failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", apperrors.NewMalformedResponseError("empty gemini response", nil)
	}
	return text, nil
}
