package container

import (
	"context"
	"fmt"
	"net/http"

	"food-quality-api/internal/assess"
	"food-quality-api/internal/config"
	"food-quality-api/internal/features"
	"food-quality-api/internal/llm"
	"food-quality-api/internal/reference"
	"food-quality-api/internal/service"
	"food-quality-api/internal/storage"
	"food-quality-api/internal/transport"
)

const statsSystemPrompt = "You are an expert in analyzing food freshness from image statistics."

// Container holds all application dependencies
type Container struct {
	config   *config.Config
	gemini   *llm.GeminiClient
	profiles *reference.Cache
	service  service.AssessmentService
	handler  http.Handler
}

// NewContainer builds the dependency graph: collaborators first, then the
// cache and assessor over them, then the service and HTTP handler.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	ollama := llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.CollaboratorTimeout)
	openai := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, statsSystemPrompt, cfg.CollaboratorTimeout)
	mealClassifier := llm.NewHTTPMealClassifier(cfg.MealClassifierURL, cfg.CollaboratorTimeout)

	profiles := reference.NewCache(gemini, reference.Options{
		MaxEntries: cfg.CacheMaxEntries,
		TTL:        cfg.CacheTTL,
	})

	extractor := features.NewExtractor()
	assessor := assess.NewAssessor(gemini)
	uploads := storage.NewUploadReader(cfg.MaxUploadSize)

	svc := service.NewAssessmentService(
		extractor,
		profiles,
		assessor,
		openai,
		ollama,
		gemini,
		mealClassifier,
	)

	return &Container{
		config:   cfg,
		gemini:   gemini,
		profiles: profiles,
		service:  svc,
		handler:  transport.NewHandler(svc, uploads, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
