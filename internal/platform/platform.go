// Package platform selects the recipe generator named by the configuration.
package platform

import (
	"context"
	"fmt"
	"io"

	"chefsnap/internal/app"
	"chefsnap/internal/config"
	"chefsnap/internal/logger"
	"chefsnap/internal/platform/gemini"
	"chefsnap/internal/platform/localllm"
)

// Generator is a recipe generator holding resources that must be released.
type Generator interface {
	app.Generator
	io.Closer
}

var (
	_ Generator = (*gemini.Client)(nil)
	_ Generator = (*localllm.Client)(nil)
)

// NewGenerator builds the generator for cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.Config, log *logger.Logger) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderLocal:
		log.Info("using local LLM at %s", cfg.LocalLLMURL)
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel, log), nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey,
			gemini.WithTextModel(cfg.TextModel),
			gemini.WithImageModel(cfg.ImageModel),
			gemini.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		return client, nil
	}
}
