// Package embedding provides factory functions for creating embedding
// service adapters from configuration.
package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	ollamaembed "github.com/paperdex/paperdex-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/paperdex/paperdex-cli/internal/adapters/driven/embedding/openai"
	"github.com/paperdex/paperdex-cli/internal/core/domain"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity
// validation.
const pingTimeout = 5 * time.Second

// Providers supported by the factory.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Settings selects and configures an embedding provider.
type Settings struct {
	// Provider is the provider name, ollama or openai. Empty means
	// ollama.
	Provider string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model is the embedding model name. Empty uses the provider
	// default.
	Model string

	// APIKey authenticates against hosted providers.
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// SettingsFromConfig reads the embedding.* configuration keys. A
// missing API key falls back to the OPENAI_API_KEY environment
// variable.
func SettingsFromConfig(cfg driven.ConfigStore) Settings {
	s := Settings{
		Provider:   cfg.GetString("embedding.provider"),
		BaseURL:    cfg.GetString("embedding.base_url"),
		Model:      cfg.GetString("embedding.model"),
		APIKey:     cfg.GetString("embedding.api_key"),
		Dimensions: cfg.GetInt("embedding.dimensions"),
	}
	if s.APIKey == "" {
		s.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return s
}

// New creates the embedding service selected by the settings.
func New(settings Settings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case "", ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case ProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrInvalidInput, settings.Provider)
	}
}

// Validate creates a service from the settings and pings it, releasing
// the service afterwards. Used to check a configuration before a long
// ingestion run commits to it.
func Validate(settings Settings) error {
	svc, err := New(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable: %v",
			domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}
