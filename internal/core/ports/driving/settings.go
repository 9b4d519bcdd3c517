package driving

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied and defaults for anything unset.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set validates and persists a single dot-separated key.
	Set(key, value string) error

	// Keys returns the recognised setting keys.
	Keys() []string

	// Effective returns every key with its resolved value.
	Effective() (map[string]string, error)

	// IsSecret reports whether a key holds a credential.
	IsSecret(key string) bool

	// Validate checks the current settings can drive a pipeline run.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(ctx context.Context) error

	// ValidateLLMConfig pings the configured generation provider.
	ValidateLLMConfig(ctx context.Context) error
}
