package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedAPIVersion    = "embedding.api_version"
	keyEmbedMode          = "embedding.mode"
	keyEmbedFailurePolicy = "embedding.failure_policy"
	keyEmbedRPS           = "embedding.requests_per_second"

	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMAPIVersion = "llm.api_version"

	keyChunkSize    = "chunking.size"
	keyChunkOverlap = "chunking.overlap"

	keyIngestWorkers = "ingest.workers"
	keyIngestDedup   = "ingest.dedup"

	keyAnswerTopK        = "answer.top_k"
	keyAnswerTemperature = "answer.temperature"
	keyAnswerMaxTokens   = "answer.max_tokens"
	keyAnswerPrompt      = "answer.system_prompt"
	keyAnswerRetrieval   = "answer.retrieval_timeout"
	keyAnswerGeneration  = "answer.generation_timeout"

	keyIndexKind           = "index.kind"
	keyIndexDataDir        = "index.data_dir"
	keyIndexWeaviateHost   = "index.weaviate_host"
	keyIndexWeaviateScheme = "index.weaviate_scheme"
	keyIndexWeaviateKey    = "index.weaviate_api_key"
	keyIndexWeaviateClass  = "index.weaviate_class"

	keySourceGitHubToken  = "sources.github_token"
	keySourceDriveToken   = "sources.drive_token"
	keySourceDriveCreds   = "sources.drive_credentials_file"
	keySourceDriveID      = "sources.drive_client_id"
	keySourceDriveSecret  = "sources.drive_client_secret"
	keySourceDriveRefresh = "sources.drive_refresh_token"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
)

// settingSpec describes how a key is parsed and checked before it is stored.
type settingSpec struct {
	kind  valueKind
	check func(string) error
}

var settingSpecs = map[string]settingSpec{
	keyEmbedProvider:      {kind: kindString, check: checkEmbeddingProvider},
	keyEmbedModel:         {kind: kindString},
	keyEmbedBaseURL:       {kind: kindString},
	keyEmbedAPIKey:        {kind: kindString},
	keyEmbedAPIVersion:    {kind: kindString},
	keyEmbedMode:          {kind: kindString, check: checkEnum(domain.EmbeddingMode.IsValid)},
	keyEmbedFailurePolicy: {kind: kindString, check: checkEnum(domain.EmbeddingFailurePolicy.IsValid)},
	keyEmbedRPS:           {kind: kindFloat, check: checkNonNegativeFloat},

	keyLLMProvider:   {kind: kindString, check: checkEnum(domain.AIProvider.IsValid)},
	keyLLMModel:      {kind: kindString},
	keyLLMBaseURL:    {kind: kindString},
	keyLLMAPIKey:     {kind: kindString},
	keyLLMAPIVersion: {kind: kindString},

	keyChunkSize:    {kind: kindInt, check: checkPositiveInt},
	keyChunkOverlap: {kind: kindInt, check: checkNonNegativeInt},

	keyIngestWorkers: {kind: kindInt, check: checkPositiveInt},
	keyIngestDedup:   {kind: kindString, check: checkEnum(domain.DedupPolicy.IsValid)},

	keyAnswerTopK:        {kind: kindInt, check: checkPositiveInt},
	keyAnswerTemperature: {kind: kindFloat, check: checkTemperature},
	keyAnswerMaxTokens:   {kind: kindInt, check: checkPositiveInt},
	keyAnswerPrompt:      {kind: kindString},
	keyAnswerRetrieval:   {kind: kindDuration},
	keyAnswerGeneration:  {kind: kindDuration},

	keyIndexKind:           {kind: kindString, check: checkEnum(domain.IndexKind.IsValid)},
	keyIndexDataDir:        {kind: kindString},
	keyIndexWeaviateHost:   {kind: kindString},
	keyIndexWeaviateScheme: {kind: kindString, check: checkScheme},
	keyIndexWeaviateKey:    {kind: kindString},
	keyIndexWeaviateClass:  {kind: kindString},

	keySourceGitHubToken:  {kind: kindString},
	keySourceDriveToken:   {kind: kindString},
	keySourceDriveCreds:   {kind: kindString},
	keySourceDriveID:      {kind: kindString},
	keySourceDriveSecret:  {kind: kindString},
	keySourceDriveRefresh: {kind: kindString},
}

// providerKeyEnv maps a provider to the environment variable holding its API key.
var providerKeyEnv = map[domain.AIProvider][]string{
	domain.AIProviderOpenAI:    {"OPENAI_API_KEY"},
	domain.AIProviderAzure:     {"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_KEY"},
	domain.AIProviderAnthropic: {"ANTHROPIC_API_KEY"},
	domain.AIProviderGemini:    {"GEMINI_API_KEY"},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	probe       driven.ProviderProbe
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. Environment overrides
// are read from the process environment. probe may be nil, in which case
// provider checks always pass.
func NewSettingsService(configStore driven.ConfigStore, probe driven.ProviderProbe) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		probe:       probe,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Passing nil disables overrides.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	s.getenv = getenv
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			APIVersion:        s.configStore.GetString(keyEmbedAPIVersion),
			Mode:              domain.EmbeddingMode(s.getString(keyEmbedMode, string(d.Embedding.Mode))),
			FailurePolicy:     domain.EmbeddingFailurePolicy(s.getString(keyEmbedFailurePolicy, string(d.Embedding.FailurePolicy))),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, d.Embedding.RequestsPerSecond),
		},
		LLM: domain.LLMSettings{
			Provider:   s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:      s.configStore.GetString(keyLLMModel),
			BaseURL:    s.configStore.GetString(keyLLMBaseURL),
			APIKey:     s.configStore.GetString(keyLLMAPIKey),
			APIVersion: s.configStore.GetString(keyLLMAPIVersion),
		},
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Ingest: domain.IngestSettings{
			Workers: s.getInt(keyIngestWorkers, d.Ingest.Workers),
			Dedup:   domain.DedupPolicy(s.getString(keyIngestDedup, string(d.Ingest.Dedup))),
		},
		Answer: domain.AnswerSettings{
			TopK:              s.getInt(keyAnswerTopK, d.Answer.TopK),
			Temperature:       float32(s.getFloat(keyAnswerTemperature, float64(d.Answer.Temperature))),
			MaxTokens:         s.getInt(keyAnswerMaxTokens, d.Answer.MaxTokens),
			SystemPrompt:      s.configStore.GetString(keyAnswerPrompt),
			RetrievalTimeout:  s.getDuration(keyAnswerRetrieval, d.Answer.RetrievalTimeout),
			GenerationTimeout: s.getDuration(keyAnswerGeneration, d.Answer.GenerationTimeout),
		},
		Index: domain.IndexSettings{
			Kind:           domain.IndexKind(s.getString(keyIndexKind, string(d.Index.Kind))),
			DataDir:        s.getString(keyIndexDataDir, d.Index.DataDir),
			WeaviateHost:   s.getString(keyIndexWeaviateHost, d.Index.WeaviateHost),
			WeaviateScheme: s.getString(keyIndexWeaviateScheme, d.Index.WeaviateScheme),
			WeaviateAPIKey: s.configStore.GetString(keyIndexWeaviateKey),
			WeaviateClass:  s.getString(keyIndexWeaviateClass, d.Index.WeaviateClass),
		},
		Sources: domain.SourceSettings{
			GitHubToken:          s.configStore.GetString(keySourceGitHubToken),
			DriveToken:           s.configStore.GetString(keySourceDriveToken),
			DriveCredentialsFile: s.configStore.GetString(keySourceDriveCreds),
			DriveClientID:        s.configStore.GetString(keySourceDriveID),
			DriveClientSecret:    s.configStore.GetString(keySourceDriveSecret),
			DriveRefreshToken:    s.configStore.GetString(keySourceDriveRefresh),
		},
	}

	// An explicit zero overlap is kept.
	if _, ok := s.configStore.Get(keyChunkOverlap); ok {
		settings.Chunking.Overlap = s.configStore.GetInt(keyChunkOverlap)
	}

	s.applyEnv(settings)
	applyModelDefaults(settings)
	return settings, nil
}

// applyEnv overrides secrets and Azure endpoints from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if key := s.providerKey(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := s.providerKey(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}

	if settings.Embedding.Provider == domain.AIProviderAzure {
		overrideFromEnv(&settings.Embedding.BaseURL, s.getenv("AZURE_OPENAI_ENDPOINT"))
		overrideFromEnv(&settings.Embedding.APIVersion, s.getenv("OPENAI_API_VERSION"))
		overrideFromEnv(&settings.Embedding.Model, s.getenv("AZURE_OPENAI_EMBED_DEPLOYMENT"))
	}
	if settings.LLM.Provider == domain.AIProviderAzure {
		overrideFromEnv(&settings.LLM.BaseURL, s.getenv("AZURE_OPENAI_ENDPOINT"))
		overrideFromEnv(&settings.LLM.APIVersion, s.getenv("OPENAI_API_VERSION"))
		overrideFromEnv(&settings.LLM.Model, s.getenv("AZURE_OPENAI_CHAT_DEPLOYMENT"))
	}

	overrideFromEnv(&settings.Index.WeaviateAPIKey, s.getenv("WEAVIATE_API_KEY"))
	overrideFromEnv(&settings.Sources.GitHubToken, s.getenv("GITHUB_TOKEN"))
	overrideFromEnv(&settings.Sources.DriveToken, s.getenv("GOOGLE_DRIVE_TOKEN"))
}

func (s *SettingsService) providerKey(p domain.AIProvider) string {
	for _, name := range providerKeyEnv[p] {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func overrideFromEnv(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// applyModelDefaults fills provider-specific models, local base URLs and the
// Azure API version when none were configured.
func applyModelDefaults(settings *domain.AppSettings) {
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = "http://localhost:11434"
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = "http://localhost:11434"
	}
	if settings.Embedding.Provider == domain.AIProviderAzure && settings.Embedding.APIVersion == "" {
		settings.Embedding.APIVersion = domain.DefaultAzureAPIVersion
	}
	if settings.LLM.Provider == domain.AIProviderAzure && settings.LLM.APIVersion == "" {
		settings.LLM.APIVersion = domain.DefaultAzureAPIVersion
	}
}

// settingValues maps settings onto their config keys. Secrets are
// returned separately so callers can decide whether to expose them.
func settingValues(settings *domain.AppSettings) (values map[string]any, secrets map[string]string) {
	values = map[string]any{
		keyEmbedProvider:       settings.Embedding.Provider.String(),
		keyEmbedModel:          settings.Embedding.Model,
		keyEmbedBaseURL:        settings.Embedding.BaseURL,
		keyEmbedAPIVersion:     settings.Embedding.APIVersion,
		keyEmbedMode:           string(settings.Embedding.Mode),
		keyEmbedFailurePolicy:  string(settings.Embedding.FailurePolicy),
		keyEmbedRPS:            settings.Embedding.RequestsPerSecond,
		keyLLMProvider:         settings.LLM.Provider.String(),
		keyLLMModel:            settings.LLM.Model,
		keyLLMBaseURL:          settings.LLM.BaseURL,
		keyLLMAPIVersion:       settings.LLM.APIVersion,
		keyChunkSize:           settings.Chunking.Size,
		keyChunkOverlap:        settings.Chunking.Overlap,
		keyIngestWorkers:       settings.Ingest.Workers,
		keyIngestDedup:         string(settings.Ingest.Dedup),
		keyAnswerTopK:          settings.Answer.TopK,
		keyAnswerTemperature:   float64(settings.Answer.Temperature),
		keyAnswerMaxTokens:     settings.Answer.MaxTokens,
		keyAnswerPrompt:        settings.Answer.SystemPrompt,
		keyAnswerRetrieval:     settings.Answer.RetrievalTimeout.String(),
		keyAnswerGeneration:    settings.Answer.GenerationTimeout.String(),
		keyIndexKind:           string(settings.Index.Kind),
		keyIndexDataDir:        settings.Index.DataDir,
		keyIndexWeaviateHost:   settings.Index.WeaviateHost,
		keyIndexWeaviateScheme: settings.Index.WeaviateScheme,
		keyIndexWeaviateClass:  settings.Index.WeaviateClass,
		keySourceDriveCreds:    settings.Sources.DriveCredentialsFile,
		keySourceDriveID:       settings.Sources.DriveClientID,
	}
	secrets = map[string]string{
		keyEmbedAPIKey:        settings.Embedding.APIKey,
		keyLLMAPIKey:          settings.LLM.APIKey,
		keyIndexWeaviateKey:   settings.Index.WeaviateAPIKey,
		keySourceGitHubToken:  settings.Sources.GitHubToken,
		keySourceDriveToken:   settings.Sources.DriveToken,
		keySourceDriveSecret:  settings.Sources.DriveClientSecret,
		keySourceDriveRefresh: settings.Sources.DriveRefreshToken,
	}
	return values, secrets
}

// IsSecret reports whether a key holds a credential.
func (s *SettingsService) IsSecret(key string) bool {
	_, secrets := settingValues(&domain.AppSettings{})
	_, ok := secrets[key]
	return ok
}

// Effective returns every key with its resolved value, after defaults and
// environment overrides. Unset secrets are empty strings.
func (s *SettingsService) Effective() (map[string]string, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	values, secrets := settingValues(settings)
	out := make(map[string]string, len(values)+len(secrets))
	for k, v := range values {
		out[k] = fmt.Sprint(v)
	}
	for k, v := range secrets {
		out[k] = v
	}
	return out, nil
}

// Save persists application settings. Empty secrets are not written so a
// key supplied through the environment never lands on disk as a blank.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values, secrets := settingValues(settings)
	for k, v := range secrets {
		if v != "" {
			values[k] = v
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// Set parses, validates and persists a single key. An empty value removes
// the key so the default applies again.
func (s *SettingsService) Set(key, value string) error {
	spec, ok := settingSpecs[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return s.configStore.Unset(key)
	}

	if spec.check != nil {
		if err := spec.check(value); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
	}

	var typed any
	switch spec.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		typed = f
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration such as 30s", domain.ErrInvalidInput, key)
		}
		typed = d.String()
	default:
		typed = value
	}

	if key == keyChunkSize || key == keyChunkOverlap {
		if err := s.checkChunkWindow(key, typed.(int)); err != nil {
			return err
		}
	}

	return s.configStore.Set(key, typed)
}

// checkChunkWindow rejects a change that would leave overlap >= size.
func (s *SettingsService) checkChunkWindow(key string, n int) error {
	current, err := s.Get()
	if err != nil {
		return err
	}
	window := current.Chunking
	if key == keyChunkSize {
		window.Size = n
	} else {
		window.Overlap = n
	}
	return window.Validate()
}

// Keys returns the recognised setting keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingSpecs))
	for k := range settingSpecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the current settings can drive a pipeline run.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not fully configured",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %s is not fully configured",
			domain.ErrConfiguration, settings.LLM.Provider)
	}
	if !settings.Embedding.Mode.IsValid() || !settings.Embedding.FailurePolicy.IsValid() {
		return fmt.Errorf("%w: invalid embedding mode or failure policy", domain.ErrConfiguration)
	}
	if !settings.Ingest.Dedup.IsValid() {
		return fmt.Errorf("%w: invalid dedup policy %q", domain.ErrConfiguration, settings.Ingest.Dedup)
	}
	if !settings.Index.Kind.IsValid() {
		return fmt.Errorf("%w: invalid index kind %q", domain.ErrConfiguration, settings.Index.Kind)
	}
	if settings.Index.Kind == domain.IndexWeaviate && settings.Index.WeaviateHost == "" {
		return fmt.Errorf("%w: weaviate index requires %s", domain.ErrConfiguration, keyIndexWeaviateHost)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.probe == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.probe.ProbeEmbedding(ctx, &settings.Embedding)
}

// ValidateLLMConfig pings the configured generation provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.probe == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.probe.ProbeLLM(ctx, &settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// Value checks used by Set.

func checkEnum[T ~string](valid func(T) bool) func(string) error {
	return func(v string) error {
		if !valid(T(v)) {
			return fmt.Errorf("unsupported value %q", v)
		}
		return nil
	}
}

func checkEmbeddingProvider(v string) error {
	p := domain.AIProvider(v)
	if !p.IsValid() {
		return fmt.Errorf("unsupported provider %q", v)
	}
	if !p.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not offer embeddings", v)
	}
	return nil
}

func checkPositiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%q is not a positive integer", v)
	}
	return nil
}

func checkNonNegativeInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("%q is not a non-negative integer", v)
	}
	return nil
}

func checkNonNegativeFloat(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("%q is not a non-negative number", v)
	}
	return nil
}

func checkTemperature(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 2 {
		return fmt.Errorf("%q is not a temperature between 0 and 2", v)
	}
	return nil
}

func checkScheme(v string) error {
	if v != "http" && v != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", v)
	}
	return nil
}
