package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Pipeline defaults.
const (
	DefaultChunkSize         = 500
	DefaultChunkOverlap      = 50
	DefaultTopK              = 10
	DefaultTemperature       = 0.2
	DefaultMaxTokens         = 1000
	DefaultIngestWorkers     = 4
	DefaultRetrievalTimeout  = 30 * time.Second
	DefaultGenerationTimeout = 120 * time.Second
)

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAzure is an Azure OpenAI resource addressed by deployment name.
	AIProviderAzure AIProvider = "azure"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderAnthropic is the Anthropic cloud API. Generation only.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderAzure, AIProviderOllama, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// RequiresBaseURL returns true if this provider cannot work without an endpoint.
func (p AIProvider) RequiresBaseURL() bool {
	return p == AIProviderAzure
}

// SupportsEmbeddings returns true if the provider offers an embeddings API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p.IsValid() && p != AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAzure:
		return "Azure OpenAI (cloud deployment)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingMode selects how chunk embeddings are requested.
type EmbeddingMode string

const (
	// EmbeddingModePerChunk issues one request per chunk.
	EmbeddingModePerChunk EmbeddingMode = "per_chunk"

	// EmbeddingModeBatch issues one request per document. A failure fails
	// every chunk of that document.
	EmbeddingModeBatch EmbeddingMode = "batch"
)

// IsValid returns true if the mode is recognised.
func (m EmbeddingMode) IsValid() bool {
	return m == EmbeddingModePerChunk || m == EmbeddingModeBatch
}

// EmbeddingFailurePolicy decides what a chunk embedding failure does to its document.
type EmbeddingFailurePolicy string

const (
	// FailurePolicySkipChunk drops the failed chunk and uploads the rest.
	FailurePolicySkipChunk EmbeddingFailurePolicy = "skip_chunk"

	// FailurePolicyFailDocument fails the whole document; nothing is uploaded for it.
	FailurePolicyFailDocument EmbeddingFailurePolicy = "fail_document"
)

// IsValid returns true if the policy is recognised.
func (p EmbeddingFailurePolicy) IsValid() bool {
	return p == FailurePolicySkipChunk || p == FailurePolicyFailDocument
}

// DedupPolicy decides how record IDs are generated.
type DedupPolicy string

const (
	// DedupNone assigns a fresh random ID to every record, so re-ingesting
	// a document creates duplicate records.
	DedupNone DedupPolicy = "none"

	// DedupContentHash derives the ID from document name, position and
	// content, so re-ingesting identical chunks overwrites them.
	DedupContentHash DedupPolicy = "content_hash"
)

// IsValid returns true if the policy is recognised.
func (p DedupPolicy) IsValid() bool {
	return p == DedupNone || p == DedupContentHash
}

// IndexKind selects the index store backend.
type IndexKind string

const (
	// IndexMemory keeps records in process memory.
	IndexMemory IndexKind = "memory"

	// IndexSQLite stores records in a local SQLite database.
	IndexSQLite IndexKind = "sqlite"

	// IndexWeaviate stores records in a Weaviate class.
	IndexWeaviate IndexKind = "weaviate"
)

// IsValid returns true if the kind is recognised.
func (k IndexKind) IsValid() bool {
	switch k {
	case IndexMemory, IndexSQLite, IndexWeaviate:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name, or the deployment name for Azure.
	Model string

	// BaseURL is the API endpoint (Ollama, Azure, OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// APIVersion is the Azure OpenAI API version.
	APIVersion string

	// Mode selects per-chunk or per-document requests.
	Mode EmbeddingMode

	// FailurePolicy decides what a chunk failure does to its document.
	FailurePolicy EmbeddingFailurePolicy

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	if e.Provider.RequiresBaseURL() && e.BaseURL == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the model name, or the deployment name for Azure.
	Model string

	// BaseURL is the API endpoint (Ollama, Azure, OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// APIVersion is the Azure OpenAI API version.
	APIVersion string
}

// IsConfigured returns true if the generation provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	if l.Provider.RequiresBaseURL() && l.BaseURL == "" {
		return false
	}
	return true
}

// ChunkSettings holds chunker configuration in words.
type ChunkSettings struct {
	Size    int
	Overlap int
}

// Validate returns ErrConfiguration if the window cannot advance.
func (c ChunkSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrConfiguration, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap (%d) must be smaller than chunk size (%d)",
			ErrConfiguration, c.Overlap, c.Size)
	}
	return nil
}

// IngestSettings holds ingestion run configuration.
type IngestSettings struct {
	// Workers is the number of documents processed concurrently.
	Workers int

	// Dedup selects how record IDs are generated.
	Dedup DedupPolicy
}

// AnswerSettings holds answering configuration.
type AnswerSettings struct {
	// TopK is the number of records retrieved per query.
	TopK int

	// Temperature is the sampling temperature.
	Temperature float32

	// MaxTokens caps the response length.
	MaxTokens int

	// SystemPrompt overrides the default behavioural instruction when set.
	SystemPrompt string

	// RetrievalTimeout bounds the index store query.
	RetrievalTimeout time.Duration

	// GenerationTimeout bounds the provider call.
	GenerationTimeout time.Duration
}

// IndexSettings holds index store configuration.
type IndexSettings struct {
	// Kind selects the backend.
	Kind IndexKind

	// DataDir is the SQLite data directory. Empty means ~/.ragapp/data.
	DataDir string

	// WeaviateHost is the Weaviate host and port.
	WeaviateHost string

	// WeaviateScheme is http or https.
	WeaviateScheme string

	// WeaviateAPIKey authenticates against Weaviate Cloud.
	WeaviateAPIKey string

	// WeaviateClass is the class records are stored in.
	WeaviateClass string
}

// SourceSettings holds credentials for remote document sources.
type SourceSettings struct {
	// GitHubToken is a personal access token for repository sources.
	GitHubToken string

	// DriveToken is an OAuth access token for Google Drive sources.
	DriveToken string

	// DriveCredentialsFile is a service account key for Google Drive sources.
	DriveCredentialsFile string

	// DriveClientID and DriveClientSecret identify the OAuth client used by
	// "auth gdrive" and for refreshing DriveRefreshToken.
	DriveClientID     string
	DriveClientSecret string

	// DriveRefreshToken is obtained by "auth gdrive" and never expires on
	// its own, unlike DriveToken.
	DriveRefreshToken string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkSettings
	Ingest    IngestSettings
	Answer    AnswerSettings
	Index     IndexSettings
	Sources   SourceSettings
}

// DefaultAppSettings returns settings with the pipeline defaults.
// Credentials are left empty and come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:      AIProviderOpenAI,
			Model:         DefaultEmbeddingModels()[AIProviderOpenAI],
			APIVersion:    DefaultAzureAPIVersion,
			Mode:          EmbeddingModePerChunk,
			FailurePolicy: FailurePolicySkipChunk,
		},
		LLM: LLMSettings{
			Provider:   AIProviderOpenAI,
			Model:      DefaultLLMModels()[AIProviderOpenAI],
			APIVersion: DefaultAzureAPIVersion,
		},
		Chunking: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Ingest: IngestSettings{
			Workers: DefaultIngestWorkers,
			Dedup:   DedupNone,
		},
		Answer: AnswerSettings{
			TopK:              DefaultTopK,
			Temperature:       DefaultTemperature,
			MaxTokens:         DefaultMaxTokens,
			RetrievalTimeout:  DefaultRetrievalTimeout,
			GenerationTimeout: DefaultGenerationTimeout,
		},
		Index: IndexSettings{
			Kind:           IndexSQLite,
			WeaviateHost:   "localhost:8080",
			WeaviateScheme: "http",
			WeaviateClass:  "Chunk",
		},
	}
}

// DefaultAzureAPIVersion is the Azure OpenAI API version used when none is set.
const DefaultAzureAPIVersion = "2024-02-01"

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAzure,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAzure,
		AIProviderOllama,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
// Azure has no default because models are addressed by deployment name.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each generation provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"text-embedding-004":     768,
	}
}
