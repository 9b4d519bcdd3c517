// Package driven holds the ports the core calls out through. Adapters
// under internal/adapters/driven, internal/connectors and internal/extractors
// implement them.
//
// The pipeline needs a DocumentSource, an ExtractorRegistry, an
// EmbeddingService, an IndexStore and, for answering, an LLMService.
// Settings go through ConfigStore and PromptStore, and ProviderProbe checks
// provider settings before they are used. A source that also implements
// Watcher can report changes.
//
// This package may import domain and nothing else from the module.
package driven
