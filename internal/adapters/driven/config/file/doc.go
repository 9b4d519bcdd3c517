// Package file keeps ragapp state under the per-user config directory:
// config.toml through ConfigStore and editable prompt templates through
// PromptStore.
package file
