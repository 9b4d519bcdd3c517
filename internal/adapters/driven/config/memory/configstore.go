// Package memory is a config store that never touches disk. Tests use it,
// and so do runs that must leave the user's config file alone.
package memory

import (
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/config"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

type ConfigStore struct {
	*config.Values
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{Values: config.NewValues()}
}

// NewConfigStoreFrom returns a store holding a copy of seed.
func NewConfigStoreFrom(seed map[string]any) *ConfigStore {
	s := NewConfigStore()
	for k, v := range seed {
		_ = s.Set(k, v)
	}
	return s
}

func (s *ConfigStore) Set(key string, value any) error {
	return s.Mutate(func(m map[string]any) { m[key] = value }, nil)
}

func (s *ConfigStore) Unset(key string) error {
	return s.Mutate(func(m map[string]any) { delete(m, key) }, nil)
}
