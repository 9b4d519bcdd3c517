// Package config holds the flat key/value map shared by the config stores.
// Keys are dotted paths such as "embedding.provider".
package config

import (
	"maps"
	"math"
	"slices"
	"sync"
)

// Values is a concurrency-safe map with the lenient typed reads the
// settings layer relies on: a missing or mistyped key reads as zero.
type Values struct {
	mu sync.RWMutex
	m  map[string]any
}

func NewValues() *Values {
	return &Values{m: make(map[string]any)}
}

func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[key]
	return val, ok
}

func (v *Values) GetString(key string) string {
	val, _ := v.Get(key)
	s, _ := val.(string)
	return s
}

// GetInt accepts any integer type and whole floats. TOML decodes
// integers as int64.
func (v *Values) GetInt(key string) int {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return 0
}

func (v *Values) GetFloat(key string) float64 {
	val, _ := v.Get(key)
	switch n := val.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Keys lists the keys that are set, sorted.
func (v *Values) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Sorted(maps.Keys(v.m))
}

// Mutate applies change to a copy of the map and keeps the copy only when
// commit accepts it. commit may be nil. A failed commit leaves the values
// untouched, so a store that cannot write its file does not drift from it.
func (v *Values) Mutate(change func(map[string]any), commit func(map[string]any) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := maps.Clone(v.m)
	change(next)
	if commit != nil {
		if err := commit(next); err != nil {
			return err
		}
	}
	v.m = next
	return nil
}

// Replace swaps in m wholesale, as after reading a file.
func (v *Values) Replace(m map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if m == nil {
		m = make(map[string]any)
	}
	v.m = m
}
