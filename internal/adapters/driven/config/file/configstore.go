package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/config"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DirName is the per-user directory holding config, prompts and data.
const DirName = ".ragapp"

const fileName = "config.toml"

// ConfigStore persists dotted keys as nested TOML tables, so
// "embedding.provider" is written as provider inside [embedding].
// Every change is written through before it becomes visible.
type ConfigStore struct {
	*config.Values
	path string
}

// DefaultDir returns ~/.ragapp.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// NewConfigStore opens dir/config.toml, creating dir when needed. An empty
// dir means DefaultDir. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	s := &ConfigStore{Values: config.NewValues(), path: filepath.Join(dir, fileName)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Set(key string, value any) error {
	return s.Mutate(func(m map[string]any) { m[key] = value }, s.write)
}

// Unset removes key. A key that was never set is not an error.
func (s *ConfigStore) Unset(key string) error {
	if _, ok := s.Get(key); !ok {
		return nil
	}
	return s.Mutate(func(m map[string]any) { delete(m, key) }, s.write)
}

// Reload rereads the file, dropping values that are no longer in it.
func (s *ConfigStore) Reload() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}
	flat := make(map[string]any)
	flatten(tree, "", flat)
	s.Replace(flat)
	return nil
}

// Path is the location of config.toml.
func (s *ConfigStore) Path() string {
	return s.path
}

// write replaces the file atomically. Mode 0600 because API keys live here.
func (s *ConfigStore) write(flat map[string]any) error {
	tree, err := nest(flat)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".*")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// flatten turns {"a": {"b": 1}} into {"a.b": 1}.
func flatten(tree map[string]any, prefix string, out map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(sub, k, out)
		} else {
			out[k] = v
		}
	}
}

// nest reverses flatten. TOML cannot hold a key that is both a value and a
// table ("a" next to "a.b"), so that case is an error.
func nest(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)
	for key, value := range flat {
		node := root
		parts := strings.Split(key, ".")
		last := len(parts) - 1
		for _, part := range parts[:last] {
			switch child := node[part].(type) {
			case nil:
				next := make(map[string]any)
				node[part] = next
				node = next
			case map[string]any:
				node = child
			default:
				return nil, fmt.Errorf("config key %q conflicts with value at %q", key, part)
			}
		}
		if _, isTable := node[parts[last]].(map[string]any); isTable {
			return nil, fmt.Errorf("config key %q conflicts with table of the same name", key)
		}
		node[parts[last]] = value
	}
	return root, nil
}
