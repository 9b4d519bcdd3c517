package file

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptDirName is the prompts directory inside the config directory.
const PromptDirName = "prompts"

//go:embed prompts_readme.md
var promptsReadme []byte

// PromptStore reads prompt overrides from <dir>/<name>.txt and falls back
// to built-in text. On first use it writes each built-in prompt and a
// README into dir so users have something to edit; existing files are
// never overwritten.
type PromptStore struct {
	dir      string
	builtins map[string]string

	seedOnce sync.Once
	seedErr  error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore does no I/O. An empty dir means ~/.ragapp/prompts.
func NewPromptStore(dir string, builtins map[string]string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, PromptDirName)
	}
	return &PromptStore{
		dir:      dir,
		builtins: maps.Clone(builtins),
		cache:    make(map[string]string),
	}, nil
}

// Load returns the override for name, else its built-in. An empty or
// unreadable override counts as absent. Results are cached until Reload.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	s.mu.Lock()
	defer s.mu.Unlock()
	if text, ok := s.cache[name]; ok {
		return text, nil
	}

	text, readErr := s.readOverride(name)
	if readErr != nil {
		builtin, ok := s.builtins[name]
		if !ok {
			return "", fmt.Errorf("prompt %q: %w", name, errors.Join(readErr, s.seedErr))
		}
		text = builtin
	}
	s.cache[name] = text
	return text, nil
}

func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
}

func (s *PromptStore) Dir() string {
	return s.dir
}

// Path is the override file for name.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) readOverride(name string) (string, error) {
	raw, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("%s is empty", s.Path(name))
	}
	return text, nil
}

func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating prompt directory: %w", err)
	}
	files := map[string][]byte{"README.md": promptsReadme}
	for name, text := range s.builtins {
		files[name+".txt"] = []byte(text + "\n")
	}
	for fileName, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, fileName), content); err != nil {
			return err
		}
	}
	return nil
}

func writeIfMissing(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seeding %s: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("seeding %s: %w", path, err)
	}
	return f.Close()
}
