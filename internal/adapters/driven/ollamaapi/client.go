// Package ollamaapi is a small JSON client for the Ollama REST API shared by
// the embedding and LLM adapters.
package ollamaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// DefaultBaseURL is where a local Ollama server listens.
const DefaultBaseURL = "http://localhost:11434"

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 4 << 10

// Client talks to one Ollama server.
type Client struct {
	http    *http.Client
	baseURL string
}

// New returns a client for baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the normalised server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiError is the body Ollama sends with failures, and sometimes with a 200
// when a model fails mid-request.
type apiError struct {
	Error string `json:"error"`
}

// Post sends in as JSON to path and decodes the reply into out.
// Every failure wraps domain.ErrProvider.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ollama: marshal %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: ollama: %w", domain.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get fetches path and decodes the reply into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: ollama: %w", domain.ErrProvider, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: %s %s: %w", domain.ErrProvider, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ollama: read response: %w", domain.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama: %s returned %d: %s",
			domain.ErrProvider, req.URL.Path, resp.StatusCode, errorText(raw))
	}

	var failed apiError
	if json.Unmarshal(raw, &failed) == nil && failed.Error != "" {
		return fmt.Errorf("%w: ollama: %s", domain.ErrProvider, failed.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: ollama: decode %s response: %w", domain.ErrProvider, req.URL.Path, err)
	}
	return nil
}

// errorText prefers the JSON error field and falls back to the raw body.
func errorText(raw []byte) string {
	var e apiError
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	return strings.TrimSpace(string(raw))
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Models lists the models pulled on the server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var tags tagsResponse
	if err := c.Get(ctx, "/api/tags", &tags); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// ErrModelMissing reports a model that has not been pulled yet.
var ErrModelMissing = errors.New("model not pulled")

// Ping checks the server answers without running inference. When model is
// set it must be among the pulled models; an untagged name matches ":latest".
func (c *Client) Ping(ctx context.Context, model string) error {
	names, err := c.Models(ctx)
	if err != nil {
		return err
	}
	if model == "" || HasModel(names, model) {
		return nil
	}
	return fmt.Errorf("%w: %w: %s (run: ollama pull %s)", domain.ErrConfiguration, ErrModelMissing, model, model)
}

// HasModel reports whether model is in names.
func HasModel(names []string, model string) bool {
	for _, n := range names {
		if n == model || (!strings.Contains(model, ":") && n == model+":latest") {
			return true
		}
	}
	return false
}
