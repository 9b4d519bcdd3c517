package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

const apiVersion = "2023-06-01"

// statusOverloaded is sent when the API is temporarily at capacity.
const statusOverloaded = 529

// apiError is the envelope of every non-2xx Messages API reply.
type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// client is the raw HTTP transport. It knows the auth headers and how
// failures are classified, nothing about messages.
type client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func (c *client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("anthropic: marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: anthropic: %w", domain.ErrProvider, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: anthropic: %s %s: %w", domain.ErrProvider, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: anthropic: read response: %w", domain.ErrProvider, err)
	}
	if resp.StatusCode/100 != 2 {
		return classify(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: anthropic: decode response: %w", domain.ErrProvider, err)
	}
	return nil
}

// classify turns a failed reply into an error. Quota and capacity failures
// also wrap domain.ErrRateLimited so callers can tell them apart.
func classify(status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	kind := ""
	var e apiError
	if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
		msg, kind = e.Error.Message, e.Error.Type
	}

	switch {
	case status == http.StatusTooManyRequests || status == statusOverloaded ||
		kind == "rate_limit_error" || kind == "overloaded_error":
		return fmt.Errorf("%w: %w: anthropic: %s", domain.ErrProvider, domain.ErrRateLimited, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: anthropic: check llm.api_key (status %d): %s", domain.ErrProvider, status, msg)
	default:
		return fmt.Errorf("%w: anthropic: status %d: %s", domain.ErrProvider, status, msg)
	}
}
