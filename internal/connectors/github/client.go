package github

import (
	"context"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
)

// DefaultTimeout bounds each API request.
const DefaultTimeout = 30 * time.Second

// Client is a go-github client behind a RateLimiter.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient authenticates with token when it is set. Without one only
// public repositories are reachable, at 60 requests an hour.
func NewClient(token string, rps float64) *Client {
	client := gh.NewClient(&http.Client{Timeout: DefaultTimeout})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return Wrap(client, rps)
}

// Wrap puts rate limiting in front of an existing go-github client.
func Wrap(client *gh.Client, rps float64) *Client {
	return &Client{gh: client, rateLimiter: NewRateLimiter(rps)}
}

// call waits for the limiter, runs fn, records the quota it reports and
// classifies any failure.
func call[T any](ctx context.Context, c *Client, op string, fn func() (T, *gh.Response, error)) (T, error) {
	var zero T
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return zero, err
	}
	out, resp, err := fn()
	c.rateLimiter.Observe(resp)
	if err != nil {
		return zero, wrap(err, op, time.Now())
	}
	return out, nil
}

// GetRepository fetches repository metadata, including the default branch.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, error) {
	return call(ctx, c, "get repo "+owner+"/"+repo, func() (*gh.Repository, *gh.Response, error) {
		return c.gh.Repositories.Get(ctx, owner, repo)
	})
}

// GetTree lists every path under ref in one recursive request.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) (*gh.Tree, error) {
	return call(ctx, c, "get tree "+ref, func() (*gh.Tree, *gh.Response, error) {
		return c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	})
}

// GetBlob fetches file content by SHA.
func (c *Client) GetBlob(ctx context.Context, owner, repo, sha string) (*gh.Blob, error) {
	return call(ctx, c, "get blob "+sha, func() (*gh.Blob, *gh.Response, error) {
		return c.gh.Git.GetBlob(ctx, owner, repo, sha)
	})
}

// RateLimiter exposes the limiter so callers can report the quota.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}
