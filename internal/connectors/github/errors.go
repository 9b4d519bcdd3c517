package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// ErrInvalidRepo indicates a repository reference that is not owner/repo[@ref].
var ErrInvalidRepo = errors.New("github: invalid repository, want owner/repo[@ref]")

// Error is a failed API call. Kind is the domain error it classifies as,
// nil when the failure has no domain meaning.
type Error struct {
	Op     string
	Status int
	URL    string
	Kind   error

	// RetryAt is set for primary and secondary rate limits.
	RetryAt time.Time

	Err error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case !e.RetryAt.IsZero():
		msg = fmt.Sprintf("github: %s: rate limit exceeded, retry after %s", e.Op, e.RetryAt.Format(time.RFC3339))
	case e.Status != 0:
		msg = fmt.Sprintf("github: %s: status %d", e.Op, e.Status)
	default:
		msg = "github: " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// wrap classifies a go-github error. now stamps secondary limits, which
// only carry a relative Retry-After.
func wrap(err error, op string, now time.Time) error {
	e := &Error{Op: op, Err: err}

	var primary *gh.RateLimitError
	var secondary *gh.AbuseRateLimitError
	var resp *gh.ErrorResponse
	switch {
	case errors.As(err, &primary):
		e.Kind = domain.ErrRateLimited
		e.RetryAt = primary.Rate.Reset.Time
		if primary.Response != nil {
			e.Status = primary.Response.StatusCode
		}
	case errors.As(err, &secondary):
		e.Kind = domain.ErrRateLimited
		e.RetryAt = now.Add(time.Minute)
		if d := secondary.GetRetryAfter(); d > 0 {
			e.RetryAt = now.Add(d)
		}
	case errors.As(err, &resp) && resp.Response != nil:
		e.Status = resp.Response.StatusCode
		if resp.Response.Request != nil {
			e.URL = resp.Response.Request.URL.String()
		}
		switch e.Status {
		case http.StatusNotFound:
			e.Kind = domain.ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			e.Kind = domain.ErrConfiguration
		}
	}
	return e
}

// IsNotFound reports a missing repository, ref or blob.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited reports a primary or secondary rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
