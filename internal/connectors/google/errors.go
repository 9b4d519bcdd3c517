package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// Drive reports quota exhaustion as 403 with one of these reasons rather
// than 429.
var quotaReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"dailyLimitExceeded":    true,
}

func quotaExceeded(gerr *googleapi.Error) bool {
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		if quotaReasons[item.Reason] {
			return true
		}
	}
	return false
}

// IsRateLimited reports a quota failure, either already classified or as
// a raw API error.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && quotaExceeded(gerr)
}

// WrapError prefixes err with the operation and classifies API failures:
// quota errors as domain.ErrRateLimited, other 401 and 403 responses as
// domain.ErrConfiguration and 404 as domain.ErrNotFound. The API error
// stays reachable with errors.As.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var kind error
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case quotaExceeded(gerr):
			kind = domain.ErrRateLimited
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
			kind = domain.ErrConfiguration
		case gerr.Code == http.StatusNotFound:
			kind = domain.ErrNotFound
		}
	}

	if kind == nil {
		return fmt.Errorf("google: %s: %w", operation, err)
	}
	return fmt.Errorf("%w: google: %s: %w", kind, operation, err)
}
