package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Upstream API errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrRateLimited = fmt.Errorf("rate limited by upstream")
	ErrUpstream    = fmt.Errorf("upstream service unavailable")
	ErrNotFound    = fmt.Errorf("resource not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// Kind classifies an error into the small taxonomy the HTTP layer translates
// into status codes and user-facing messages.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindForbidden   Kind = "forbidden"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindUpstream    Kind = "upstream_unavailable"
	KindUnknown     Kind = "unknown"
)

// StatusError carries an upstream HTTP failure across package boundaries as a
// typed value instead of a message substring.
type StatusError struct {
	Status int    // HTTP status returned by the upstream API
	Code   string // upstream error code, when the body carried one
	Detail string // upstream error description or raw body excerpt
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

// Normalized is the result of classifying an error: a kind, a fixed
// user-facing message, and the underlying detail for logs.
type Normalized struct {
	Kind    Kind
	Message string
	Detail  string
}

// Normalize maps any error to a [Normalized] value.
//
// The mapping is pure: it never retries and never mutates state. Retry policy
// lives in the request layer.
func Normalize(err error) Normalized {
	if err == nil {
		return Normalized{Kind: KindUnknown}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return normalizeStatus(statusErr)
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrMissingArgument):
		return Normalized{Kind: KindValidation, Message: "Invalid search parameters. Please check your input.", Detail: err.Error()}
	case errors.Is(err, ErrAuthFailed), errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrMissingCredentials):
		return Normalized{Kind: KindAuth, Message: "Authentication failed. Please check API configuration.", Detail: err.Error()}
	case errors.Is(err, ErrRateLimited):
		return Normalized{Kind: KindRateLimited, Message: "Too many requests. Please try again in a moment.", Detail: err.Error()}
	case errors.Is(err, ErrNotFound):
		return Normalized{Kind: KindNotFound, Message: "The requested resource was not found.", Detail: err.Error()}
	case errors.Is(err, ErrUpstream):
		return Normalized{Kind: KindUpstream, Message: "The music catalog is temporarily unavailable. Please try again later.", Detail: err.Error()}
	default:
		return Normalized{Kind: KindUnknown, Message: "Unable to connect to the music catalog. Please try again later.", Detail: err.Error()}
	}
}

func normalizeStatus(e *StatusError) Normalized {
	switch {
	case e.Status == http.StatusBadRequest:
		return Normalized{Kind: KindValidation, Message: "Invalid search parameters. Please check your input.", Detail: e.Error()}
	case e.Status == http.StatusUnauthorized:
		return Normalized{Kind: KindAuth, Message: "Authentication failed. Please check API configuration.", Detail: e.Error()}
	case e.Status == http.StatusForbidden:
		return Normalized{Kind: KindForbidden, Message: "Access denied. Please check app permissions.", Detail: e.Error()}
	case e.Status == http.StatusNotFound:
		return Normalized{Kind: KindNotFound, Message: "The requested resource was not found.", Detail: e.Error()}
	case e.Status == http.StatusTooManyRequests:
		return Normalized{Kind: KindRateLimited, Message: "Too many requests. Please try again in a moment.", Detail: e.Error()}
	case e.Status >= 500:
		return Normalized{Kind: KindUpstream, Message: "The music catalog is temporarily unavailable. Please try again later.", Detail: e.Error()}
	default:
		return Normalized{Kind: KindUnknown, Message: "Unable to connect to the music catalog. Please try again later.", Detail: e.Error()}
	}
}

// Retryable reports whether an error is worth retrying at the request layer.
// Only upstream rate limiting and 5xx responses qualify.
func Retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == http.StatusTooManyRequests || statusErr.Status >= 500
	}
	return false
}
