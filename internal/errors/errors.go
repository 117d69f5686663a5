package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrPlaybackLoad     = errors.New("failed to load audio")
	ErrSearchProvider   = errors.New("search provider failed")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrStaleReference   = errors.New("stale reference")
	ErrRateLimited      = errors.New("rate limited")
	ErrNetworkError     = errors.New("network error")
	ErrTimeout          = errors.New("request timeout")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Invalid operations. Each matches ErrInvalidOperation with errors.Is.
var (
	ErrReservedName     = invalid(`cannot create a playlist named "Liked Songs"`)
	ErrDuplicateTrack   = invalid("track already in playlist")
	ErrAlreadyQueued    = invalid("track already in queue")
	ErrNoAudio          = invalid("no audio available for this track")
	ErrPlaylistNotFound = invalid("playlist not found")
	ErrEmptyName        = invalid("playlist name is empty")
	ErrIndexOutOfRange  = invalid("queue index out of range")
)

type invalidOp struct{ msg string }

func invalid(msg string) error { return &invalidOp{msg: msg} }

func (e *invalidOp) Error() string { return e.msg }

func (e *invalidOp) Is(target error) bool { return target == ErrInvalidOperation }

// HarmonyError wraps an error with a user-friendly suggestion.
type HarmonyError struct {
	Err        error
	Suggestion string
}

func (e *HarmonyError) Error() string {
	return e.Err.Error()
}

func (e *HarmonyError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &HarmonyError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var hErr *HarmonyError
	if errors.As(err, &hErr) && hErr.Suggestion != "" {
		return hErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, ErrPlaylistNotFound):
		return "Run 'harmony playlist list' to see your playlists"
	case errors.Is(err, ErrReservedName):
		return "Liked songs live in their own list; use 'harmony liked' instead"
	case errors.Is(err, ErrNoAudio):
		return "Try another search result; this one has no stream"
	case errors.Is(err, ErrPlaybackLoad):
		return "The stream could not be decoded. Try another track"
	}

	// Rate limiting
	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) {
		return "Run 'harmony config init' to create a config file"
	}
	if errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'harmony config show' to inspect your configuration"
	}

	if errors.Is(err, ErrSearchProvider) || strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "server error") {
		return "The music service is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins the collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
