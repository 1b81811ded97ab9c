package gemini

import (
	"fmt"
	"strings"
)

// CapabilityError wraps a failed generation or embedding call. It is the
// transient-failure arm of the error taxonomy: callers convert it into a
// per-unit failure record and never let it propagate past the batch runner.
type CapabilityError struct {
	Op    string // "generate" or "embed"
	Model string
	Err   error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %s (%s): %v", e.Op, e.Model, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// retryablePatterns groups error substrings by category, matched
// case-insensitively against err.Error().
//
// NOTE: string matching is used because the genai SDK does not expose typed
// sentinel errors for transient failures. Re-evaluate if the SDK adds
// structured error types.
var retryablePatterns = [][]string{
	{"rate limit", "quota exceeded", "429", "resource_exhausted"}, // rate limiting
	{"500", "502", "503", "504", "unavailable", "internal"},       // transient server errors
	{"connection reset", "timeout", "deadline exceeded", "temporary"}, // network errors
}

// retryableError reports whether err is transient and should trigger a retry.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, group := range retryablePatterns {
		for _, sub := range group {
			if strings.Contains(errStr, sub) {
				return true
			}
		}
	}
	return false
}
