// Package errors classifies turn failures so the chat loop can tell the
// user whether asking again is likely to help. Classification never
// drives an automatic retry; every failure is local to its turn.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes a turn failure.
type ErrorType string

const (
	// ErrorTypeRetryable indicates the same query might succeed if asked again
	ErrorTypeRetryable ErrorType = "retryable"
	// ErrorTypePermanent indicates asking again will not help
	ErrorTypePermanent ErrorType = "permanent"
)

// RetryableError marks an error as transient.
type RetryableError struct {
	Err  error
	Kind string
}

func (e *RetryableError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("[retryable:%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[retryable] %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// PermanentError marks an error as unrecoverable by repetition.
type PermanentError struct {
	Err  error
	Kind string
}

func (e *PermanentError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("[permanent:%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[permanent] %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error looks transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	return Classify(err) == ErrorTypeRetryable
}

// Classify determines the error type from message patterns. Vendor and
// tool-session failures both arrive as wrapped transport errors, so
// pattern matching on the message is the only uniform signal available.
func Classify(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var re *RetryableError
	if errors.As(err, &re) {
		return ErrorTypeRetryable
	}
	var pe *PermanentError
	if errors.As(err, &pe) {
		return ErrorTypePermanent
	}

	msg := strings.ToLower(err.Error())

	retryablePatterns := []string{
		// Network errors
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"deadline exceeded",
		"temporary failure",
		"network is unreachable",
		// Rate limiting
		"rate limit",
		"too many requests",
		"429",
		"503",
		"service unavailable",
		"temporarily unavailable",
		// Vendor hiccups
		"internal server error",
		"502",
		"504",
		"gateway timeout",
		"overloaded",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypeRetryable
		}
	}

	permanentPatterns := []string{
		// Invalid input
		"invalid argument",
		"bad request",
		"parse error",
		"unsupported",
		"unknown",
		// Not found
		"not found",
		"404",
		// Authentication
		"unauthorized",
		"forbidden",
		"invalid api key",
		"401",
		"403",
	}
	for _, pattern := range permanentPatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypePermanent
		}
	}

	// Unknown failures default to retryable: telling the user to try
	// again is cheaper than wrongly telling them it is hopeless.
	return ErrorTypeRetryable
}

// NewRetryable wraps an error as retryable.
func NewRetryable(err error, kind string) error {
	return &RetryableError{Err: err, Kind: kind}
}

// NewPermanent wraps an error as permanent.
func NewPermanent(err error, kind string) error {
	return &PermanentError{Err: err, Kind: kind}
}
