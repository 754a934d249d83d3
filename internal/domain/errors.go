package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. Every typed error below matches
// exactly one of these through errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("requested resource not found")
	ErrPersistence = errors.New("persistence failed")
	ErrProvider    = errors.New("llm provider failed")
)

// ValidationError reports a malformed inbound payload or request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a missing character, room or model config.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a storage failure for the named operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// ProviderErrorKind classifies LLM provider failures.
type ProviderErrorKind string

const (
	ProviderTimeout     ProviderErrorKind = "timeout"
	ProviderRateLimit   ProviderErrorKind = "rate_limit"
	ProviderAuth        ProviderErrorKind = "auth"
	ProviderUnavailable ProviderErrorKind = "unavailable"
	ProviderBadResponse ProviderErrorKind = "bad_response"
)

// ProviderError is returned by LLM providers.
type ProviderError struct {
	Kind     ProviderErrorKind
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// IsProviderTimeout reports whether err is a provider deadline expiry.
func IsProviderTimeout(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == ProviderTimeout
}
