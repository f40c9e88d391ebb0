package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ProviderError.
type ErrorKind string

const (
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindTransport     ErrorKind = "transport"
	ErrorKindProtocol      ErrorKind = "protocol"
	ErrorKindEmptyResponse ErrorKind = "empty_response"
	ErrorKindUnsupported   ErrorKind = "unsupported"
)

var (
	ErrMissingAPIKey = errors.New("API key is not configured")
	ErrEmptyResponse = errors.New("AI returned empty response")
	ErrUnsupported   = errors.New("operation not supported for provider")
)

// ProviderError is the single error type crossing the gateway boundary.
// Error() is prefixed with the provider display name.
type ProviderError struct {
	Provider   Provider
	Kind       ErrorKind
	Message    string
	StatusCode int // HTTP status when known, 0 otherwise
	Cause      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Provider.DisplayName(), e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError builds a ProviderError of the given kind.
func NewProviderError(p Provider, kind ErrorKind, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider: p,
		Kind:     kind,
		Message:  message,
		Cause:    cause,
	}
}

// AsProviderError returns err as a *ProviderError, wrapping foreign errors as
// transport errors tagged with p.
func AsProviderError(p Provider, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return NewProviderError(p, ErrorKindTransport, err.Error(), err)
}

// IsKind reports whether err is a ProviderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == kind
}
