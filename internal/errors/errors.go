// Package errors provides custom error types for the gatewaychat client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrAuthFailed          = errors.New("authentication failed")
	ErrNoToken             = errors.New("no auth token found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrBusy                = errors.New("a response is already in progress")
	ErrUnknownPreset       = errors.New("unknown preset")
	ErrInvalidTemperature  = errors.New("temperature must be between 0 and 2")
	ErrInvalidResponse     = errors.New("invalid response format")
	ErrConversationMissing = errors.New("conversation not found")
)

// AuthError represents an authentication failure
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: token may have expired"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// ProviderError is a structured rejection returned by the gateway or one of
// the upstream providers behind it.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string // machine-readable error code, e.g. "unsupported_value"
	Param      string // request parameter the provider complained about
	Message    string
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString("provider error")
	if e.Provider != "" {
		fmt.Fprintf(&b, " (%s)", e.Provider)
	}
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " [%d]", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, " param=%s", e.Param)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// Is matches ErrAuthFailed for 401/403 responses
func (e *ProviderError) Is(target error) bool {
	if target == ErrAuthFailed {
		return e.StatusCode == 401 || e.StatusCode == 403
	}
	return false
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, statusCode int, code, param, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Code:       code,
		Param:      param,
		Message:    message,
	}
}

// NetworkError represents a transport failure before any provider answer
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError creates a new NetworkError
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

// StorageError wraps a failure of the durable key-value store
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches ErrStorageUnavailable
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// TemperaturePolicy lists the structured error fields that identify a
// provider refusing the temperature parameter.
type TemperaturePolicy struct {
	Codes  []string
	Params []string
}

// DefaultTemperaturePolicy matches the OpenAI-style rejection that reasoning
// models return for a non-default temperature.
func DefaultTemperaturePolicy() TemperaturePolicy {
	return TemperaturePolicy{
		Codes:  []string{"unsupported_value", "unsupported_parameter", "invalid_request_error"},
		Params: []string{"temperature"},
	}
}

// IsTemperatureRejection reports whether err is a provider rejection of the
// temperature parameter. Both the code and the rejected parameter must match.
func IsTemperatureRejection(err error, policy TemperaturePolicy) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	return containsFold(policy.Params, pe.Param) && containsFold(policy.Codes, pe.Code)
}

func containsFold(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// IsAuthError checks if the error is an authentication error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsNetworkError checks if the error is a transport failure
func IsNetworkError(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsProviderError checks if the error is a structured provider rejection
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// UserMessage returns a title and description suitable for a notification
func UserMessage(err error) (title, description string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out", "The gateway did not answer in time. Try again."
	case IsAuthError(err), errors.Is(err, ErrNoToken):
		return "Authentication failed", "Run 'gatewaychat login' to refresh your token."
	case IsNetworkError(err):
		return "Connection failed", "Could not reach the AI gateway. Check your network and try again."
	case IsProviderError(err):
		var pe *ProviderError
		errors.As(err, &pe)
		desc := pe.Message
		if desc == "" {
			desc = "The model rejected the request."
		}
		return "The model could not answer", desc
	default:
		return "Could not get a response", err.Error()
	}
}
