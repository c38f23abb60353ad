// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrDeliveryFailed  = errors.New("message delivery failed")
	ErrDataUnavailable = errors.New("market data unavailable")
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrNoAssistant     = errors.New("assistant not configured")
	ErrNotConfigured   = errors.New("delivery channel not configured")
	ErrTimeout         = errors.New("operation timed out")
)

// DeliveryError represents a non-success response from a chat channel.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery error [%s]: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("delivery error [%s]: status %d: %s", e.Channel, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrDeliveryFailed as well as the transport cause.
func (e *DeliveryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDeliveryFailed, e.Err}
	}
	return []error{ErrDeliveryFailed}
}

// NewDeliveryError creates a new DeliveryError for a failed HTTP response.
func NewDeliveryError(channel string, status int, body string) *DeliveryError {
	if len(body) > 200 {
		body = body[:200]
	}
	return &DeliveryError{
		Channel:    channel,
		StatusCode: status,
		Body:       body,
	}
}

// ProviderError represents an error from the market data provider.
type ProviderError struct {
	Endpoint string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("provider error [%s] %s: %v", e.Endpoint, e.Symbol, e.Err)
	}
	return fmt.Sprintf("provider error [%s]: %v", e.Endpoint, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrDataUnavailable, e.Err}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(endpoint, symbol string, err error) *ProviderError {
	return &ProviderError{
		Endpoint: endpoint,
		Symbol:   symbol,
		Err:      err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// AgentError represents an error from the conversational assistant.
type AgentError struct {
	Model     string
	Operation string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("assistant error [%s] %s: %v", e.Model, e.Operation, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new AgentError.
func NewAgentError(model, operation string, err error) *AgentError {
	return &AgentError{
		Model:     model,
		Operation: operation,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
