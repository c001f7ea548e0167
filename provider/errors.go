package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches every *RequestFailedError.
	ErrRequestFailed = errors.New("LLM request failed")

	// ErrInvalidJSON matches every *InvalidJSONError.
	ErrInvalidJSON = errors.New("invalid JSON response")
)

// StatusError is a non-2xx answer from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("LLM API error: status=%d body=%s", e.StatusCode, e.Body)
}

// RequestFailedError is returned once every attempt has failed. Err is the
// cause of the last attempt.
type RequestFailedError struct {
	Attempts int
	Err      error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("LLM request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RequestFailedError) Unwrap() []error {
	return []error{ErrRequestFailed, e.Err}
}

// InvalidJSONError is returned by GenerateJSON when a successful reply is not
// valid JSON. It is never retried.
type InvalidJSONError struct {
	Response string
	Err      error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("failed to parse JSON response: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() []error {
	return []error{ErrInvalidJSON, e.Err}
}
