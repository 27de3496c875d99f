// Package service wraps the client repository calls in Result envelopes.
// Services never return Go errors: every failure becomes Result.Error.
package service

import (
	"errors"

	"github.com/yigit/schooladmin/internal/client/api"
)

// Result is the outcome of a client service call
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ok wraps a successful value
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// OkWithMessage wraps a successful value with a note for the caller
func OkWithMessage[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message}
}

// Fail builds a failed result. The message prefers the server error body,
// then the error text, then fallback.
func Fail[T any](err error, fallback string) Result[T] {
	return Result[T]{Success: false, Error: ErrorMessage(err, fallback)}
}

// Invalid builds a failed result from a validation message
func Invalid[T any](message string) Result[T] {
	return Result[T]{Success: false, Error: message}
}

// ErrorMessage extracts the message shown to users
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Message(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
