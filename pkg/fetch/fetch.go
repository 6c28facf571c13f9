// Package fetch wraps one page load into a Loading, Error or Ready result.
package fetch

import (
	"context"
	"errors"
	"net/http"

	"evex/pkg/apiclient"
	"evex/pkg/services"
)

type Status string

const (
	Loading Status = "loading"
	Failed  Status = "error"
	Ready   Status = "ready"
)

const (
	NetworkMessage = "Network error. Please try again."
	ExpiredMessage = "Your session has expired. Please log in again."
	GenericMessage = "Something went wrong"
	ClashMessage   = "Time clash detected."
)

type Result[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`

	Err error `json:"-"`
}

func (r Result[T]) Ok() bool {
	return r.Status == Ready
}

func Pending[T any]() Result[T] {
	return Result[T]{Status: Loading}
}

func Done[T any](v T) Result[T] {
	return Result[T]{Status: Ready, Data: v}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Status: Failed, Error: Message(err), Err: err}
}

// Load runs fn once. It never retries.
func Load[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err != nil {
		return Fail[T](err)
	}
	return Done(v)
}

// Message is the user-facing text for err. Server messages pass through
// verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var clash *services.ClashError
	if errors.As(err, &clash) {
		if clash.Message != "" {
			return clash.Message
		}
		return ClashMessage
	}
	if errors.Is(err, apiclient.ErrAuthExpired) {
		return ExpiredMessage
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, apiclient.ErrNetwork) {
		return NetworkMessage
	}
	return GenericMessage
}

// Or returns msg when err carries no server message of its own.
func Or(err error, msg string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message() != http.StatusText(apiErr.Status) {
		return apiErr.Message()
	}
	if errors.Is(err, apiclient.ErrAuthExpired) {
		return ExpiredMessage
	}
	if errors.Is(err, apiclient.ErrNetwork) {
		return NetworkMessage
	}
	return msg
}
