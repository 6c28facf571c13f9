package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrAuthExpired is returned when a 401 could not be recovered by a refresh.
	ErrAuthExpired = errors.New("authentication expired")
	// ErrNetwork wraps transport failures. They are never retried.
	ErrNetwork = errors.New("network error")
)

// APIError is any non-2xx answer other than the refresh path.
// Payload is the decoded JSON body, or the body as text when it is not JSON.
type APIError struct {
	Status  int
	Body    []byte
	Payload any
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}
	var v any
	if len(body) > 0 && json.Unmarshal(body, &v) == nil {
		e.Payload = v
	} else {
		e.Payload = strings.TrimSpace(string(body))
	}
	return e
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message())
}

// Message picks error, message, detail, the first field error, then raw text.
func (e *APIError) Message() string {
	switch p := e.Payload.(type) {
	case map[string]any:
		for _, k := range []string{"error", "message", "detail"} {
			if s, ok := p[k].(string); ok && s != "" {
				return s
			}
		}
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if msg := firstString(p[k]); msg != "" {
				return k + ": " + msg
			}
		}
	case []any:
		if msg := firstString(p); msg != "" {
			return msg
		}
	case string:
		if p != "" {
			return p
		}
	}
	return http.StatusText(e.Status)
}

// Decode unmarshals the raw body into v, for callers that understand a
// specific error contract.
func (e *APIError) Decode(v any) error {
	return json.Unmarshal(e.Body, v)
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
