package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"evex/pkg/apiclient"
	"evex/pkg/models"
	"evex/pkg/services"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Ready(t *testing.T) {
	r := Load(context.Background(), func(context.Context) ([]models.Event, error) {
		return []models.Event{{ID: 1}}, nil
	})
	assert.True(t, r.Ok())
	assert.Equal(t, Ready, r.Status)
	assert.Len(t, r.Data, 1)
	assert.Empty(t, r.Error)
}

func TestLoad_Failed(t *testing.T) {
	calls := 0
	r := Load(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, &apiclient.APIError{Status: http.StatusBadRequest, Payload: map[string]any{"error": "Event is full"}}
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, Failed, r.Status)
	assert.Equal(t, "Event is full", r.Error)
	assert.Error(t, r.Err)
}

func TestPending(t *testing.T) {
	assert.Equal(t, Loading, Pending[string]().Status)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"network", fmt.Errorf("GET /events/: %w: dial tcp", apiclient.ErrNetwork), NetworkMessage},
		{"expired", fmt.Errorf("GET /events/: %w", apiclient.ErrAuthExpired), ExpiredMessage},
		{"api detail", &apiclient.APIError{Status: 403, Payload: map[string]any{"detail": "Forbidden here"}}, "Forbidden here"},
		{"clash with message", &services.ClashError{Message: "Overlaps AI Summit"}, "Overlaps AI Summit"},
		{"clash without message", &services.ClashError{}, ClashMessage},
		{"unknown", errors.New("boom"), GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestOr(t *testing.T) {
	fallback := "Failed to cancel registration. Please try again."

	bare := &apiclient.APIError{Status: http.StatusInternalServerError, Payload: ""}
	assert.Equal(t, fallback, Or(bare, fallback))

	withMsg := &apiclient.APIError{Status: http.StatusBadRequest, Payload: map[string]any{"error": "Already cancelled"}}
	assert.Equal(t, "Already cancelled", Or(withMsg, fallback))

	assert.Equal(t, NetworkMessage, Or(apiclient.ErrNetwork, fallback))
	assert.Equal(t, fallback, Or(errors.New("x"), fallback))
}
