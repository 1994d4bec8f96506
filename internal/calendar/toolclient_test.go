// internal/calendar/toolclient_test.go
package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hiring-coordinator/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolClient_CreateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/calendar/events", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"eventId": "evt-42", "eventLink": "https://cal.example.com/evt-42", "success": true}`))
	}))
	defer server.Close()

	client := NewToolClient(server.URL, "test-key", time.Second)
	result, err := client.CreateEvent(context.Background(), EventRequest{Summary: "Interview"})

	require.NoError(t, err)
	assert.Equal(t, "evt-42", result.EventID)
	assert.Equal(t, "https://cal.example.com/evt-42", result.EventLink)
}

func TestToolClient_CreateEvent_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewToolClient(server.URL, "", time.Second)
	result, err := client.CreateEvent(context.Background(), EventRequest{Summary: "Interview"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEventCreateFailed))
	assert.True(t, errors.IsRetryable(err))
}

func TestToolClient_CreateEvent_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "message": "organizer calendar is read-only"}`))
	}))
	defer server.Close()

	client := NewToolClient(server.URL, "", time.Second)
	result, err := client.CreateEvent(context.Background(), EventRequest{Summary: "Interview"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEventCreateFailed))
}
