package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+212600000001", body["to"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message_id":"m-1","status":"accepted"}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(DefaultClientConfig(server.URL))

	var resp struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	}
	err := client.Post("/messages", map[string]string{"to": "+212600000001"}, &resp, &RequestOptions{
		Context: context.Background(),
		Headers: map[string]string{"Authorization": "Bearer secret"},
		Retries: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "m-1", resp.MessageID)
	assert.Equal(t, "accepted", resp.Status)
}

func TestClientPostRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClientWithConfig(DefaultClientConfig(server.URL))
	err := client.Post("/messages", nil, nil, &RequestOptions{Retries: 2, RetryDelay: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientPostDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClientWithConfig(DefaultClientConfig(server.URL))
	err := client.Post("/messages", nil, nil, &RequestOptions{Retries: 3, RetryDelay: 5 * time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errors.New("provider request failed with status code 503: busy")))
	assert.True(t, isRetryableError(context.DeadlineExceeded))
	assert.False(t, isRetryableError(errors.New("provider request failed with status code 404: not found")))
}
