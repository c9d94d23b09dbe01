package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/acta-generator/pkg/config"
)

func TestGroqComplete_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		assert.Equal(t, "llama-test", payload.Model)
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)
		assert.Equal(t, "hola", payload.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"FECHA\":\"hoy\"}"}}]}`))
	}))
	defer ts.Close()

	client := NewGroqClient(&config.LLMConfig{GroqAPIKey: "gsk-test", GroqURL: ts.URL, Model: "llama-test"})

	text, err := client.Complete(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, `{"FECHA":"hoy"}`, text)
	assert.Equal(t, "groq", client.Name())
}

func TestGroqComplete_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		quota     bool
		temporary bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, quota: true, temporary: true},
		{name: "unauthorized", status: http.StatusUnauthorized, quota: false, temporary: false},
		{name: "server error", status: http.StatusBadGateway, quota: false, temporary: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer ts.Close()

			client := NewGroqClient(&config.LLMConfig{GroqAPIKey: "k", GroqURL: ts.URL})
			_, err := client.Complete(context.Background(), "x")
			require.Error(t, err)

			var se *ServiceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.quota, se.QuotaExceeded())
			assert.Equal(t, tt.temporary, se.Temporary())
		})
	}
}

func TestGroqComplete_EmptyReply(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no choices", body: `{"choices":[]}`},
		{name: "empty content", body: `{"choices":[{"message":{"role":"assistant","content":""}}]}`},
		{name: "whitespace content", body: `{"choices":[{"message":{"role":"assistant","content":" \n "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			client := NewGroqClient(&config.LLMConfig{GroqAPIKey: "k", GroqURL: ts.URL})
			_, err := client.Complete(context.Background(), "x")

			var se *ServiceError
			require.True(t, errors.As(err, &se))
			assert.Contains(t, se.Error(), "empty response")
			assert.False(t, se.QuotaExceeded())
		})
	}
}

func TestGroqComplete_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	client := NewGroqClient(&config.LLMConfig{GroqAPIKey: "k", GroqURL: url})
	_, err := client.Complete(context.Background(), "x")

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.StatusCode)
	assert.True(t, se.Temporary())
}

func TestStatusFromMessage(t *testing.T) {
	assert.Equal(t, 429, statusFromMessage("Error 429, Message: Resource has been exhausted, Status: RESOURCE_EXHAUSTED"))
	assert.Equal(t, 0, statusFromMessage("dial tcp: connection refused"))
}
