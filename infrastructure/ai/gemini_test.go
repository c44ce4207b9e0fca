package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inward-backend/application/ports"
	apperrors "inward-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewGeminiClient(server.URL, "gemini-2.0-flash", "test-key", nil, zap.NewNop()).
		WithHTTPClient(server.Client())
	return client, server
}

func structuredRequest() ports.StructuredRequest {
	return ports.StructuredRequest{
		SystemInstruction: "be brief",
		Prompt:            "synthesize this",
		Schema: map[string]interface{}{
			"type":     "object",
			"required": []string{"distillation"},
		},
	}
}

func TestGenerateStructured_Success(t *testing.T) {
	var captured map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"distillation\":\"depth\"}"}]}}]}`))
	})

	payload, err := client.GenerateStructured(context.Background(), structuredRequest())
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "depth", result["distillation"])

	// The request forces structured output through the schema.
	genConfig, ok := captured["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "application/json", genConfig["responseMimeType"])
	assert.NotNil(t, genConfig["responseJsonSchema"])
	assert.NotNil(t, captured["systemInstruction"])
}

func TestGenerateStructured_RateLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"status":"UNAVAILABLE","message":"slow down"}}`))
	})

	_, err := client.GenerateStructured(context.Background(), structuredRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimit(err))
}

func TestGenerateStructured_QuotaExhausted(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"resource exhausted in 429", http.StatusTooManyRequests, `{"error":{"status":"RESOURCE_EXHAUSTED","message":"out of quota"}}`},
		{"payment required", http.StatusPaymentRequired, `{"error":{"message":"billing"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GenerateStructured(context.Background(), structuredRequest())
			require.Error(t, err)
			assert.True(t, apperrors.IsQuota(err))
		})
	}
}

func TestGenerateStructured_ServerErrorIsGeneric(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	_, err := client.GenerateStructured(context.Background(), structuredRequest())
	require.Error(t, err)
	assert.False(t, apperrors.IsRateLimit(err))
	assert.False(t, apperrors.IsQuota(err))
}

func TestGenerateStructured_EmptyCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.GenerateStructured(context.Background(), structuredRequest())
	assert.Error(t, err)
}
