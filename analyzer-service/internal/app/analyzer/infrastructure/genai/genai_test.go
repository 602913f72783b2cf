package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": content},
				},
			},
		})
	}))
}

func TestOpenAIClient_Generate(t *testing.T) {
	server := newOpenAIServer(t, "  - Rasa enak\n- Harga mahal  ")
	defer server.Close()

	client := NewOpenAIClient("test-key", "", server.URL+"/v1")
	text, err := client.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "- Rasa enak\n- Harga mahal", text)
}

func TestOpenAIClient_EmptyContent(t *testing.T) {
	server := newOpenAIServer(t, "   ")
	defer server.Close()

	_, err := NewOpenAIClient("test-key", "", server.URL+"/v1").Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestOpenAIClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := NewOpenAIClient("test-key", "", server.URL+"/v1").Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		expected string
		err      error
	}{
		{"nil response", nil, "", ErrNoCandidates},
		{"no candidates", &genai.GenerateContentResponse{}, "", ErrNoCandidates},
		{
			"no parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
			"", ErrEmptyText,
		},
		{
			"blank text",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("  \n")}}}}},
			"", ErrEmptyText,
		},
		{
			"trimmed text",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("\n- Porsi besar\n")}}}}},
			"- Porsi besar", nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := extractText(tt.resp)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}
}
