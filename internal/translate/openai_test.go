package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, reply string, inspect func(openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if inspect != nil {
			inspect(req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-test",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Index:   0,
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := chatServer(t, "परीक्षण\n", func(req openai.ChatCompletionRequest) { got = req })

	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	out, err := c.Translate(context.Background(), "test", "hi")
	require.NoError(t, err)
	assert.Equal(t, "परीक्षण", out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Hindi")
	assert.Equal(t, "test", got.Messages[1].Content)
}

func TestTranslate_EmptyReply(t *testing.T) {
	srv := chatServer(t, "   ", nil)

	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	_, err := c.Translate(context.Background(), "test", "fr")
	assert.Error(t, err)
}

func TestTranslate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	_, err := c.Translate(context.Background(), "test", "hi")
	require.Error(t, err)

	var apiErr *openai.APIError
	assert.ErrorAs(t, err, &apiErr)
}
