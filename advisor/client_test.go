package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderServer(t *testing.T, handler func(t *testing.T, r *http.Request, body map[string]any) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		status, resp := handler(t, r, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientComplete(t *testing.T) {
	srv := newProviderServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, string) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "gpt-4o", body["model"])
		assert.Equal(t, "hello", body["input"])
		assert.Equal(t, "be brief", body["instructions"])
		return http.StatusOK, `{"output":[{"content":[{"type":"output_text","text":" Hi there "}]}],"usage":{"input_tokens":12,"output_tokens":3}}`
	})

	c := NewOpenAIClient(srv.URL, srv.Client())
	got, err := c.Complete(context.Background(), Prompt{Model: "gpt-4o", APIKey: "sk-test", System: "be brief", Input: "hello"})
	require.NoError(t, err)
	assert.Equal(t, Completion{Text: "Hi there", InputTokens: 12, OutputTokens: 3}, got)
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	srv := newProviderServer(t, func(*testing.T, *http.Request, map[string]any) (int, string) {
		return http.StatusTooManyRequests, `{"error":"rate limited"}`
	})

	_, err := NewOpenAIClient(srv.URL, srv.Client()).Complete(context.Background(), Prompt{Model: "gpt-4o", APIKey: "k", Input: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
	assert.NotContains(t, err.Error(), "Bearer")
}

func TestOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", nil).Complete(context.Background(), Prompt{Model: "gpt-4o", Input: "x"})
	assert.Error(t, err)
}

func TestAnthropicClientComplete(t *testing.T) {
	srv := newProviderServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, string) {
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "system text", body["system"])
		assert.EqualValues(t, 1024, body["max_tokens"])
		messages, _ := body["messages"].([]any)
		assert.Len(t, messages, 1)
		return http.StatusOK, `{"content":[{"type":"text","text":"Part one."},{"type":"text","text":"Part two."}],"usage":{"input_tokens":40,"output_tokens":9}}`
	})

	got, err := NewAnthropicClient(srv.URL, srv.Client()).Complete(context.Background(),
		Prompt{Model: "claude-3-5-haiku-latest", APIKey: "sk-ant", System: "system text", Input: "go"})
	require.NoError(t, err)
	assert.Equal(t, "Part one.\nPart two.", got.Text)
	assert.Equal(t, 40, got.InputTokens)
	assert.Equal(t, 9, got.OutputTokens)
}

func TestAnthropicClientEmptyContent(t *testing.T) {
	srv := newProviderServer(t, func(*testing.T, *http.Request, map[string]any) (int, string) {
		return http.StatusOK, `{"content":[],"usage":{}}`
	})

	_, err := NewAnthropicClient(srv.URL, srv.Client()).Complete(context.Background(), Prompt{APIKey: "k", Input: "x"})
	assert.Error(t, err)
}

func TestLocalClientUsesPromptBaseURL(t *testing.T) {
	srv := newProviderServer(t, func(t *testing.T, r *http.Request, body map[string]any) (int, string) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "llama3", body["model"])
		assert.Equal(t, false, body["stream"])
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"local reply"}}],"usage":{"prompt_tokens":7,"completion_tokens":2}}`
	})

	c := NewLocalClient("http://127.0.0.1:1/unreachable", srv.Client())
	got, err := c.Complete(context.Background(), Prompt{Model: "llama3", Input: "ping", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, Completion{Text: "local reply", InputTokens: 7, OutputTokens: 2}, got)
}

func TestGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("", nil).Complete(context.Background(), Prompt{Model: "gemini-2.5-flash", Input: "x"})
	assert.Error(t, err)
}
