package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const DefaultLocalURL = "http://localhost:11434/v1/chat/completions"

// LocalClient speaks the OpenAI-compatible chat completions protocol served by
// self-hosted runtimes. The API key is optional.
type LocalClient struct {
	URL  string
	HTTP *http.Client
}

func NewLocalClient(url string, httpClient *http.Client) *LocalClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LocalClient{URL: orDefault(url, DefaultLocalURL), HTTP: httpClient}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *LocalClient) Complete(ctx context.Context, p Prompt) (Completion, error) {
	messages := make([]chatMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: p.Input})
	body := map[string]any{
		"model":      p.Model,
		"messages":   messages,
		"max_tokens": maxOutput(p),
		"stream":     false,
	}

	var payload struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	headers := map[string]string{}
	if p.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.APIKey
	}
	if err := postJSON(ctx, c.HTTP, orDefault(p.BaseURL, c.URL), headers, body, &payload); err != nil {
		return Completion{}, err
	}

	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return Completion{}, errors.New("local: response missing message content")
	}
	return Completion{
		Text:         strings.TrimSpace(payload.Choices[0].Message.Content),
		InputTokens:  payload.Usage.PromptTokens,
		OutputTokens: payload.Usage.CompletionTokens,
	}, nil
}
