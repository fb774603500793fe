package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	DefaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	URL  string
	HTTP *http.Client
}

func NewAnthropicClient(url string, httpClient *http.Client) *AnthropicClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AnthropicClient{URL: orDefault(url, DefaultAnthropicURL), HTTP: httpClient}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *AnthropicClient) Complete(ctx context.Context, p Prompt) (Completion, error) {
	if p.APIKey == "" {
		return Completion{}, errors.New("anthropic: api key is required")
	}
	body := map[string]any{
		"model":      p.Model,
		"max_tokens": maxOutput(p),
		"messages":   []anthropicMessage{{Role: "user", Content: p.Input}},
	}
	if p.System != "" {
		body["system"] = p.System
	}

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	headers := map[string]string{
		"x-api-key":         p.APIKey,
		"anthropic-version": anthropicVersion,
	}
	if err := postJSON(ctx, c.HTTP, orDefault(p.BaseURL, c.URL), headers, body, &payload); err != nil {
		return Completion{}, err
	}

	var parts []string
	for _, block := range payload.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return Completion{}, errors.New("anthropic: response missing text content")
	}
	return Completion{
		Text:         strings.TrimSpace(strings.Join(parts, "\n")),
		InputTokens:  payload.Usage.InputTokens,
		OutputTokens: payload.Usage.OutputTokens,
	}, nil
}
