package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const DefaultOpenAIURL = "https://api.openai.com/v1/responses"

// OpenAIClient calls the OpenAI responses API.
type OpenAIClient struct {
	URL  string
	HTTP *http.Client
}

func NewOpenAIClient(url string, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIClient{URL: orDefault(url, DefaultOpenAIURL), HTTP: httpClient}
}

func (c *OpenAIClient) Complete(ctx context.Context, p Prompt) (Completion, error) {
	if p.APIKey == "" {
		return Completion{}, errors.New("openai: api key is required")
	}
	body := map[string]any{
		"model":             p.Model,
		"input":             p.Input,
		"max_output_tokens": maxOutput(p),
	}
	if p.System != "" {
		body["instructions"] = p.System
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	headers := map[string]string{"Authorization": "Bearer " + p.APIKey}
	if err := postJSON(ctx, c.HTTP, orDefault(p.BaseURL, c.URL), headers, body, &payload); err != nil {
		return Completion{}, err
	}

	text := strings.TrimSpace(payload.OutputText)
	for _, item := range payload.Output {
		if text != "" {
			break
		}
		for _, content := range item.Content {
			if t := strings.TrimSpace(content.Text); t != "" {
				text = t
				break
			}
		}
	}
	if text == "" {
		return Completion{}, errors.New("openai: response missing output text")
	}
	return Completion{Text: text, InputTokens: payload.Usage.InputTokens, OutputTokens: payload.Usage.OutputTokens}, nil
}
