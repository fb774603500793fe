package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient calls Gemini through the genai SDK. A client is built per call
// because the API key belongs to the requesting user.
type GeminiClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewGeminiClient(baseURL string, httpClient *http.Client) *GeminiClient {
	return &GeminiClient{BaseURL: baseURL, HTTP: httpClient}
}

func (c *GeminiClient) Complete(ctx context.Context, p Prompt) (Completion, error) {
	if p.APIKey == "" {
		return Completion{}, errors.New("gemini: api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:     p.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.HTTP,
	}
	if base := orDefault(p.BaseURL, c.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini: create client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(maxOutput(p))}
	if p.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	resp, err := client.Models.GenerateContent(ctx, p.Model, genai.Text(p.Input), genCfg)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Completion{}, errors.New("gemini: response missing text")
	}
	out := Completion{Text: text}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
