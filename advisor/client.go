package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Prompt is one provider invocation.
type Prompt struct {
	Model           string
	APIKey          string
	System          string
	Input           string
	MaxOutputTokens int

	// BaseURL overrides the client's endpoint for this call when set.
	BaseURL string
}

type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client invokes one provider.
type Client interface {
	Complete(ctx context.Context, p Prompt) (Completion, error)
}

const defaultMaxOutputTokens = 1024

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, err := io.ReadAll(io.LimitReader(res.Body, 4096))
		if err != nil {
			return fmt.Errorf("read error body: %w", err)
		}
		return fmt.Errorf("request status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func maxOutput(p Prompt) int {
	if p.MaxOutputTokens > 0 {
		return p.MaxOutputTokens
	}
	return defaultMaxOutputTokens
}
