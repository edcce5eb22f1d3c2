package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/celestia-labs/reportgen/internal/config"
)

// GeminiProvider talks to the Google generative language API.
type GeminiProvider struct {
	cfg    config.CompletionProviderConfig
	client *http.Client
}

func NewGeminiProvider(cfg config.CompletionProviderConfig, client *http.Client) *GeminiProvider {
	return &GeminiProvider{cfg: cfg, client: client}
}

func (p *GeminiProvider) Name() string {
	if p.cfg.Name != "" {
		return p.cfg.Name
	}
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequestBody struct {
	SystemInstruction *geminiContent `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponseBody struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	var body geminiRequestBody
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}}
	body.GenerationConfig.Temperature = req.Temperature
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}

	var parsed geminiResponseBody
	json.Unmarshal(raw, &parsed)

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			RetryAfter: geminiRetryDelay(&parsed),
			Message:    parsed.Error.Message,
		}
	}
	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = string(raw)
		}
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "empty candidates in response"}
	}

	return &Response{
		Text:       parsed.Candidates[0].Content.Parts[0].Text,
		TokensUsed: parsed.UsageMetadata.TotalTokenCount,
		Provider:   p.Name(),
	}, nil
}

// geminiRetryDelay extracts the structured RetryInfo delay ("21s",
// "1.5s") from a RESOURCE_EXHAUSTED error, if present.
func geminiRetryDelay(resp *geminiResponseBody) time.Duration {
	for _, d := range resp.Error.Details {
		if d.RetryDelay == "" {
			continue
		}
		if dur, err := time.ParseDuration(d.RetryDelay); err == nil {
			return dur
		}
	}
	return 0
}
