package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"news-backend/internal/domain"
	"news-backend/internal/infra/metrics"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com"
	anthropicAPIVersion = "2023-06-01"
	anthropicMaxTokens  = 6144
)

// AnthropicClient выполняет поиск новостей через Anthropic Messages API
// с инструментом веб-поиска.
type AnthropicClient struct {
	http   *resty.Client
	apiKey string
}

// NewAnthropicClient создаёт клиента Anthropic.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	client := resty.New().
		SetBaseURL(anthropicBaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", anthropicAPIVersion)
	return &AnthropicClient{http: client, apiKey: apiKey}
}

type anthropicMessagesRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	MaxUses        int      `json:"max_uses,omitempty"`
	AllowedDomains []string `json:"allowed_domains,omitempty"`
}

type anthropicMessagesResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
	Error   *anthropicError         `json:"error,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Search выполняет один поисковый запрос.
func (c *AnthropicClient) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	if c.apiKey == "" {
		return domain.SearchResult{Model: req.Model}, fmt.Errorf("anthropic: api key is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	body := anthropicMessagesRequest{
		Model:       req.Model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: req.Temperature,
		System:      newsSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
		Tools: []anthropicTool{{
			Type:           "web_search_20250305",
			Name:           "web_search",
			MaxUses:        req.MaxSearchResults,
			AllowedDomains: req.Domains,
		}},
	}

	var parsed anthropicMessagesResponse
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(body).
		SetResult(&parsed).
		SetError(&parsed).
		Post("/v1/messages")
	result := domain.SearchResult{Model: req.Model, Duration: time.Since(start)}
	metrics.ObserveNetworkRequest("anthropic", "messages", req.Model, start, err)
	if err != nil {
		return result, fmt.Errorf("anthropic: do request: %w", err)
	}
	result.InputTokens = parsed.Usage.InputTokens
	result.OutputTokens = parsed.Usage.OutputTokens
	if resp.IsError() {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return result, fmt.Errorf("anthropic: %s", parsed.Error.Message)
		}
		return result, fmt.Errorf("anthropic: unexpected status %d", resp.StatusCode())
	}
	metrics.ObserveLLMGeneration(req.Model, result.Duration, result.InputTokens, result.OutputTokens)

	// ответ с веб-поиском состоит из нескольких текстовых блоков,
	// итоговый JSON обычно в последнем
	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	items, err := ExtractNewsPayload(sb.String())
	if err != nil {
		return result, fmt.Errorf("anthropic: parse response: %w", err)
	}
	result.Items = items
	return result, nil
}
