package provider

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"news-backend/internal/domain"
	"news-backend/internal/infra/metrics"
)

// GeminiClient выполняет поиск новостей через Google Gemini SDK.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient создаёт клиента Gemini.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Search выполняет один поисковый запрос.
func (c *GeminiClient) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: newsSystemPrompt}},
		},
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	result := domain.SearchResult{Model: req.Model, Duration: time.Since(start)}
	metrics.ObserveNetworkRequest("gemini", "generate_content", req.Model, start, err)
	if err != nil {
		return result, fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp.UsageMetadata != nil {
		if resp.UsageMetadata.PromptTokenCount != nil {
			result.InputTokens = int(*resp.UsageMetadata.PromptTokenCount)
		}
		if resp.UsageMetadata.CandidatesTokenCount != nil {
			result.OutputTokens = int(*resp.UsageMetadata.CandidatesTokenCount)
		}
	}
	metrics.ObserveLLMGeneration(req.Model, result.Duration, result.InputTokens, result.OutputTokens)

	text, err := resp.Text()
	if err != nil {
		return result, fmt.Errorf("gemini: read response text: %w", err)
	}
	items, err := ExtractNewsPayload(text)
	if err != nil {
		return result, fmt.Errorf("gemini: parse response: %w", err)
	}
	result.Items = items
	return result, nil
}
