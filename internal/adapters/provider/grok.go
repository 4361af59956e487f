package provider

import (
	"context"
	"fmt"
	"time"

	"news-backend/internal/domain"
	"news-backend/internal/infra/openai"
)

// chatCompletionClient — минимальный интерфейс OpenAI-совместимого клиента.
type chatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const newsSystemPrompt = "You are a news research assistant. Respond with a single JSON object " +
	`of the form {"news": [{"title": {...}, "summary": {...}, "url": "..."}]}. ` +
	"Return an empty list if no relevant news is found. Do not add any text outside the JSON."

// GrokClient выполняет поиск новостей через xAI Grok (Live Search).
type GrokClient struct {
	chat chatCompletionClient
}

// NewGrokClient создаёт клиента Grok.
func NewGrokClient(chat chatCompletionClient) *GrokClient {
	return &GrokClient{chat: chat}
}

// Search выполняет один поисковый запрос. Токены из usage возвращаются
// даже при ошибке разбора ответа.
func (c *GrokClient) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: newsSystemPrompt},
			{Role: openai.RoleUser, Content: req.Prompt},
		},
		WebSearchOptions: &openai.WebSearchOptions{
			MaxSearchResults:  req.MaxSearchResults,
			SearchContextSize: req.SearchContextSize,
			AllowedDomains:    req.Domains,
		},
	}

	start := time.Now()
	resp, err := c.chat.CreateChatCompletion(ctx, chatReq)
	result := domain.SearchResult{Model: req.Model, Duration: time.Since(start)}
	if resp.Usage != nil {
		result.InputTokens = resp.Usage.PromptTokens
		result.OutputTokens = resp.Usage.CompletionTokens
	}
	if err != nil {
		return result, err
	}
	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("grok: empty choices")
	}
	items, err := ExtractNewsPayload(resp.Choices[0].Message.Content)
	if err != nil {
		return result, fmt.Errorf("grok: parse response: %w", err)
	}
	result.Items = items
	return result, nil
}
