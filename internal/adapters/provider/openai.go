package provider

import (
	"context"
	"fmt"
	"time"

	"news-backend/internal/domain"
	"news-backend/internal/infra/openai"
)

// OpenAIClient выполняет поиск новостей через OpenAI Chat Completions.
// Веб-поиска у модели нет, поэтому OpenAI замыкает цепочку резервов:
// модель отвечает по собственным знаниям в пределах запрошенного периода.
type OpenAIClient struct {
	chat chatCompletionClient
}

// NewOpenAIClient создаёт клиента OpenAI.
func NewOpenAIClient(chat chatCompletionClient) *OpenAIClient {
	return &OpenAIClient{chat: chat}
}

// Search выполняет один поисковый запрос.
func (c *OpenAIClient) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: newsSystemPrompt},
			{Role: openai.RoleUser, Content: req.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
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
		return result, fmt.Errorf("openai: empty choices")
	}
	items, err := ExtractNewsPayload(resp.Choices[0].Message.Content)
	if err != nil {
		return result, fmt.Errorf("openai: parse response: %w", err)
	}
	result.Items = items
	return result, nil
}
