package domain

import "time"

// DefaultSearchConfiguration возвращает конфигурацию по умолчанию.
// Создаётся автоматически, если в системе нет ни одной конфигурации.
func DefaultSearchConfiguration() SearchConfiguration {
	return SearchConfiguration{
		Name:              "default",
		IsActive:          true,
		PrimaryProvider:   ProviderGrok,
		FallbackChain:     []Provider{ProviderAnthropic, ProviderGemini, ProviderOpenAI},
		Temperature:       0.3,
		Timeout:           120 * time.Second,
		MaxSearchResults:  5,
		SearchContextSize: "low",
		Models: map[Provider]string{
			ProviderGrok:      "grok-4-1-fast",
			ProviderAnthropic: "claude-3-5-haiku-20241022",
			ProviderGemini:    "gemini-2.0-flash-exp",
			ProviderOpenAI:    "gpt-4o",
		},
		Prices: map[Provider]ProviderPrices{
			ProviderGrok:      {Input: 3.0, Output: 15.0},
			ProviderAnthropic: {Input: 0.80, Output: 4.0},
			ProviderGemini:    {Input: 0.075, Output: 0.30},
			ProviderOpenAI:    {Input: 2.50, Output: 10.0},
		},
		MaxNewsPerTarget: 10,
		RequestDelay:     500 * time.Millisecond,
	}
}
