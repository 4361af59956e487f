package provider

import (
	"context"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
	"news-backend/internal/infra/config"
	"news-backend/internal/infra/openai"
)

var providerNames = map[domain.Provider]string{
	domain.ProviderAuto:      "Автоматический выбор",
	domain.ProviderGrok:      "xAI Grok",
	domain.ProviderAnthropic: "Anthropic Claude",
	domain.ProviderGemini:    "Google Gemini",
	domain.ProviderOpenAI:    "OpenAI GPT",
}

var providerDescriptions = map[domain.Provider]string{
	domain.ProviderAuto:      "Основной провайдер конфигурации с переходом по цепочке резервов",
	domain.ProviderGrok:      "Поиск в реальном времени через Live Search",
	domain.ProviderAnthropic: "Messages API с инструментом веб-поиска",
	domain.ProviderGemini:    "Gemini API, ответ в формате JSON",
	domain.ProviderOpenAI:    "Chat Completions без веб-поиска, резерв цепочки",
}

// Registry хранит клиентов провайдеров, собранных из настроек окружения.
// Провайдер без API-ключа считается недоступным, но остаётся в списке.
type Registry struct {
	clients map[domain.Provider]domain.ProviderClient
}

// NewRegistry создаёт реестр по ключам из конфигурации.
// Ошибка инициализации отдельного провайдера не фатальна:
// он помечается недоступным, остальные продолжают работать.
func NewRegistry(ctx context.Context, cfg config.ProvidersConfig, logger zerolog.Logger) *Registry {
	clients := make(map[domain.Provider]domain.ProviderClient)

	if cfg.XAIAPIKey != "" {
		chat := openai.NewClient(cfg.XAIAPIKey, cfg.XAIBaseURL, "grok", 0)
		clients[domain.ProviderGrok] = NewGrokClient(chat)
	}
	if cfg.AnthropicAPIKey != "" {
		clients[domain.ProviderAnthropic] = NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Error().Err(err).Msg("провайдер gemini не инициализирован")
		} else {
			clients[domain.ProviderGemini] = gemini
		}
	}
	if cfg.OpenAIAPIKey != "" {
		chat := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, "openai", 0)
		clients[domain.ProviderOpenAI] = NewOpenAIClient(chat)
	}

	for _, p := range domain.KnownProviders {
		if _, ok := clients[p]; !ok {
			logger.Warn().Str("provider", string(p)).Msg("провайдер недоступен: ключ API не задан")
		}
	}
	return &Registry{clients: clients}
}

// List возвращает провайдеров с признаком доступности.
// Первым идёт auto, он доступен, пока доступен хотя бы один конкретный провайдер.
func (r *Registry) List() []domain.ProviderInfo {
	infos := make([]domain.ProviderInfo, 0, len(domain.KnownProviders)+1)
	infos = append(infos, domain.ProviderInfo{
		ID:          domain.ProviderAuto,
		Name:        providerNames[domain.ProviderAuto],
		Description: providerDescriptions[domain.ProviderAuto],
		Available:   len(r.clients) > 0,
	})
	for _, p := range domain.KnownProviders {
		_, ok := r.clients[p]
		infos = append(infos, domain.ProviderInfo{
			ID:          p,
			Name:        providerNames[p],
			Description: providerDescriptions[p],
			Available:   ok,
		})
	}
	return infos
}

// Client возвращает клиента провайдера, если тот доступен.
func (r *Registry) Client(p domain.Provider) (domain.ProviderClient, bool) {
	client, ok := r.clients[p]
	return client, ok
}

// Available сообщает, доступен ли провайдер.
func (r *Registry) Available(p domain.Provider) bool {
	if p == domain.ProviderAuto {
		return len(r.clients) > 0
	}
	_, ok := r.clients[p]
	return ok
}
