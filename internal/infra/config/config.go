package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	TZ          string `envconfig:"TZ" default:"Europe/Amsterdam"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	AdminToken string `envconfig:"ADMIN_API_TOKEN"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Providers ProvidersConfig `envconfig:""`

	Telegram struct {
		Token       string `envconfig:"TG_BOT_TOKEN"`
		AdminChatID int64  `envconfig:"TG_ADMIN_CHAT_ID"`
	} `envconfig:""`

	Queues struct {
		Discovery string `envconfig:"DISCOVERY_QUEUE_KEY" default:"discovery_jobs"`
	} `envconfig:""`

	Scheduler struct {
		PublishSpec   string `envconfig:"PUBLISH_CRON" default:"*/5 * * * *"`
		DiscoverySpec string `envconfig:"DISCOVERY_CRON" default:"0 3 * * *"`
	} `envconfig:""`
}

// ProvidersConfig содержит API-ключи LLM-провайдеров.
// Пустой ключ означает, что провайдер недоступен.
type ProvidersConfig struct {
	XAIAPIKey       string `envconfig:"XAI_API_KEY"`
	XAIBaseURL      string `envconfig:"XAI_BASE_URL" default:"https://api.x.ai/v1"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL"`
}

// Load загружает конфиг из окружения. Файл .env необязателен.
func Load() AppConfig {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
