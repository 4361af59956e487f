package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"news-backend/internal/domain"
	"news-backend/internal/infra/metrics"
)

// TelegramNotifier отправляет администратору сводку завершённого поиска.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier создаёт нотификатор. При пустом токене или chatID
// возвращает nil: уведомления в этом случае просто не отправляются.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// RunFinished реализует domain.Notifier.
func (n *TelegramNotifier) RunFinished(_ context.Context, run domain.DiscoveryRun) error {
	if n == nil {
		return nil
	}
	text := fmt.Sprintf(
		"Поиск новостей завершён\n\nЗапуск: %s\nЦелей обработано: %d (ошибок: %d)\nНайдено новостей: %d\nДубликатов пропущено: %d\nЗапросов к API: %d\nТокены: %d вход / %d выход\nСтоимость: $%.4f\nДлительность: %s",
		run.UID,
		run.TargetsProcessed, run.TargetsFailed,
		run.NewsFound,
		run.NewsDuplicates,
		run.TotalRequests,
		run.TotalInputTokens, run.TotalOutputTokens,
		run.EstimatedCostUSD,
		run.Duration().Round(time.Second),
	)
	msg := tgbotapi.NewMessage(n.chatID, text)

	start := time.Now()
	_, err := n.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram", "send_message", "admin_chat", start, err)
	if err != nil {
		return fmt.Errorf("telegram: send summary: %w", err)
	}
	return nil
}
