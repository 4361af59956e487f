package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"news-backend/internal/adapters/notify"
	"news-backend/internal/adapters/provider"
	"news-backend/internal/adapters/repo"
	"news-backend/internal/domain"
	"news-backend/internal/infra/config"
	"news-backend/internal/infra/db"
	infralog "news-backend/internal/infra/log"
	"news-backend/internal/infra/metrics"
	"news-backend/internal/infra/queue"
	discoveryusecase "news-backend/internal/usecase/discovery"
)

func main() {
	cfg := config.Load()
	logger := infralog.NewLogger(cfg.AppEnv).With().Str("component", "discovery-worker").Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("worker: нет подключения к БД")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	repoAdapter := repo.NewPostgres(pool)
	registry := provider.NewRegistry(ctx, cfg.Providers, logger)
	discoveryQueue := queue.NewRedisDiscoveryQueue(redisClient, cfg.Queues.Discovery)

	var notifier domain.Notifier
	if tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.AdminChatID); err != nil {
		log.Error().Err(err).Msg("worker: нотификатор недоступен, продолжаем без уведомлений")
	} else if tg != nil {
		notifier = tg
	}

	discoveryService := discoveryusecase.NewService(
		repoAdapter, repoAdapter, repoAdapter, repoAdapter, repoAdapter,
		repoAdapter, repoAdapter, registry, discoveryQueue, logger,
	)

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)
	logger.Info().Str("queue", cfg.Queues.Discovery).Msg("воркер поиска новостей запущен")

	for {
		job, err := discoveryQueue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				break
			}
			logger.Error().Err(err).Msg("не удалось получить задание из очереди")
			continue
		}
		logger.Info().
			Str("search_type", string(job.SearchType)).
			Str("provider", string(job.Provider)).
			Bool("all", job.All).
			Msg("задание получено")

		run, err := discoveryService.Process(ctx, job)
		if err != nil {
			logger.Error().Err(err).Msg("поиск завершился ошибкой")
			continue
		}
		if notifier != nil {
			if err := notifier.RunFinished(ctx, run); err != nil {
				logger.Error().Err(err).Msg("не удалось отправить сводку")
			}
		}
	}
	logger.Info().Msg("воркер остановлен")
}
