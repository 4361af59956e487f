package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"news-backend/internal/adapters/provider"
	"news-backend/internal/adapters/repo"
	"news-backend/internal/domain"
	"news-backend/internal/infra/config"
	"news-backend/internal/infra/db"
	infralog "news-backend/internal/infra/log"
	"news-backend/internal/infra/metrics"
	"news-backend/internal/infra/queue"
	discoveryusecase "news-backend/internal/usecase/discovery"
	newsusecase "news-backend/internal/usecase/news"
)

func main() {
	cfg := config.Load()
	logger := infralog.NewLogger(cfg.AppEnv).With().Str("component", "scheduler").Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	repoAdapter := repo.NewPostgres(pool)
	registry := provider.NewRegistry(ctx, cfg.Providers, logger)
	discoveryQueue := queue.NewRedisDiscoveryQueue(redisClient, cfg.Queues.Discovery)

	newsService := newsusecase.NewService(repoAdapter, logger)
	discoveryService := discoveryusecase.NewService(
		repoAdapter, repoAdapter, repoAdapter, repoAdapter, repoAdapter,
		repoAdapter, repoAdapter, registry, discoveryQueue, logger,
	)

	c := cron.New()

	// публикация запланированных новостей с наступившей датой
	if _, err := c.AddFunc(cfg.Scheduler.PublishSpec, func() {
		if _, err := newsService.PublishDue(ctx); err != nil {
			logger.Error().Err(err).Msg("не удалось опубликовать запланированные новости")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("scheduler: некорректное расписание публикации")
	}

	// ночной автоматический поиск по всем источникам
	if _, err := c.AddFunc(cfg.Scheduler.DiscoverySpec, func() {
		_, err := discoveryService.Start(ctx, discoveryusecase.StartRequest{
			SearchType: domain.SearchTypeResources,
			All:        true,
			Provider:   domain.ProviderAuto,
		})
		switch {
		case errors.Is(err, domain.ErrDiscoveryRunning):
			logger.Warn().Msg("поиск уже выполняется, ночной запуск пропущен")
		case errors.Is(err, domain.ErrEmptyTargets):
			logger.Warn().Msg("нет источников для ночного поиска")
		case err != nil:
			logger.Error().Err(err).Msg("не удалось запустить ночной поиск")
		default:
			logger.Info().Msg("ночной поиск поставлен в очередь")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("scheduler: некорректное расписание поиска")
	}

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)
	c.Start()
	logger.Info().
		Str("publish", cfg.Scheduler.PublishSpec).
		Str("discovery", cfg.Scheduler.DiscoverySpec).
		Msg("планировщик запущен")

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("планировщик остановлен")
}
