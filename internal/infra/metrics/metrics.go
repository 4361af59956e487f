package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120, 180, 240, 300},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})

	DiscoveryRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_runs_total",
		Help: "Общее количество запусков поиска новостей",
	})

	DiscoveryFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_fallbacks_total",
		Help: "Количество переходов к резервному провайдеру",
	}, []string{"from"})

	DiscoveryNewsFoundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_news_found_total",
		Help: "Количество найденных новостей по провайдерам",
	}, []string{"provider"})

	DiscoveryNewsDuplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_news_duplicates_total",
		Help: "Количество пропущенных дубликатов новостей",
	})

	DiscoveryCostUSD = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_cost_usd_total",
		Help: "Накопленная стоимость вызовов провайдеров в USD",
	}, []string{"provider"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
		DiscoveryRunsTotal,
		DiscoveryFallbacksTotal,
		DiscoveryNewsFoundTotal,
		DiscoveryNewsDuplicatesTotal,
		DiscoveryCostUSD,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if total := promptTokens + completionTokens; total > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(total))
	}
}

// ObserveProviderCall учитывает стоимость и найденные новости вызова провайдера.
func ObserveProviderCall(provider string, costUSD float64, newsExtracted int) {
	if provider == "" {
		provider = "unknown"
	}
	if costUSD > 0 {
		DiscoveryCostUSD.WithLabelValues(provider).Add(costUSD)
	}
	if newsExtracted > 0 {
		DiscoveryNewsFoundTotal.WithLabelValues(provider).Add(float64(newsExtracted))
	}
}

// IncFallback увеличивает счётчик переходов к следующему провайдеру.
func IncFallback(from string) {
	DiscoveryFallbacksTotal.WithLabelValues(from).Inc()
}
