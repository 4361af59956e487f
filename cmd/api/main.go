package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"news-backend/internal/adapters/provider"
	"news-backend/internal/adapters/repo"
	"news-backend/internal/domain"
	"news-backend/internal/infra/config"
	"news-backend/internal/infra/db"
	httpinfra "news-backend/internal/infra/http"
	infralog "news-backend/internal/infra/log"
	"news-backend/internal/infra/metrics"
	"news-backend/internal/infra/queue"
	discoveryusecase "news-backend/internal/usecase/discovery"
	newsusecase "news-backend/internal/usecase/news"
	configusecase "news-backend/internal/usecase/searchconfig"
	targetsusecase "news-backend/internal/usecase/targets"
)

func main() {
	cfg := config.Load()
	logger := infralog.NewLogger(cfg.AppEnv).With().Str("component", "api").Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	repoAdapter := repo.NewPostgres(pool)
	registry := provider.NewRegistry(ctx, cfg.Providers, logger)
	discoveryQueue := queue.NewRedisDiscoveryQueue(redisClient, cfg.Queues.Discovery)

	newsService := newsusecase.NewService(repoAdapter, logger)
	configService := configusecase.NewService(repoAdapter, logger)
	targetsService := targetsusecase.NewService(repoAdapter, repoAdapter, repoAdapter, logger)
	discoveryService := discoveryusecase.NewService(
		repoAdapter, repoAdapter, repoAdapter, repoAdapter, repoAdapter,
		repoAdapter, repoAdapter, registry, discoveryQueue, logger,
	)

	server := httpinfra.NewServer(logger)
	r := server.Router

	r.Get("/api/v1/news", func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pageParams(r)
		posts, err := newsService.ListVisible(r.Context(), limit, offset)
		if err != nil {
			log.Error().Err(err).Msg("api: список новостей")
			httpinfra.WriteError(w, http.StatusInternalServerError, errors.New("не удалось получить новости"))
			return
		}
		httpinfra.WriteJSON(w, map[string]any{"news": newsList(posts)})
	})

	r.Get("/api/v1/news/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
			return
		}
		post, err := newsService.Get(r.Context(), id, false)
		if errors.Is(err, domain.ErrNotFound) {
			httpinfra.WriteError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			httpinfra.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		httpinfra.WriteJSON(w, newsResponseFrom(post))
	})

	r.Route("/api/v1/admin", func(admin chi.Router) {
		admin.Use(httpinfra.AdminAuthMiddleware(cfg.AdminToken))

		admin.Get("/news", func(w http.ResponseWriter, r *http.Request) {
			limit, offset := pageParams(r)
			status := domain.PostStatus(r.URL.Query().Get("status"))
			posts, err := newsService.ListAll(r.Context(), status, limit, offset)
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, map[string]any{"news": newsList(posts)})
		})

		admin.Get("/news/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			post, err := newsService.Get(r.Context(), id, true)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, newsResponseFrom(post))
		})

		admin.Post("/news", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req newsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			post, err := newsService.Create(r.Context(), req.toPost(0))
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusCreated)
			httpinfra.WriteJSON(w, newsResponseFrom(post))
		})

		admin.Put("/news/{id}", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			var req newsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			if err := newsService.Update(r.Context(), req.toPost(id)); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httpinfra.WriteError(w, http.StatusNotFound, err)
					return
				}
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, map[string]string{"status": "ok"})
		})

		admin.Delete("/news/no-news-found", func(w http.ResponseWriter, r *http.Request) {
			deleted, err := newsService.CleanupNoNewsFound(r.Context())
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, map[string]int64{"deleted": deleted})
		})

		admin.Delete("/news/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			if err := newsService.Delete(r.Context(), id); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httpinfra.WriteError(w, http.StatusNotFound, err)
					return
				}
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		admin.Get("/resources", func(w http.ResponseWriter, r *http.Request) {
			resources, err := targetsService.ListResources(r.Context())
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			out := make([]resourceResponse, 0, len(resources))
			for _, res := range resources {
				out = append(out, resourceResponseFrom(res))
			}
			httpinfra.WriteJSON(w, map[string]any{"resources": out})
		})

		admin.Post("/resources", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req resourceRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			created, err := targetsService.CreateResource(r.Context(), req.toResource(0))
			if errors.Is(err, targetsusecase.ErrInvalid) {
				httpinfra.WriteError(w, http.StatusBadRequest, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusCreated)
			httpinfra.WriteJSON(w, resourceResponseFrom(created))
		})

		admin.Get("/resources/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			res, err := targetsService.GetResource(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, resourceResponseFrom(res))
		})

		admin.Put("/resources/{id}", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			var req resourceRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			if err := targetsService.UpdateResource(r.Context(), req.toResource(id)); err != nil {
				switch {
				case errors.Is(err, targetsusecase.ErrInvalid):
					httpinfra.WriteError(w, http.StatusBadRequest, err)
				case errors.Is(err, domain.ErrNotFound):
					httpinfra.WriteError(w, http.StatusNotFound, err)
				default:
					httpinfra.WriteError(w, http.StatusInternalServerError, err)
				}
				return
			}
			httpinfra.WriteJSON(w, map[string]string{"status": "ok"})
		})

		admin.Delete("/resources/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			if err := targetsService.DeleteResource(r.Context(), id); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httpinfra.WriteError(w, http.StatusNotFound, err)
					return
				}
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		admin.Get("/resources/{id}/statistics", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			stats, err := targetsService.ResourceStatistics(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, statisticsResponseFrom(stats))
		})

		admin.Get("/manufacturers", func(w http.ResponseWriter, r *http.Request) {
			manufacturers, err := targetsService.ListManufacturers(r.Context())
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			out := make([]manufacturerResponse, 0, len(manufacturers))
			for _, m := range manufacturers {
				out = append(out, manufacturerResponseFrom(m))
			}
			httpinfra.WriteJSON(w, map[string]any{"manufacturers": out})
		})

		admin.Post("/manufacturers", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req manufacturerRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			created, err := targetsService.CreateManufacturer(r.Context(), req.toManufacturer(0))
			if errors.Is(err, targetsusecase.ErrInvalid) {
				httpinfra.WriteError(w, http.StatusBadRequest, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusCreated)
			httpinfra.WriteJSON(w, manufacturerResponseFrom(created))
		})

		admin.Get("/manufacturers/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			m, err := targetsService.GetManufacturer(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, manufacturerResponseFrom(m))
		})

		admin.Put("/manufacturers/{id}", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			var req manufacturerRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			if err := targetsService.UpdateManufacturer(r.Context(), req.toManufacturer(id)); err != nil {
				switch {
				case errors.Is(err, targetsusecase.ErrInvalid):
					httpinfra.WriteError(w, http.StatusBadRequest, err)
				case errors.Is(err, domain.ErrNotFound):
					httpinfra.WriteError(w, http.StatusNotFound, err)
				default:
					httpinfra.WriteError(w, http.StatusInternalServerError, err)
				}
				return
			}
			httpinfra.WriteJSON(w, map[string]string{"status": "ok"})
		})

		admin.Delete("/manufacturers/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			if err := targetsService.DeleteManufacturer(r.Context(), id); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httpinfra.WriteError(w, http.StatusNotFound, err)
					return
				}
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		admin.Get("/manufacturers/{id}/statistics", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			stats, err := targetsService.ManufacturerStatistics(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, statisticsResponseFrom(stats))
		})

		admin.Get("/discovery/providers", func(w http.ResponseWriter, r *http.Request) {
			httpinfra.WriteJSON(w, map[string]any{"providers": registry.List()})
		})

		admin.Post("/discovery/start", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req startDiscoveryRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			status, err := discoveryService.Start(r.Context(), discoveryusecase.StartRequest{
				SearchType:      domain.SearchType(req.SearchType),
				All:             req.All,
				ResourceIDs:     req.ResourceIDs,
				ManufacturerIDs: req.ManufacturerIDs,
				// неизвестный провайдер не отклоняется, а сводится к auto
				Provider: domain.ParseProvider(req.Provider),
			})
			switch {
			case errors.Is(err, domain.ErrDiscoveryRunning):
				httpinfra.WriteError(w, http.StatusConflict, err)
				return
			case errors.Is(err, domain.ErrEmptyTargets), errors.Is(err, domain.ErrNoProviders):
				httpinfra.WriteError(w, http.StatusBadRequest, err)
				return
			case err != nil:
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusAccepted)
			httpinfra.WriteJSON(w, statusResponseFrom(status))
		})

		admin.Get("/discovery/status", func(w http.ResponseWriter, r *http.Request) {
			searchType := domain.SearchType(r.URL.Query().Get("search_type"))
			if searchType != domain.SearchTypeManufacturers {
				searchType = domain.SearchTypeResources
			}
			status, err := discoveryService.Status(r.Context(), searchType)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteJSON(w, map[string]any{"state": "idle", "processed": 0, "total": 0, "percent": 0})
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, statusResponseFrom(status))
		})

		admin.Get("/discovery/runs", func(w http.ResponseWriter, r *http.Request) {
			limit, offset := pageParams(r)
			runs, err := repoAdapter.ListRuns(r.Context(), limit, offset)
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			out := make([]runResponse, 0, len(runs))
			for _, run := range runs {
				out = append(out, runResponseFrom(run))
			}
			httpinfra.WriteJSON(w, map[string]any{"runs": out})
		})

		admin.Get("/discovery/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			run, err := repoAdapter.GetRun(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, runResponseFrom(run))
		})

		admin.Get("/discovery/runs/{id}/calls", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			calls, err := repoAdapter.ListCalls(r.Context(), id)
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			out := make([]callResponse, 0, len(calls))
			for _, call := range calls {
				out = append(out, callResponseFrom(call))
			}
			httpinfra.WriteJSON(w, map[string]any{"calls": out})
		})

		admin.Get("/search-configs", func(w http.ResponseWriter, r *http.Request) {
			configs, err := configService.List(r.Context())
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			out := make([]configResponse, 0, len(configs))
			for _, c := range configs {
				out = append(out, configResponseFrom(c))
			}
			httpinfra.WriteJSON(w, map[string]any{"configs": out})
		})

		admin.Get("/search-configs/active", func(w http.ResponseWriter, r *http.Request) {
			cfgActive, err := configService.Active(r.Context())
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, configResponseFrom(cfgActive))
		})

		admin.Post("/search-configs", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req configRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			created, err := configService.Create(r.Context(), req.toConfig(0))
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			w.WriteHeader(http.StatusCreated)
			httpinfra.WriteJSON(w, configResponseFrom(created))
		})

		admin.Get("/search-configs/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			c, err := configService.Get(r.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				httpinfra.WriteError(w, http.StatusNotFound, err)
				return
			}
			if err != nil {
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, configResponseFrom(c))
		})

		admin.Put("/search-configs/{id}", func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			var req configRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректное тело запроса"))
				return
			}
			if err := configService.Update(r.Context(), req.toConfig(id)); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httpinfra.WriteError(w, http.StatusNotFound, err)
					return
				}
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, map[string]string{"status": "ok"})
		})

		admin.Post("/search-configs/{id}/activate", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpinfra.WriteError(w, http.StatusBadRequest, errors.New("некорректный идентификатор"))
				return
			}
			if err := configService.Activate(r.Context(), id); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httpinfra.WriteError(w, http.StatusNotFound, err)
					return
				}
				httpinfra.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			httpinfra.WriteJSON(w, map[string]string{"status": "ok"})
		})
	})

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)
	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()
	<-ctx.Done()
	log.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
