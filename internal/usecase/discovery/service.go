package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
	"news-backend/internal/infra/metrics"
)

// defaultSearchWindow — период поиска, когда поиск ещё ни разу не выполнялся.
const defaultSearchWindow = 7 * 24 * time.Hour

// Service оркестрирует поиск новостей: цепочку провайдеров, журнал вызовов,
// создание новостей и статистику целей.
type Service struct {
	news          domain.NewsRepo
	resources     domain.ResourceRepo
	manufacturers domain.ManufacturerRepo
	configs       domain.ConfigRepo
	runs          domain.RunRepo
	statuses      domain.StatusRepo
	stats         domain.StatisticsRepo
	registry      domain.ProviderRegistry
	queue         domain.DiscoveryQueue
	log           zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewService создаёт сервис поиска новостей.
func NewService(
	news domain.NewsRepo,
	resources domain.ResourceRepo,
	manufacturers domain.ManufacturerRepo,
	configs domain.ConfigRepo,
	runs domain.RunRepo,
	statuses domain.StatusRepo,
	stats domain.StatisticsRepo,
	registry domain.ProviderRegistry,
	queue domain.DiscoveryQueue,
	logger zerolog.Logger,
) *Service {
	return &Service{
		news:          news,
		resources:     resources,
		manufacturers: manufacturers,
		configs:       configs,
		runs:          runs,
		statuses:      statuses,
		stats:         stats,
		registry:      registry,
		queue:         queue,
		log:           logger,
		now:           func() time.Time { return time.Now().UTC() },
		sleep:         sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// StartRequest — запрос на запуск поиска из API.
type StartRequest struct {
	SearchType      domain.SearchType
	All             bool
	ResourceIDs     []int64
	ManufacturerIDs []int64
	Provider        domain.Provider
	RequestedBy     *int64
}

// Start ставит поиск в очередь и возвращает созданный статус.
// Второй поиск того же типа поверх идущего не допускается.
func (s *Service) Start(ctx context.Context, req StartRequest) (domain.DiscoveryStatus, error) {
	if req.SearchType != domain.SearchTypeManufacturers {
		req.SearchType = domain.SearchTypeResources
	}
	if req.Provider == domain.ProviderAuto && !s.registry.Available(domain.ProviderAuto) {
		return domain.DiscoveryStatus{}, domain.ErrNoProviders
	}

	current, err := s.statuses.CurrentStatus(ctx, req.SearchType)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.DiscoveryStatus{}, err
	}
	if err == nil && current.State == domain.RunStateRunning {
		return domain.DiscoveryStatus{}, domain.ErrDiscoveryRunning
	}

	job := domain.DiscoveryJob{
		SearchType:      req.SearchType,
		All:             req.All,
		ResourceIDs:     req.ResourceIDs,
		ManufacturerIDs: req.ManufacturerIDs,
		Provider:        req.Provider,
		RequestedBy:     req.RequestedBy,
	}
	targets, err := s.resolveTargets(ctx, job)
	if err != nil {
		return domain.DiscoveryStatus{}, err
	}
	if len(targets) == 0 {
		return domain.DiscoveryStatus{}, domain.ErrEmptyTargets
	}

	status, err := s.statuses.StartStatus(ctx, req.SearchType, len(targets), req.Provider)
	if err != nil {
		return domain.DiscoveryStatus{}, err
	}
	job.StatusID = status.ID
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if ferr := s.statuses.FinishStatus(ctx, status.ID, domain.RunStateError); ferr != nil {
			s.log.Error().Err(ferr).Msg("не удалось закрыть статус после ошибки очереди")
		}
		return domain.DiscoveryStatus{}, err
	}
	s.log.Info().
		Str("search_type", string(req.SearchType)).
		Str("provider", string(req.Provider)).
		Int("targets", len(targets)).
		Msg("поиск поставлен в очередь")
	return status, nil
}

// Status возвращает последний статус поиска указанного типа.
func (s *Service) Status(ctx context.Context, searchType domain.SearchType) (domain.DiscoveryStatus, error) {
	return s.statuses.CurrentStatus(ctx, searchType)
}

// searchTarget — одна цель поиска: источник или производитель.
type searchTarget struct {
	searchType   domain.SearchType
	resource     *domain.NewsResource
	manufacturer *domain.Manufacturer
}

func (t searchTarget) id() int64 {
	if t.resource != nil {
		return t.resource.ID
	}
	return t.manufacturer.ID
}

func (t searchTarget) name() string {
	if t.resource != nil {
		return t.resource.Name
	}
	return t.manufacturer.Name
}

func (s *Service) resolveTargets(ctx context.Context, job domain.DiscoveryJob) ([]searchTarget, error) {
	switch job.SearchType {
	case domain.SearchTypeManufacturers:
		var (
			list []domain.Manufacturer
			err  error
		)
		if job.All {
			list, err = s.manufacturers.ListManufacturers(ctx)
		} else {
			list, err = s.manufacturers.ListManufacturersByIDs(ctx, job.ManufacturerIDs)
		}
		if err != nil {
			return nil, err
		}
		targets := make([]searchTarget, 0, len(list))
		for i := range list {
			targets = append(targets, searchTarget{searchType: job.SearchType, manufacturer: &list[i]})
		}
		return targets, nil
	default:
		var (
			list []domain.NewsResource
			err  error
		)
		if job.All {
			list, err = s.resources.ListSearchableResources(ctx)
		} else {
			list, err = s.resources.ListResourcesByIDs(ctx, job.ResourceIDs)
		}
		if err != nil {
			return nil, err
		}
		targets := make([]searchTarget, 0, len(list))
		for i := range list {
			// ручные источники автоматическим поиском не обрабатываются
			if list[i].SourceType == domain.SourceTypeManual {
				continue
			}
			targets = append(targets, searchTarget{searchType: domain.SearchTypeResources, resource: &list[i]})
		}
		return targets, nil
	}
}

// activeConfig возвращает конфигурацию поиска: активную, иначе первую,
// иначе создаёт конфигурацию по умолчанию.
func (s *Service) activeConfig(ctx context.Context) (domain.SearchConfiguration, error) {
	cfg, err := s.configs.ActiveConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SearchConfiguration{}, err
	}
	cfg, err = s.configs.FirstConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SearchConfiguration{}, err
	}
	return s.configs.CreateConfig(ctx, domain.DefaultSearchConfiguration())
}

// Process выполняет задание поиска из очереди и возвращает завершённый запуск.
func (s *Service) Process(ctx context.Context, job domain.DiscoveryJob) (domain.DiscoveryRun, error) {
	run, err := s.process(ctx, job)
	if err != nil && job.StatusID != 0 {
		if ferr := s.statuses.FinishStatus(ctx, job.StatusID, domain.RunStateError); ferr != nil {
			s.log.Error().Err(ferr).Msg("не удалось закрыть статус после ошибки поиска")
		}
	}
	return run, err
}

func (s *Service) process(ctx context.Context, job domain.DiscoveryJob) (domain.DiscoveryRun, error) {
	targets, err := s.resolveTargets(ctx, job)
	if err != nil {
		return domain.DiscoveryRun{}, err
	}
	if len(targets) == 0 {
		return domain.DiscoveryRun{}, domain.ErrEmptyTargets
	}

	cfg, err := s.activeConfig(ctx)
	if err != nil {
		return domain.DiscoveryRun{}, fmt.Errorf("конфигурация поиска: %w", err)
	}
	snap := cfg.Snapshot()

	now := s.now()
	startDate, err := s.runs.LastSearchDate(ctx)
	if err != nil {
		return domain.DiscoveryRun{}, err
	}
	if startDate.IsZero() {
		startDate = now.Add(-defaultSearchWindow)
	}

	run, err := s.runs.CreateRun(ctx, domain.DiscoveryRun{
		ConfigSnapshot: snap,
		LastSearchDate: startDate,
		StartedAt:      now,
	})
	if err != nil {
		return domain.DiscoveryRun{}, err
	}
	metrics.DiscoveryRunsTotal.Inc()
	s.log.Info().
		Str("run", run.UID).
		Str("search_type", string(job.SearchType)).
		Int("targets", len(targets)).
		Time("start_date", startDate).
		Msg("поиск новостей запущен")

	chain := s.chainFor(job.Provider, snap)
	// повтор только при автоматическом выборе: явный провайдер даёт
	// ровно одно обращение на цель
	retryable := job.Provider == "" || job.Provider == domain.ProviderAuto

	var (
		retry  []searchTarget
		failed int
	)
	for i, target := range targets {
		if ctx.Err() != nil {
			break
		}
		ok := s.processTarget(ctx, &run, snap, chain, target, startDate, now, !retryable)
		if !ok {
			if retryable {
				retry = append(retry, target)
			} else {
				failed++
			}
		}
		if job.StatusID != 0 {
			if err := s.statuses.UpdateStatusProgress(ctx, job.StatusID, i+1, len(targets)); err != nil {
				s.log.Error().Err(err).Msg("не удалось обновить прогресс поиска")
			}
		}
		if i < len(targets)-1 {
			s.sleep(ctx, snap.RequestDelay())
		}
	}

	for _, target := range retry {
		if ctx.Err() != nil {
			failed++
			continue
		}
		s.log.Warn().Str("target", target.name()).Msg("повторная попытка поиска по цели")
		if !s.processTarget(ctx, &run, snap, chain, target, startDate, now, true) {
			failed++
		}
		s.sleep(ctx, snap.RequestDelay())
	}

	run.TargetsProcessed = len(targets)
	run.TargetsFailed = failed
	finishedAt := s.now()
	run.FinishedAt = &finishedAt
	if err := s.runs.FinishRun(ctx, run); err != nil {
		return run, err
	}
	if err := s.runs.SetLastSearchDate(ctx, now); err != nil {
		s.log.Error().Err(err).Msg("не удалось сохранить дату последнего поиска")
	}
	if job.StatusID != 0 {
		if err := s.statuses.FinishStatus(ctx, job.StatusID, domain.RunStateCompleted); err != nil {
			s.log.Error().Err(err).Msg("не удалось закрыть статус поиска")
		}
	}
	s.log.Info().
		Str("run", run.UID).
		Int("news_found", run.NewsFound).
		Int("duplicates", run.NewsDuplicates).
		Int("failed", failed).
		Float64("cost_usd", run.EstimatedCostUSD).
		Msg("поиск новостей завершён")
	return run, nil
}

// chainFor возвращает порядок провайдеров: явный выбор даёт цепочку из
// одного провайдера, auto — основной провайдер конфигурации плюс резервы.
func (s *Service) chainFor(p domain.Provider, snap domain.ConfigSnapshot) []domain.Provider {
	if p != "" && p != domain.ProviderAuto {
		return []domain.Provider{p}
	}
	chain := make([]domain.Provider, 0, len(snap.FallbackChain)+1)
	seen := make(map[domain.Provider]bool)
	for _, candidate := range append([]domain.Provider{snap.PrimaryProvider}, snap.FallbackChain...) {
		if candidate == "" || candidate == domain.ProviderAuto || seen[candidate] {
			continue
		}
		seen[candidate] = true
		chain = append(chain, candidate)
	}
	if len(chain) == 0 {
		chain = append(chain, domain.KnownProviders...)
	}
	return chain
}

// processTarget обрабатывает одну цель. Возвращает false, если все
// провайдеры цепочки завершились ошибкой. Заглушка "новостей нет" при
// исчерпании цепочки создаётся только в финальной попытке (final=true).
func (s *Service) processTarget(ctx context.Context, run *domain.DiscoveryRun, snap domain.ConfigSnapshot, chain []domain.Provider, target searchTarget, startDate, endDate time.Time, final bool) bool {
	prompt, domains := s.buildPrompt(target, startDate, endDate)

	items, searched := s.searchWithFallback(ctx, run, snap, chain, target, prompt, domains)
	if !searched {
		if final {
			s.createNoNewsPost(ctx, target, startDate, endDate)
			s.applyStatistics(ctx, target, 0, true, true, endDate)
		}
		return false
	}

	created, duplicates := s.storeNews(ctx, run, snap, target, items)
	run.NewsFound += created
	run.NewsDuplicates += duplicates
	if len(items) == 0 {
		s.createNoNewsPost(ctx, target, startDate, endDate)
	}
	if err := s.runs.SaveRunAggregates(ctx, *run); err != nil {
		s.log.Error().Err(err).Msg("не удалось сохранить агрегаты запуска")
	}
	s.applyStatistics(ctx, target, created, len(items) == 0, false, endDate)
	return true
}

// searchWithFallback идёт по цепочке провайдеров до первого успеха.
// Каждая попытка, включая недоступного провайдера, оставляет запись в журнале.
func (s *Service) searchWithFallback(ctx context.Context, run *domain.DiscoveryRun, snap domain.ConfigSnapshot, chain []domain.Provider, target searchTarget, prompt string, domains []string) ([]domain.NewsItem, bool) {
	for i, p := range chain {
		call := domain.DiscoveryAPICall{
			RunID:    run.ID,
			Provider: p,
			Model:    snap.Model(p),
		}
		if target.resource != nil {
			id := target.resource.ID
			call.ResourceID = &id
		}
		if target.manufacturer != nil {
			id := target.manufacturer.ID
			call.ManufacturerID = &id
		}

		client, ok := s.registry.Client(p)
		if !ok {
			call.ErrorMessage = domain.ErrProviderUnavailable.Error()
			s.recordCall(ctx, run, call)
			s.log.Warn().Str("provider", string(p)).Str("target", target.name()).Msg("провайдер пропущен: ключ API не настроен")
			if i < len(chain)-1 {
				metrics.IncFallback(string(p))
			}
			continue
		}

		req := domain.SearchRequest{
			Prompt:            prompt,
			Domains:           domains,
			Model:             snap.Model(p),
			Temperature:       snap.Temperature,
			Timeout:           snap.Timeout(),
			MaxSearchResults:  snap.MaxSearchResults,
			SearchContextSize: snap.SearchContextSize,
		}
		result, err := client.Search(ctx, req)
		call.InputTokens = result.InputTokens
		call.OutputTokens = result.OutputTokens
		call.CostUSD = snap.CallCost(p, result.InputTokens, result.OutputTokens)
		call.DurationMS = result.Duration.Milliseconds()
		if err != nil {
			call.ErrorMessage = err.Error()
			s.recordCall(ctx, run, call)
			metrics.ObserveProviderCall(string(p), call.CostUSD, 0)
			s.log.Error().Err(err).Str("provider", string(p)).Str("target", target.name()).Msg("провайдер вернул ошибку")
			if i < len(chain)-1 {
				metrics.IncFallback(string(p))
			}
			continue
		}

		call.Success = true
		call.NewsExtracted = len(result.Items)
		s.recordCall(ctx, run, call)
		metrics.ObserveProviderCall(string(p), call.CostUSD, len(result.Items))
		s.log.Info().
			Str("provider", string(p)).
			Str("target", target.name()).
			Int("news", len(result.Items)).
			Float64("cost_usd", call.CostUSD).
			Msg("провайдер ответил")
		return result.Items, true
	}
	return nil, false
}

func (s *Service) recordCall(ctx context.Context, run *domain.DiscoveryRun, call domain.DiscoveryAPICall) {
	run.AddCall(call)
	if _, err := s.runs.CreateCall(ctx, call); err != nil {
		s.log.Error().Err(err).Msg("не удалось записать вызов API")
	}
	if err := s.runs.SaveRunAggregates(ctx, *run); err != nil {
		s.log.Error().Err(err).Msg("не удалось сохранить агрегаты запуска")
	}
}

func (s *Service) buildPrompt(target searchTarget, startDate, endDate time.Time) (string, []string) {
	if target.resource != nil {
		prompt := BuildResourcePrompt(*target.resource, startDate, endDate)
		if d := extractDomain(target.resource.URL); d != "" {
			return prompt, []string{d}
		}
		return prompt, nil
	}
	prompt := BuildManufacturerPrompt(*target.manufacturer, startDate, endDate)
	var domains []string
	for _, w := range target.manufacturer.Websites() {
		if d := extractDomain(w); d != "" {
			domains = append(domains, d)
		}
	}
	return prompt, domains
}

// storeNews сохраняет найденные новости, пропуская дубликаты по source_url.
// Количество новостей на цель ограничено конфигурацией.
func (s *Service) storeNews(ctx context.Context, run *domain.DiscoveryRun, snap domain.ConfigSnapshot, target searchTarget, items []domain.NewsItem) (created, duplicates int) {
	limit := snap.MaxNewsPerTarget
	for _, item := range items {
		if limit > 0 && created >= limit {
			break
		}
		exists, err := s.news.ExistsBySourceURL(ctx, item.SourceURL)
		if err != nil {
			s.log.Error().Err(err).Str("url", item.SourceURL).Msg("не удалось проверить дубликат")
			continue
		}
		if exists {
			duplicates++
			metrics.DiscoveryNewsDuplicatesTotal.Inc()
			continue
		}
		post := s.buildNewsPost(target, item)
		if _, err := s.news.CreatePost(ctx, post); err != nil {
			s.log.Error().Err(err).Str("url", item.SourceURL).Msg("не удалось создать новость")
			continue
		}
		created++
	}
	return created, duplicates
}

// buildNewsPost собирает черновик новости из ответа провайдера.
// Новость остаётся черновиком до решения редактора.
func (s *Service) buildNewsPost(target searchTarget, item domain.NewsItem) domain.NewsPost {
	post := domain.NewsPost{
		Title:   item.Title,
		Body:    item.Summary,
		Status:  domain.StatusDraft,
		PubDate: s.now(),
	}
	if post.Body == nil {
		post.Body = map[string]string{}
	}
	post.SourceURL = item.SourceURL
	if target.resource != nil {
		id := target.resource.ID
		post.ResourceID = &id
		post.SourceLanguage = target.resource.Language
		if post.SourceURL == "" {
			post.SourceURL = target.resource.URL
		}
	}
	if target.manufacturer != nil {
		id := target.manufacturer.ID
		post.ManufacturerID = &id
		post.SourceLanguage = "en"
		if post.SourceURL == "" {
			post.SourceURL = target.manufacturer.Website1
		}
	}
	if post.SourceLanguage == "" {
		post.SourceLanguage = "en"
	}
	return post
}

// createNoNewsPost создаёт помеченную заглушку "новостей нет" по цели.
func (s *Service) createNoNewsPost(ctx context.Context, target searchTarget, startDate, endDate time.Time) {
	name := target.name()
	sourceURL := ""
	if target.resource != nil {
		sourceURL = target.resource.URL
	} else if target.manufacturer != nil {
		sourceURL = target.manufacturer.Website1
	}
	periodRu := fmt.Sprintf("с %s по %s", startDate.Format("02.01.2006"), endDate.Format("02.01.2006"))
	periodEn := fmt.Sprintf("from %s to %s", startDate.Format("02.01.2006"), endDate.Format("02.01.2006"))

	post := domain.NewsPost{
		Title: map[string]string{
			"ru": fmt.Sprintf("Новостей от источника '%s' не найдено", name),
			"en": fmt.Sprintf("No news found from source '%s'", name),
			"de": fmt.Sprintf("Keine Nachrichten von Quelle '%s' gefunden", name),
			"pt": fmt.Sprintf("Nenhuma notícia encontrada da fonte '%s'", name),
		},
		Body: map[string]string{
			"ru": fmt.Sprintf("За период %s на ресурсе [%s](%s) новостей не обнаружено.", periodRu, name, sourceURL),
			"en": fmt.Sprintf("For the period %s, no news was found on the resource [%s](%s).", periodEn, name, sourceURL),
			"de": fmt.Sprintf("Für den Zeitraum %s wurden auf der Ressource [%s](%s) keine Nachrichten gefunden.", periodEn, name, sourceURL),
			"pt": fmt.Sprintf("No período %s, nenhuma notícia foi encontrada no recurso [%s](%s).", periodEn, name, sourceURL),
		},
		SourceURL:      sourceURL,
		SourceLanguage: "ru",
		Status:         domain.StatusDraft,
		PubDate:        s.now(),
		IsNoNewsFound:  true,
	}
	if target.resource != nil {
		id := target.resource.ID
		post.ResourceID = &id
	}
	if target.manufacturer != nil {
		id := target.manufacturer.ID
		post.ManufacturerID = &id
	}
	if _, err := s.news.CreatePost(ctx, post); err != nil {
		s.log.Error().Err(err).Str("target", name).Msg("не удалось создать заглушку об отсутствии новостей")
	}
}

// applyStatistics обновляет накопленную статистику цели.
// Ошибка статистики не прерывает поиск.
func (s *Service) applyStatistics(ctx context.Context, target searchTarget, newsCount int, isNoNews, hasErrors bool, now time.Time) {
	outcome := domain.TargetOutcome{
		SearchType: target.searchType,
		TargetID:   target.id(),
		NewsCount:  newsCount,
		IsNoNews:   isNoNews,
		HasErrors:  hasErrors,
	}
	news30, err := s.news.CountRecentByTarget(ctx, target.searchType, target.id(), now.Add(-30*24*time.Hour))
	if err != nil {
		s.log.Error().Err(err).Msg("не удалось посчитать новости за 30 дней")
	}
	news90, err := s.news.CountRecentByTarget(ctx, target.searchType, target.id(), now.Add(-90*24*time.Hour))
	if err != nil {
		s.log.Error().Err(err).Msg("не удалось посчитать новости за 90 дней")
	}
	if err := s.stats.ApplyOutcome(ctx, outcome, news30, news90); err != nil {
		s.log.Error().Err(err).Int64("target", target.id()).Msg("не удалось обновить статистику цели")
	}
}
