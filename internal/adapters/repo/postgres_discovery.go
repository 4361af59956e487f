package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"news-backend/internal/domain"
	"news-backend/internal/infra/metrics"
)

var (
	_ domain.ConfigRepo     = (*Postgres)(nil)
	_ domain.RunRepo        = (*Postgres)(nil)
	_ domain.StatusRepo     = (*Postgres)(nil)
	_ domain.StatisticsRepo = (*Postgres)(nil)
)

const lastSearchDateKey = "discovery_last_search_date"

const configColumns = `id, name, is_active, primary_provider, fallback_chain, temperature, timeout_seconds, max_search_results, search_context_size, models, prices, max_news_per_target, request_delay_ms, created_at, updated_at`

func scanConfig(row pgx.Row) (domain.SearchConfiguration, error) {
	var (
		cfg            domain.SearchConfiguration
		chain          []byte
		models, prices []byte
		timeoutSec     int
		delayMS        int
	)
	err := row.Scan(&cfg.ID, &cfg.Name, &cfg.IsActive, &cfg.PrimaryProvider, &chain, &cfg.Temperature, &timeoutSec, &cfg.MaxSearchResults, &cfg.SearchContextSize, &models, &prices, &cfg.MaxNewsPerTarget, &delayMS, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return domain.SearchConfiguration{}, err
	}
	cfg.Timeout = time.Duration(timeoutSec) * time.Second
	cfg.RequestDelay = time.Duration(delayMS) * time.Millisecond
	if err := json.Unmarshal(chain, &cfg.FallbackChain); err != nil {
		return domain.SearchConfiguration{}, fmt.Errorf("decode fallback chain: %w", err)
	}
	if err := json.Unmarshal(models, &cfg.Models); err != nil {
		return domain.SearchConfiguration{}, fmt.Errorf("decode models: %w", err)
	}
	if err := json.Unmarshal(prices, &cfg.Prices); err != nil {
		return domain.SearchConfiguration{}, fmt.Errorf("decode prices: %w", err)
	}
	return cfg, nil
}

func marshalConfigParts(cfg domain.SearchConfiguration) (chain, models, prices []byte, err error) {
	if chain, err = json.Marshal(cfg.FallbackChain); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal fallback chain: %w", err)
	}
	if models, err = json.Marshal(cfg.Models); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal models: %w", err)
	}
	if prices, err = json.Marshal(cfg.Prices); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal prices: %w", err)
	}
	return chain, models, prices, nil
}

// CreateConfig реализует domain.ConfigRepo.
func (p *Postgres) CreateConfig(ctx context.Context, cfg domain.SearchConfiguration) (domain.SearchConfiguration, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	chain, models, prices, err := marshalConfigParts(cfg)
	if err != nil {
		return domain.SearchConfiguration{}, err
	}

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO search_configurations (name, is_active, primary_provider, fallback_chain, temperature, timeout_seconds, max_search_results, search_context_size, models, prices, max_news_per_target, request_delay_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING `+configColumns+`
`, cfg.Name, cfg.IsActive, cfg.PrimaryProvider, chain, cfg.Temperature, int(cfg.Timeout/time.Second), cfg.MaxSearchResults, cfg.SearchContextSize, models, prices, cfg.MaxNewsPerTarget, int(cfg.RequestDelay/time.Millisecond))
	created, err := scanConfig(row)
	metrics.ObserveNetworkRequest("postgres", "search_configs_insert", "search_configurations", start, err)
	return created, err
}

// UpdateConfig реализует domain.ConfigRepo. Флаг активности не трогает:
// активация идёт отдельной операцией.
func (p *Postgres) UpdateConfig(ctx context.Context, cfg domain.SearchConfiguration) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	chain, models, prices, err := marshalConfigParts(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE search_configurations
SET name = $2, primary_provider = $3, fallback_chain = $4, temperature = $5, timeout_seconds = $6, max_search_results = $7, search_context_size = $8, models = $9, prices = $10, max_news_per_target = $11, request_delay_ms = $12, updated_at = now()
WHERE id = $1
`, cfg.ID, cfg.Name, cfg.PrimaryProvider, chain, cfg.Temperature, int(cfg.Timeout/time.Second), cfg.MaxSearchResults, cfg.SearchContextSize, models, prices, cfg.MaxNewsPerTarget, int(cfg.RequestDelay/time.Millisecond))
	metrics.ObserveNetworkRequest("postgres", "search_configs_update", "search_configurations", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetConfig реализует domain.ConfigRepo.
func (p *Postgres) GetConfig(ctx context.Context, id int64) (domain.SearchConfiguration, error) {
	return p.queryConfig(ctx, `SELECT `+configColumns+` FROM search_configurations WHERE id = $1`, "search_configs_get", id)
}

// ActiveConfig реализует domain.ConfigRepo.
func (p *Postgres) ActiveConfig(ctx context.Context) (domain.SearchConfiguration, error) {
	return p.queryConfig(ctx, `SELECT `+configColumns+` FROM search_configurations WHERE is_active ORDER BY id LIMIT 1`, "search_configs_active")
}

// FirstConfig реализует domain.ConfigRepo.
func (p *Postgres) FirstConfig(ctx context.Context) (domain.SearchConfiguration, error) {
	return p.queryConfig(ctx, `SELECT `+configColumns+` FROM search_configurations ORDER BY id LIMIT 1`, "search_configs_first")
}

func (p *Postgres) queryConfig(ctx context.Context, query, operation string, args ...any) (domain.SearchConfiguration, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, query, args...)
	cfg, err := scanConfig(row)
	metrics.ObserveNetworkRequest("postgres", operation, "search_configurations", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SearchConfiguration{}, domain.ErrNotFound
	}
	return cfg, err
}

// ListConfigs реализует domain.ConfigRepo.
func (p *Postgres) ListConfigs(ctx context.Context) ([]domain.SearchConfiguration, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+configColumns+` FROM search_configurations ORDER BY id`)
	metrics.ObserveNetworkRequest("postgres", "search_configs_list", "search_configurations", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SearchConfiguration
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// ActivateConfig включает конфигурацию и в одной транзакции выключает
// остальные: активной не может быть больше одной.
func (p *Postgres) ActivateConfig(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "search_configurations", start, err)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	start = time.Now()
	tag, err := tx.Exec(ctx, `UPDATE search_configurations SET is_active = TRUE, updated_at = now() WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "search_configs_activate", "search_configurations", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	start = time.Now()
	_, err = tx.Exec(ctx, `UPDATE search_configurations SET is_active = FALSE, updated_at = now() WHERE id <> $1 AND is_active`, id)
	metrics.ObserveNetworkRequest("postgres", "search_configs_deactivate_rest", "search_configurations", start, err)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const runColumns = `id, uid, config_snapshot, last_search_date, started_at, finished_at, total_requests, total_input_tokens, total_output_tokens, estimated_cost, provider_stats, news_found, news_duplicates, targets_processed, targets_failed, created_at, updated_at`

func scanRun(row pgx.Row) (domain.DiscoveryRun, error) {
	var (
		run        domain.DiscoveryRun
		snapshot   []byte
		stats      []byte
		finishedAt sql.NullTime
	)
	err := row.Scan(&run.ID, &run.UID, &snapshot, &run.LastSearchDate, &run.StartedAt, &finishedAt, &run.TotalRequests, &run.TotalInputTokens, &run.TotalOutputTokens, &run.EstimatedCostUSD, &stats, &run.NewsFound, &run.NewsDuplicates, &run.TargetsProcessed, &run.TargetsFailed, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return domain.DiscoveryRun{}, err
	}
	if finishedAt.Valid {
		ts := finishedAt.Time
		run.FinishedAt = &ts
	}
	if err := json.Unmarshal(snapshot, &run.ConfigSnapshot); err != nil {
		return domain.DiscoveryRun{}, fmt.Errorf("decode config snapshot: %w", err)
	}
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &run.ProviderStats); err != nil {
			return domain.DiscoveryRun{}, fmt.Errorf("decode provider stats: %w", err)
		}
	}
	return run, nil
}

// CreateRun реализует domain.RunRepo.
func (p *Postgres) CreateRun(ctx context.Context, run domain.DiscoveryRun) (domain.DiscoveryRun, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	if run.UID == "" {
		run.UID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	snapshot, err := json.Marshal(run.ConfigSnapshot)
	if err != nil {
		return domain.DiscoveryRun{}, fmt.Errorf("marshal config snapshot: %w", err)
	}

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO discovery_runs (uid, config_snapshot, last_search_date, started_at)
VALUES ($1, $2, $3, $4)
RETURNING `+runColumns+`
`, run.UID, snapshot, run.LastSearchDate, run.StartedAt)
	created, err := scanRun(row)
	metrics.ObserveNetworkRequest("postgres", "discovery_runs_insert", "discovery_runs", start, err)
	return created, err
}

// SaveRunAggregates сохраняет накопленные агрегаты запуска.
func (p *Postgres) SaveRunAggregates(ctx context.Context, run domain.DiscoveryRun) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	stats, err := json.Marshal(run.ProviderStats)
	if err != nil {
		return fmt.Errorf("marshal provider stats: %w", err)
	}

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE discovery_runs
SET total_requests = $2, total_input_tokens = $3, total_output_tokens = $4, estimated_cost = $5, provider_stats = $6, news_found = $7, news_duplicates = $8, targets_processed = $9, targets_failed = $10, updated_at = now()
WHERE id = $1
`, run.ID, run.TotalRequests, run.TotalInputTokens, run.TotalOutputTokens, run.EstimatedCostUSD, stats, run.NewsFound, run.NewsDuplicates, run.TargetsProcessed, run.TargetsFailed)
	metrics.ObserveNetworkRequest("postgres", "discovery_runs_save", "discovery_runs", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FinishRun сохраняет агрегаты и проставляет время завершения.
func (p *Postgres) FinishRun(ctx context.Context, run domain.DiscoveryRun) error {
	if err := p.SaveRunAggregates(ctx, run); err != nil {
		return err
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	finishedAt := time.Now().UTC()
	if run.FinishedAt != nil {
		finishedAt = *run.FinishedAt
	}
	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE discovery_runs SET finished_at = $2, updated_at = now() WHERE id = $1`, run.ID, finishedAt)
	metrics.ObserveNetworkRequest("postgres", "discovery_runs_finish", "discovery_runs", start, err)
	return err
}

// GetRun реализует domain.RunRepo.
func (p *Postgres) GetRun(ctx context.Context, id int64) (domain.DiscoveryRun, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM discovery_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	metrics.ObserveNetworkRequest("postgres", "discovery_runs_get", "discovery_runs", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DiscoveryRun{}, domain.ErrNotFound
	}
	return run, err
}

// ListRuns возвращает запуски от новых к старым.
func (p *Postgres) ListRuns(ctx context.Context, limit, offset int) ([]domain.DiscoveryRun, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+runColumns+` FROM discovery_runs ORDER BY started_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	metrics.ObserveNetworkRequest("postgres", "discovery_runs_list", "discovery_runs", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DiscoveryRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// CreateCall записывает обращение к провайдеру. Запись неизменяема.
func (p *Postgres) CreateCall(ctx context.Context, call domain.DiscoveryAPICall) (domain.DiscoveryAPICall, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO discovery_api_calls (run_id, resource_id, manufacturer_id, provider, model, input_tokens, output_tokens, cost, duration_ms, success, error_message, news_extracted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11,''), $12)
RETURNING id, created_at
`, call.RunID, nullInt64(call.ResourceID), nullInt64(call.ManufacturerID), call.Provider, call.Model, call.InputTokens, call.OutputTokens, call.CostUSD, call.DurationMS, call.Success, call.ErrorMessage, call.NewsExtracted).Scan(&call.ID, &call.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "discovery_calls_insert", "discovery_api_calls", start, err)
	return call, err
}

// ListCalls возвращает вызовы запуска в порядке выполнения.
func (p *Postgres) ListCalls(ctx context.Context, runID int64) ([]domain.DiscoveryAPICall, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, run_id, resource_id, manufacturer_id, provider, model, input_tokens, output_tokens, cost, duration_ms, success, error_message, news_extracted, created_at
FROM discovery_api_calls WHERE run_id = $1 ORDER BY id
`, runID)
	metrics.ObserveNetworkRequest("postgres", "discovery_calls_list", "discovery_api_calls", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DiscoveryAPICall
	for rows.Next() {
		var (
			call           domain.DiscoveryAPICall
			resourceID     sql.NullInt64
			manufacturerID sql.NullInt64
			errorMessage   sql.NullString
		)
		if err := rows.Scan(&call.ID, &call.RunID, &resourceID, &manufacturerID, &call.Provider, &call.Model, &call.InputTokens, &call.OutputTokens, &call.CostUSD, &call.DurationMS, &call.Success, &errorMessage, &call.NewsExtracted, &call.CreatedAt); err != nil {
			return nil, err
		}
		call.ResourceID = int64Ptr(resourceID)
		call.ManufacturerID = int64Ptr(manufacturerID)
		call.ErrorMessage = errorMessage.String
		out = append(out, call)
	}
	return out, rows.Err()
}

// LastSearchDate возвращает дату последнего завершённого поиска.
// Если поиск ещё не выполнялся, возвращается нулевое время.
func (p *Postgres) LastSearchDate(ctx context.Context) (time.Time, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	var raw string
	err := p.pool.QueryRow(ctx, `SELECT value FROM app_settings WHERE key = $1`, lastSearchDateKey).Scan(&raw)
	metrics.ObserveNetworkRequest("postgres", "app_settings_get", "app_settings", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last search date: %w", err)
	}
	return ts, nil
}

// SetLastSearchDate сохраняет дату последнего завершённого поиска.
func (p *Postgres) SetLastSearchDate(ctx context.Context, date time.Time) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO app_settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`, lastSearchDateKey, date.UTC().Format(time.RFC3339))
	metrics.ObserveNetworkRequest("postgres", "app_settings_set", "app_settings", start, err)
	return err
}

const statusColumns = `id, search_type, processed, total, state, provider, created_at, updated_at`

func scanStatus(row pgx.Row) (domain.DiscoveryStatus, error) {
	var st domain.DiscoveryStatus
	err := row.Scan(&st.ID, &st.SearchType, &st.Processed, &st.Total, &st.State, &st.Provider, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

// StartStatus закрывает зависшие running-статусы типа и создаёт новый.
// Закрытие нужно после аварийного перезапуска воркера: старый статус
// иначе навсегда останется "выполняется".
func (p *Postgres) StartStatus(ctx context.Context, searchType domain.SearchType, total int, provider domain.Provider) (domain.DiscoveryStatus, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "discovery_statuses", start, err)
	if err != nil {
		return domain.DiscoveryStatus{}, err
	}
	defer tx.Rollback(ctx)

	start = time.Now()
	_, err = tx.Exec(ctx, `UPDATE discovery_statuses SET state = $1, updated_at = now() WHERE search_type = $2 AND state = $3`,
		domain.RunStateError, searchType, domain.RunStateRunning)
	metrics.ObserveNetworkRequest("postgres", "discovery_statuses_close_stale", "discovery_statuses", start, err)
	if err != nil {
		return domain.DiscoveryStatus{}, err
	}

	start = time.Now()
	row := tx.QueryRow(ctx, `
INSERT INTO discovery_statuses (search_type, processed, total, state, provider)
VALUES ($1, 0, $2, $3, $4)
RETURNING `+statusColumns+`
`, searchType, total, domain.RunStateRunning, provider)
	st, err := scanStatus(row)
	metrics.ObserveNetworkRequest("postgres", "discovery_statuses_insert", "discovery_statuses", start, err)
	if err != nil {
		return domain.DiscoveryStatus{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.DiscoveryStatus{}, err
	}
	return st, nil
}

// UpdateStatusProgress реализует domain.StatusRepo.
func (p *Postgres) UpdateStatusProgress(ctx context.Context, id int64, processed, total int) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE discovery_statuses SET processed = $2, total = $3, updated_at = now() WHERE id = $1`, id, processed, total)
	metrics.ObserveNetworkRequest("postgres", "discovery_statuses_progress", "discovery_statuses", start, err)
	return err
}

// FinishStatus реализует domain.StatusRepo.
func (p *Postgres) FinishStatus(ctx context.Context, id int64, state domain.RunState) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE discovery_statuses SET state = $2, updated_at = now() WHERE id = $1`, id, state)
	metrics.ObserveNetworkRequest("postgres", "discovery_statuses_finish", "discovery_statuses", start, err)
	return err
}

// CurrentStatus возвращает последний статус поиска указанного типа.
func (p *Postgres) CurrentStatus(ctx context.Context, searchType domain.SearchType) (domain.DiscoveryStatus, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `SELECT `+statusColumns+` FROM discovery_statuses WHERE search_type = $1 ORDER BY id DESC LIMIT 1`, searchType)
	st, err := scanStatus(row)
	metrics.ObserveNetworkRequest("postgres", "discovery_statuses_current", "discovery_statuses", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DiscoveryStatus{}, domain.ErrNotFound
	}
	return st, err
}

// ApplyOutcome накапливает статистику цели: счётчики инкрементятся,
// производные показатели пересчитываются от новых значений.
func (p *Postgres) ApplyOutcome(ctx context.Context, outcome domain.TargetOutcome, news30, news90 int) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	noNews := 0
	if outcome.IsNoNews {
		noNews = 1
	}
	errorsInc := 0
	if outcome.HasErrors {
		errorsInc = 1
	}
	now := time.Now().UTC()
	var lastNewsAt any
	if outcome.NewsCount > 0 {
		lastNewsAt = now
	}

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO target_statistics (search_type, target_id, total_searches, total_news_found, total_no_news, total_errors, first_search_at, last_search_at, last_news_at, news_30_days, news_90_days)
VALUES ($1, $2, 1, $3, $4, $5, $6, $6, $7, $8, $9)
ON CONFLICT (search_type, target_id) DO UPDATE SET
    total_searches = target_statistics.total_searches + 1,
    total_news_found = target_statistics.total_news_found + EXCLUDED.total_news_found,
    total_no_news = target_statistics.total_no_news + EXCLUDED.total_no_news,
    total_errors = target_statistics.total_errors + EXCLUDED.total_errors,
    last_search_at = EXCLUDED.last_search_at,
    last_news_at = COALESCE(EXCLUDED.last_news_at, target_statistics.last_news_at),
    news_30_days = EXCLUDED.news_30_days,
    news_90_days = EXCLUDED.news_90_days,
    updated_at = now()
`, outcome.SearchType, outcome.TargetID, outcome.NewsCount, noNews, errorsInc, now, lastNewsAt, news30, news90)
	metrics.ObserveNetworkRequest("postgres", "target_statistics_apply", "target_statistics", start, err)
	return err
}

// GetStatistics возвращает статистику цели с вычисленными показателями.
// Отсутствие строки — не ошибка: цель ещё не искали.
func (p *Postgres) GetStatistics(ctx context.Context, searchType domain.SearchType, targetID int64) (domain.TargetStatistics, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	var (
		stats         domain.TargetStatistics
		firstSearchAt sql.NullTime
		lastSearchAt  sql.NullTime
		lastNewsAt    sql.NullTime
	)
	err := p.pool.QueryRow(ctx, `
SELECT id, search_type, target_id, total_searches, total_news_found, total_no_news, total_errors, first_search_at, last_search_at, last_news_at, news_30_days, news_90_days, updated_at
FROM target_statistics WHERE search_type = $1 AND target_id = $2
`, searchType, targetID).Scan(&stats.ID, &stats.SearchType, &stats.TargetID, &stats.TotalSearches, &stats.TotalNewsFound, &stats.TotalNoNews, &stats.TotalErrors, &firstSearchAt, &lastSearchAt, &lastNewsAt, &stats.News30Days, &stats.News90Days, &stats.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "target_statistics_get", "target_statistics", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TargetStatistics{SearchType: searchType, TargetID: targetID}, nil
	}
	if err != nil {
		return domain.TargetStatistics{}, err
	}
	if firstSearchAt.Valid {
		ts := firstSearchAt.Time
		stats.FirstSearchAt = &ts
	}
	if lastSearchAt.Valid {
		ts := lastSearchAt.Time
		stats.LastSearchAt = &ts
	}
	if lastNewsAt.Valid {
		ts := lastNewsAt.Time
		stats.LastNewsAt = &ts
	}
	stats.Recalculate()
	return stats, nil
}
