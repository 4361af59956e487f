package domain

import (
	"math"
	"time"
)

// Provider идентифицирует провайдера LLM.
type Provider string

const (
	// ProviderAuto автоматический выбор по цепочке.
	ProviderAuto Provider = "auto"
	// ProviderGrok xAI Grok с веб-поиском.
	ProviderGrok Provider = "grok"
	// ProviderAnthropic Anthropic Claude.
	ProviderAnthropic Provider = "anthropic"
	// ProviderGemini Google Gemini.
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI OpenAI GPT.
	ProviderOpenAI Provider = "openai"
)

// KnownProviders перечисляет конкретных провайдеров в порядке цепочки по умолчанию.
var KnownProviders = []Provider{ProviderGrok, ProviderAnthropic, ProviderGemini, ProviderOpenAI}

// ParseProvider приводит строку к известному провайдеру.
// Неизвестные значения сводятся к ProviderAuto, а не отклоняются.
func ParseProvider(raw string) Provider {
	switch Provider(raw) {
	case ProviderGrok, ProviderAnthropic, ProviderGemini, ProviderOpenAI, ProviderAuto:
		return Provider(raw)
	default:
		return ProviderAuto
	}
}

// ProviderInfo описывает провайдера для выдачи наружу.
type ProviderInfo struct {
	ID          Provider `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Available   bool     `json:"available"`
}

// ProviderPrices задаёт цены за 1М токенов в USD.
type ProviderPrices struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// SearchConfiguration хранит настраиваемые параметры поиска.
// Активной может быть только одна конфигурация.
type SearchConfiguration struct {
	ID                int64
	Name              string
	IsActive          bool
	PrimaryProvider   Provider
	FallbackChain     []Provider
	Temperature       float64
	Timeout           time.Duration
	MaxSearchResults  int
	SearchContextSize string
	Models            map[Provider]string
	Prices            map[Provider]ProviderPrices
	MaxNewsPerTarget  int
	RequestDelay      time.Duration
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Snapshot делает ценностную копию конфигурации для записи в запуск.
func (c SearchConfiguration) Snapshot() ConfigSnapshot {
	snap := ConfigSnapshot{
		Name:              c.Name,
		PrimaryProvider:   c.PrimaryProvider,
		FallbackChain:     append([]Provider(nil), c.FallbackChain...),
		Temperature:       c.Temperature,
		TimeoutSeconds:    int(c.Timeout / time.Second),
		MaxSearchResults:  c.MaxSearchResults,
		SearchContextSize: c.SearchContextSize,
		Models:            make(map[Provider]string, len(c.Models)),
		Prices:            make(map[Provider]ProviderPrices, len(c.Prices)),
		MaxNewsPerTarget:  c.MaxNewsPerTarget,
		RequestDelayMS:    int(c.RequestDelay / time.Millisecond),
	}
	for p, m := range c.Models {
		snap.Models[p] = m
	}
	for p, pr := range c.Prices {
		snap.Prices[p] = pr
	}
	return snap
}

// ConfigSnapshot — копия конфигурации на момент запуска поиска.
// Последующие правки конфигурации не меняют исторические записи.
type ConfigSnapshot struct {
	Name              string                      `json:"name"`
	PrimaryProvider   Provider                    `json:"primary_provider"`
	FallbackChain     []Provider                  `json:"fallback_chain"`
	Temperature       float64                     `json:"temperature"`
	TimeoutSeconds    int                         `json:"timeout"`
	MaxSearchResults  int                         `json:"max_search_results"`
	SearchContextSize string                      `json:"search_context_size"`
	Models            map[Provider]string         `json:"models"`
	Prices            map[Provider]ProviderPrices `json:"prices"`
	MaxNewsPerTarget  int                         `json:"max_news_per_target"`
	RequestDelayMS    int                         `json:"request_delay_ms"`
}

// Timeout возвращает таймаут запроса к провайдеру.
func (s ConfigSnapshot) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// RequestDelay возвращает паузу между запросами к API.
func (s ConfigSnapshot) RequestDelay() time.Duration {
	if s.RequestDelayMS <= 0 {
		return 0
	}
	return time.Duration(s.RequestDelayMS) * time.Millisecond
}

// Model возвращает модель провайдера из снимка.
func (s ConfigSnapshot) Model(p Provider) string {
	return s.Models[p]
}

// CallCost считает стоимость вызова в USD по тарифам снимка.
// Формула: (input*input_price + output*output_price) / 1_000_000,
// округление до 6 знаков — точности ledger-а.
func (s ConfigSnapshot) CallCost(p Provider, inputTokens, outputTokens int) float64 {
	prices, ok := s.Prices[p]
	if !ok {
		return 0
	}
	cost := (float64(inputTokens)*prices.Input + float64(outputTokens)*prices.Output) / 1_000_000
	return math.Round(cost*1e6) / 1e6
}

// ProviderStat — агрегированная статистика провайдера внутри запуска.
type ProviderStat struct {
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost"`
	Errors       int     `json:"errors"`
}

// RunState описывает состояние запуска поиска.
type RunState string

const (
	// RunStateRunning поиск выполняется.
	RunStateRunning RunState = "running"
	// RunStateCompleted поиск завершён.
	RunStateCompleted RunState = "completed"
	// RunStateError поиск прерван критической ошибкой.
	RunStateError RunState = "error"
)

// DiscoveryRun — один запуск поиска новостей по набору целей.
type DiscoveryRun struct {
	ID                int64
	UID               string
	ConfigSnapshot    ConfigSnapshot
	LastSearchDate    time.Time
	StartedAt         time.Time
	FinishedAt        *time.Time
	TotalRequests     int
	TotalInputTokens  int
	TotalOutputTokens int
	EstimatedCostUSD  float64
	ProviderStats     map[Provider]ProviderStat
	NewsFound         int
	NewsDuplicates    int
	TargetsProcessed  int
	TargetsFailed     int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AddCall добавляет результат вызова API в агрегаты запуска.
func (r *DiscoveryRun) AddCall(call DiscoveryAPICall) {
	if r.ProviderStats == nil {
		r.ProviderStats = make(map[Provider]ProviderStat)
	}
	stat := r.ProviderStats[call.Provider]
	stat.Requests++
	stat.InputTokens += call.InputTokens
	stat.OutputTokens += call.OutputTokens
	stat.CostUSD += call.CostUSD
	if !call.Success {
		stat.Errors++
	}
	r.ProviderStats[call.Provider] = stat

	r.TotalRequests++
	r.TotalInputTokens += call.InputTokens
	r.TotalOutputTokens += call.OutputTokens
	r.EstimatedCostUSD += call.CostUSD
}

// Efficiency возвращает количество новостей на доллар.
// При нулевой стоимости эффективность считается нулевой.
func (r DiscoveryRun) Efficiency() float64 {
	if r.EstimatedCostUSD <= 0 {
		return 0
	}
	return float64(r.NewsFound) / r.EstimatedCostUSD
}

// Duration возвращает длительность запуска.
func (r DiscoveryRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DiscoveryAPICall — запись одного обращения к провайдеру. После записи неизменяема.
type DiscoveryAPICall struct {
	ID             int64
	RunID          int64
	ResourceID     *int64
	ManufacturerID *int64
	Provider       Provider
	Model          string
	InputTokens    int
	OutputTokens   int
	CostUSD        float64
	DurationMS     int64
	Success        bool
	ErrorMessage   string
	NewsExtracted  int
	CreatedAt      time.Time
}

// SearchType определяет тип поиска: по источникам или по производителям.
type SearchType string

const (
	// SearchTypeResources поиск по источникам новостей.
	SearchTypeResources SearchType = "resources"
	// SearchTypeManufacturers поиск по производителям.
	SearchTypeManufacturers SearchType = "manufacturers"
)

// DiscoveryStatus — прогресс текущего поиска для опроса из интерфейса.
type DiscoveryStatus struct {
	ID         int64
	SearchType SearchType
	Processed  int
	Total      int
	State      RunState
	Provider   Provider
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Percent возвращает процент выполнения (0-100).
func (s DiscoveryStatus) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Processed * 100 / s.Total
}

// NewsItem — одна новость из ответа провайдера.
type NewsItem struct {
	Title     map[string]string
	Summary   map[string]string
	SourceURL string
}

// SearchRequest — параметры одного обращения к провайдеру.
type SearchRequest struct {
	Prompt            string
	Domains           []string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	MaxSearchResults  int
	SearchContextSize string
}

// SearchResult — разобранный ответ провайдера вместе с метриками.
type SearchResult struct {
	Items        []NewsItem
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// DiscoveryJob — задание на поиск, передаваемое через очередь.
type DiscoveryJob struct {
	SearchType      SearchType `json:"search_type"`
	All             bool       `json:"all"`
	ResourceIDs     []int64    `json:"resource_ids,omitempty"`
	ManufacturerIDs []int64    `json:"manufacturer_ids,omitempty"`
	Provider        Provider   `json:"provider"`
	StatusID        int64      `json:"status_id"`
	RequestedBy     *int64     `json:"requested_by,omitempty"`
}

// TargetStatistics — накопленная статистика поиска по одной цели.
type TargetStatistics struct {
	ID               int64
	SearchType       SearchType
	TargetID         int64
	TotalSearches    int
	TotalNewsFound   int
	TotalNoNews      int
	TotalErrors      int
	SuccessRate      float64
	ErrorRate        float64
	AvgNewsPerSearch float64
	FirstSearchAt    *time.Time
	LastSearchAt     *time.Time
	LastNewsAt       *time.Time
	News30Days       int
	News90Days       int
	RankingScore     float64
	UpdatedAt        time.Time
}

// Recalculate пересчитывает производные показатели статистики по счётчикам.
// Успешным считается поиск, который нашёл новости: без заглушки и без ошибок.
func (s *TargetStatistics) Recalculate() {
	if s.TotalSearches <= 0 {
		s.SuccessRate = 0
		s.ErrorRate = 0
		s.AvgNewsPerSearch = 0
		s.RankingScore = 0
		return
	}
	successful := s.TotalSearches - s.TotalNoNews - s.TotalErrors
	if successful < 0 {
		successful = 0
	}
	total := float64(s.TotalSearches)
	s.SuccessRate = round2(float64(successful) / total * 100)
	s.ErrorRate = round2(float64(s.TotalErrors) / total * 100)
	s.AvgNewsPerSearch = round2(float64(s.TotalNewsFound) / total)
	// свежие новости весят больше давних, ошибки снижают рейтинг
	score := float64(s.News30Days)*3 + float64(s.News90Days) + s.AvgNewsPerSearch*10 - s.ErrorRate/2
	if score < 0 {
		score = 0
	}
	s.RankingScore = round2(score)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TargetOutcome — итог обработки одной цели, применяемый к статистике.
type TargetOutcome struct {
	SearchType SearchType
	TargetID   int64
	NewsCount  int
	ErrorCount int
	IsNoNews   bool
	HasErrors  bool
}
