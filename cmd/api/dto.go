package main

import (
	"time"

	"news-backend/internal/domain"
)

type newsRequest struct {
	Title          map[string]string `json:"title"`
	Body           map[string]string `json:"body"`
	SourceURL      string            `json:"source_url"`
	SourceLanguage string            `json:"source_language"`
	Status         string            `json:"status"`
	PubDate        *time.Time        `json:"pub_date"`
	ResourceID     *int64            `json:"resource_id"`
	ManufacturerID *int64            `json:"manufacturer_id"`
}

func (r newsRequest) toPost(id int64) domain.NewsPost {
	post := domain.NewsPost{
		ID:             id,
		Title:          r.Title,
		Body:           r.Body,
		SourceURL:      r.SourceURL,
		SourceLanguage: r.SourceLanguage,
		Status:         domain.PostStatus(r.Status),
		ResourceID:     r.ResourceID,
		ManufacturerID: r.ManufacturerID,
	}
	if r.PubDate != nil {
		post.PubDate = *r.PubDate
	}
	return post
}

type newsResponse struct {
	ID             int64             `json:"id"`
	Title          map[string]string `json:"title"`
	Body           map[string]string `json:"body"`
	SourceURL      string            `json:"source_url,omitempty"`
	SourceLanguage string            `json:"source_language,omitempty"`
	Status         string            `json:"status"`
	PubDate        time.Time         `json:"pub_date"`
	IsNoNewsFound  bool              `json:"is_no_news_found,omitempty"`
	ResourceID     *int64            `json:"resource_id,omitempty"`
	ManufacturerID *int64            `json:"manufacturer_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func newsResponseFrom(post domain.NewsPost) newsResponse {
	return newsResponse{
		ID:             post.ID,
		Title:          post.Title,
		Body:           post.Body,
		SourceURL:      post.SourceURL,
		SourceLanguage: post.SourceLanguage,
		Status:         string(post.Status),
		PubDate:        post.PubDate,
		IsNoNewsFound:  post.IsNoNewsFound,
		ResourceID:     post.ResourceID,
		ManufacturerID: post.ManufacturerID,
		CreatedAt:      post.CreatedAt,
	}
}

func newsList(posts []domain.NewsPost) []newsResponse {
	out := make([]newsResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, newsResponseFrom(p))
	}
	return out
}

type resourceRequest struct {
	Name               string `json:"name"`
	URL                string `json:"url"`
	Language           string `json:"language"`
	SourceType         string `json:"source_type"`
	CustomInstructions string `json:"custom_instructions"`
	Description        string `json:"description"`
}

func (r resourceRequest) toResource(id int64) domain.NewsResource {
	return domain.NewsResource{
		ID:                 id,
		Name:               r.Name,
		URL:                r.URL,
		Language:           r.Language,
		SourceType:         domain.SourceType(r.SourceType),
		CustomInstructions: r.CustomInstructions,
		Description:        r.Description,
	}
}

type resourceResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	URL                string    `json:"url"`
	Language           string    `json:"language,omitempty"`
	SourceType         string    `json:"source_type"`
	CustomInstructions string    `json:"custom_instructions,omitempty"`
	Description        string    `json:"description,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func resourceResponseFrom(res domain.NewsResource) resourceResponse {
	return resourceResponse{
		ID:                 res.ID,
		Name:               res.Name,
		URL:                res.URL,
		Language:           res.Language,
		SourceType:         string(res.SourceType),
		CustomInstructions: res.CustomInstructions,
		Description:        res.Description,
		CreatedAt:          res.CreatedAt,
	}
}

type manufacturerRequest struct {
	Name     string `json:"name"`
	Website1 string `json:"website1"`
	Website2 string `json:"website2"`
	Website3 string `json:"website3"`
	Region   string `json:"region"`
}

func (r manufacturerRequest) toManufacturer(id int64) domain.Manufacturer {
	return domain.Manufacturer{
		ID:       id,
		Name:     r.Name,
		Website1: r.Website1,
		Website2: r.Website2,
		Website3: r.Website3,
		Region:   r.Region,
	}
}

type manufacturerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Website1  string    `json:"website1,omitempty"`
	Website2  string    `json:"website2,omitempty"`
	Website3  string    `json:"website3,omitempty"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func manufacturerResponseFrom(m domain.Manufacturer) manufacturerResponse {
	return manufacturerResponse{
		ID:        m.ID,
		Name:      m.Name,
		Website1:  m.Website1,
		Website2:  m.Website2,
		Website3:  m.Website3,
		Region:    m.Region,
		CreatedAt: m.CreatedAt,
	}
}

type statisticsResponse struct {
	SearchType       string     `json:"search_type"`
	TargetID         int64      `json:"target_id"`
	TotalSearches    int        `json:"total_searches"`
	TotalNewsFound   int        `json:"total_news_found"`
	TotalNoNews      int        `json:"total_no_news"`
	TotalErrors      int        `json:"total_errors"`
	SuccessRate      float64    `json:"success_rate"`
	ErrorRate        float64    `json:"error_rate"`
	AvgNewsPerSearch float64    `json:"avg_news_per_search"`
	FirstSearchAt    *time.Time `json:"first_search_at,omitempty"`
	LastSearchAt     *time.Time `json:"last_search_at,omitempty"`
	LastNewsAt       *time.Time `json:"last_news_at,omitempty"`
	News30Days       int        `json:"news_30_days"`
	News90Days       int        `json:"news_90_days"`
	RankingScore     float64    `json:"ranking_score"`
}

func statisticsResponseFrom(stats domain.TargetStatistics) statisticsResponse {
	return statisticsResponse{
		SearchType:       string(stats.SearchType),
		TargetID:         stats.TargetID,
		TotalSearches:    stats.TotalSearches,
		TotalNewsFound:   stats.TotalNewsFound,
		TotalNoNews:      stats.TotalNoNews,
		TotalErrors:      stats.TotalErrors,
		SuccessRate:      stats.SuccessRate,
		ErrorRate:        stats.ErrorRate,
		AvgNewsPerSearch: stats.AvgNewsPerSearch,
		FirstSearchAt:    stats.FirstSearchAt,
		LastSearchAt:     stats.LastSearchAt,
		LastNewsAt:       stats.LastNewsAt,
		News30Days:       stats.News30Days,
		News90Days:       stats.News90Days,
		RankingScore:     stats.RankingScore,
	}
}

type startDiscoveryRequest struct {
	SearchType      string  `json:"search_type"`
	All             bool    `json:"all"`
	ResourceIDs     []int64 `json:"resource_ids"`
	ManufacturerIDs []int64 `json:"manufacturer_ids"`
	Provider        string  `json:"provider"`
}

type statusResponse struct {
	SearchType string    `json:"search_type"`
	State      string    `json:"state"`
	Provider   string    `json:"provider"`
	Processed  int       `json:"processed"`
	Total      int       `json:"total"`
	Percent    int       `json:"percent"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func statusResponseFrom(st domain.DiscoveryStatus) statusResponse {
	return statusResponse{
		SearchType: string(st.SearchType),
		State:      string(st.State),
		Provider:   string(st.Provider),
		Processed:  st.Processed,
		Total:      st.Total,
		Percent:    st.Percent(),
		UpdatedAt:  st.UpdatedAt,
	}
}

type runResponse struct {
	ID                int64                                 `json:"id"`
	UID               string                                `json:"uid"`
	ConfigSnapshot    domain.ConfigSnapshot                 `json:"config_snapshot"`
	StartedAt         time.Time                             `json:"started_at"`
	FinishedAt        *time.Time                            `json:"finished_at,omitempty"`
	DurationSeconds   float64                               `json:"duration_seconds"`
	TotalRequests     int                                   `json:"total_requests"`
	TotalInputTokens  int                                   `json:"total_input_tokens"`
	TotalOutputTokens int                                   `json:"total_output_tokens"`
	EstimatedCostUSD  float64                               `json:"estimated_cost_usd"`
	Efficiency        float64                               `json:"efficiency"`
	ProviderStats     map[domain.Provider]domain.ProviderStat `json:"provider_stats,omitempty"`
	NewsFound         int                                   `json:"news_found"`
	NewsDuplicates    int                                   `json:"news_duplicates"`
	TargetsProcessed  int                                   `json:"targets_processed"`
	TargetsFailed     int                                   `json:"targets_failed"`
}

func runResponseFrom(run domain.DiscoveryRun) runResponse {
	return runResponse{
		ID:                run.ID,
		UID:               run.UID,
		ConfigSnapshot:    run.ConfigSnapshot,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		DurationSeconds:   run.Duration().Seconds(),
		TotalRequests:     run.TotalRequests,
		TotalInputTokens:  run.TotalInputTokens,
		TotalOutputTokens: run.TotalOutputTokens,
		EstimatedCostUSD:  run.EstimatedCostUSD,
		Efficiency:        run.Efficiency(),
		ProviderStats:     run.ProviderStats,
		NewsFound:         run.NewsFound,
		NewsDuplicates:    run.NewsDuplicates,
		TargetsProcessed:  run.TargetsProcessed,
		TargetsFailed:     run.TargetsFailed,
	}
}

type callResponse struct {
	ID             int64     `json:"id"`
	RunID          int64     `json:"run_id"`
	ResourceID     *int64    `json:"resource_id,omitempty"`
	ManufacturerID *int64    `json:"manufacturer_id,omitempty"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	InputTokens    int       `json:"input_tokens"`
	OutputTokens   int       `json:"output_tokens"`
	CostUSD        float64   `json:"cost_usd"`
	DurationMS     int64     `json:"duration_ms"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	NewsExtracted  int       `json:"news_extracted"`
	CreatedAt      time.Time `json:"created_at"`
}

func callResponseFrom(call domain.DiscoveryAPICall) callResponse {
	return callResponse{
		ID:             call.ID,
		RunID:          call.RunID,
		ResourceID:     call.ResourceID,
		ManufacturerID: call.ManufacturerID,
		Provider:       string(call.Provider),
		Model:          call.Model,
		InputTokens:    call.InputTokens,
		OutputTokens:   call.OutputTokens,
		CostUSD:        call.CostUSD,
		DurationMS:     call.DurationMS,
		Success:        call.Success,
		ErrorMessage:   call.ErrorMessage,
		NewsExtracted:  call.NewsExtracted,
		CreatedAt:      call.CreatedAt,
	}
}

type configRequest struct {
	Name              string                                    `json:"name"`
	PrimaryProvider   string                                    `json:"primary_provider"`
	FallbackChain     []string                                  `json:"fallback_chain"`
	Temperature       float64                                   `json:"temperature"`
	TimeoutSeconds    int                                       `json:"timeout"`
	MaxSearchResults  int                                       `json:"max_search_results"`
	SearchContextSize string                                    `json:"search_context_size"`
	Models            map[domain.Provider]string                `json:"models"`
	Prices            map[domain.Provider]domain.ProviderPrices `json:"prices"`
	MaxNewsPerTarget  int                                       `json:"max_news_per_target"`
	RequestDelayMS    int                                       `json:"request_delay_ms"`
}

func (r configRequest) toConfig(id int64) domain.SearchConfiguration {
	chain := make([]domain.Provider, 0, len(r.FallbackChain))
	for _, p := range r.FallbackChain {
		parsed := domain.ParseProvider(p)
		if parsed != domain.ProviderAuto {
			chain = append(chain, parsed)
		}
	}
	return domain.SearchConfiguration{
		ID:                id,
		Name:              r.Name,
		PrimaryProvider:   domain.Provider(r.PrimaryProvider),
		FallbackChain:     chain,
		Temperature:       r.Temperature,
		Timeout:           time.Duration(r.TimeoutSeconds) * time.Second,
		MaxSearchResults:  r.MaxSearchResults,
		SearchContextSize: r.SearchContextSize,
		Models:            r.Models,
		Prices:            r.Prices,
		MaxNewsPerTarget:  r.MaxNewsPerTarget,
		RequestDelay:      time.Duration(r.RequestDelayMS) * time.Millisecond,
	}
}

type configResponse struct {
	ID                int64                                     `json:"id"`
	Name              string                                    `json:"name"`
	IsActive          bool                                      `json:"is_active"`
	PrimaryProvider   string                                    `json:"primary_provider"`
	FallbackChain     []domain.Provider                         `json:"fallback_chain"`
	Temperature       float64                                   `json:"temperature"`
	TimeoutSeconds    int                                       `json:"timeout"`
	MaxSearchResults  int                                       `json:"max_search_results"`
	SearchContextSize string                                    `json:"search_context_size"`
	Models            map[domain.Provider]string                `json:"models"`
	Prices            map[domain.Provider]domain.ProviderPrices `json:"prices"`
	MaxNewsPerTarget  int                                       `json:"max_news_per_target"`
	RequestDelayMS    int                                       `json:"request_delay_ms"`
	UpdatedAt         time.Time                                 `json:"updated_at"`
}

func configResponseFrom(cfg domain.SearchConfiguration) configResponse {
	return configResponse{
		ID:                cfg.ID,
		Name:              cfg.Name,
		IsActive:          cfg.IsActive,
		PrimaryProvider:   string(cfg.PrimaryProvider),
		FallbackChain:     cfg.FallbackChain,
		Temperature:       cfg.Temperature,
		TimeoutSeconds:    int(cfg.Timeout / time.Second),
		MaxSearchResults:  cfg.MaxSearchResults,
		SearchContextSize: cfg.SearchContextSize,
		Models:            cfg.Models,
		Prices:            cfg.Prices,
		MaxNewsPerTarget:  cfg.MaxNewsPerTarget,
		RequestDelayMS:    int(cfg.RequestDelay / time.Millisecond),
		UpdatedAt:         cfg.UpdatedAt,
	}
}
