package domain

import (
	"context"
	"time"
)

// NewsRepo управляет новостями.
type NewsRepo interface {
	CreatePost(ctx context.Context, post NewsPost) (NewsPost, error)
	UpdatePost(ctx context.Context, post NewsPost) error
	GetPost(ctx context.Context, id int64) (NewsPost, error)
	DeletePost(ctx context.Context, id int64) error
	ListVisible(ctx context.Context, now time.Time, limit, offset int) ([]NewsPost, error)
	ListAll(ctx context.Context, status PostStatus, limit, offset int) ([]NewsPost, error)
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	DeleteNoNewsFound(ctx context.Context) (int64, error)
	PublishDue(ctx context.Context, now time.Time) (int64, error)
	CountRecentByTarget(ctx context.Context, searchType SearchType, targetID int64, since time.Time) (int, error)
}

// ResourceRepo управляет источниками новостей.
type ResourceRepo interface {
	CreateResource(ctx context.Context, res NewsResource) (NewsResource, error)
	UpdateResource(ctx context.Context, res NewsResource) error
	DeleteResource(ctx context.Context, id int64) error
	GetResource(ctx context.Context, id int64) (NewsResource, error)
	ListResources(ctx context.Context) ([]NewsResource, error)
	ListSearchableResources(ctx context.Context) ([]NewsResource, error)
	ListResourcesByIDs(ctx context.Context, ids []int64) ([]NewsResource, error)
}

// ManufacturerRepo управляет производителями.
type ManufacturerRepo interface {
	CreateManufacturer(ctx context.Context, m Manufacturer) (Manufacturer, error)
	UpdateManufacturer(ctx context.Context, m Manufacturer) error
	DeleteManufacturer(ctx context.Context, id int64) error
	GetManufacturer(ctx context.Context, id int64) (Manufacturer, error)
	ListManufacturers(ctx context.Context) ([]Manufacturer, error)
	ListManufacturersByIDs(ctx context.Context, ids []int64) ([]Manufacturer, error)
}

// ConfigRepo управляет конфигурациями поиска.
type ConfigRepo interface {
	CreateConfig(ctx context.Context, cfg SearchConfiguration) (SearchConfiguration, error)
	UpdateConfig(ctx context.Context, cfg SearchConfiguration) error
	GetConfig(ctx context.Context, id int64) (SearchConfiguration, error)
	ListConfigs(ctx context.Context) ([]SearchConfiguration, error)
	// ActivateConfig включает конфигурацию и в той же транзакции выключает остальные.
	ActivateConfig(ctx context.Context, id int64) error
	// ActiveConfig возвращает активную конфигурацию, если она есть.
	ActiveConfig(ctx context.Context) (SearchConfiguration, error)
	FirstConfig(ctx context.Context) (SearchConfiguration, error)
}

// RunRepo хранит запуски поиска и вызовы API.
type RunRepo interface {
	CreateRun(ctx context.Context, run DiscoveryRun) (DiscoveryRun, error)
	SaveRunAggregates(ctx context.Context, run DiscoveryRun) error
	FinishRun(ctx context.Context, run DiscoveryRun) error
	GetRun(ctx context.Context, id int64) (DiscoveryRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]DiscoveryRun, error)
	CreateCall(ctx context.Context, call DiscoveryAPICall) (DiscoveryAPICall, error)
	ListCalls(ctx context.Context, runID int64) ([]DiscoveryAPICall, error)
	LastSearchDate(ctx context.Context) (time.Time, error)
	SetLastSearchDate(ctx context.Context, date time.Time) error
}

// StatusRepo хранит прогресс текущего поиска.
type StatusRepo interface {
	// StartStatus закрывает предыдущие running-статусы этого типа и создаёт новый.
	StartStatus(ctx context.Context, searchType SearchType, total int, provider Provider) (DiscoveryStatus, error)
	UpdateStatusProgress(ctx context.Context, id int64, processed, total int) error
	FinishStatus(ctx context.Context, id int64, state RunState) error
	CurrentStatus(ctx context.Context, searchType SearchType) (DiscoveryStatus, error)
}

// StatisticsRepo накапливает статистику по целям поиска.
type StatisticsRepo interface {
	ApplyOutcome(ctx context.Context, outcome TargetOutcome, news30, news90 int) error
	GetStatistics(ctx context.Context, searchType SearchType, targetID int64) (TargetStatistics, error)
}

// ProviderClient выполняет один поисковый запрос к LLM-провайдеру.
// При ошибке возвращаемый SearchResult может содержать уже потраченные токены.
type ProviderClient interface {
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)
}

// ProviderRegistry отвечает за доступность провайдеров и выдачу клиентов.
type ProviderRegistry interface {
	List() []ProviderInfo
	Client(p Provider) (ProviderClient, bool)
	Available(p Provider) bool
}

// DiscoveryQueue — очередь заданий на поиск.
type DiscoveryQueue interface {
	Enqueue(ctx context.Context, job DiscoveryJob) error
	Pop(ctx context.Context) (DiscoveryJob, error)
}

// Notifier сообщает администратору о завершении запуска.
type Notifier interface {
	RunFinished(ctx context.Context, run DiscoveryRun) error
}
