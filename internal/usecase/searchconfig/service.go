package searchconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
)

// Service управляет конфигурациями поиска новостей.
type Service struct {
	repo domain.ConfigRepo
	log  zerolog.Logger
}

// NewService создаёт сервис конфигураций.
func NewService(repo domain.ConfigRepo, logger zerolog.Logger) *Service {
	return &Service{repo: repo, log: logger}
}

// normalize подставляет значения по умолчанию вместо пустых полей,
// чтобы снимок конфигурации всегда был полным.
func normalize(cfg domain.SearchConfiguration) domain.SearchConfiguration {
	def := domain.DefaultSearchConfiguration()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	cfg.PrimaryProvider = domain.ParseProvider(string(cfg.PrimaryProvider))
	if cfg.PrimaryProvider == domain.ProviderAuto {
		cfg.PrimaryProvider = def.PrimaryProvider
	}
	if len(cfg.FallbackChain) == 0 {
		cfg.FallbackChain = def.FallbackChain
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = def.MaxSearchResults
	}
	if cfg.SearchContextSize == "" {
		cfg.SearchContextSize = def.SearchContextSize
	}
	if len(cfg.Models) == 0 {
		cfg.Models = def.Models
	}
	if len(cfg.Prices) == 0 {
		cfg.Prices = def.Prices
	}
	if cfg.MaxNewsPerTarget <= 0 {
		cfg.MaxNewsPerTarget = def.MaxNewsPerTarget
	}
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = 0
	}
	return cfg
}

// Create создаёт конфигурацию. Первая конфигурация в системе
// автоматически становится активной.
func (s *Service) Create(ctx context.Context, cfg domain.SearchConfiguration) (domain.SearchConfiguration, error) {
	cfg = normalize(cfg)
	created, err := s.repo.CreateConfig(ctx, cfg)
	if err != nil {
		return domain.SearchConfiguration{}, err
	}
	if _, aerr := s.repo.ActiveConfig(ctx); errors.Is(aerr, domain.ErrNotFound) {
		if err := s.repo.ActivateConfig(ctx, created.ID); err != nil {
			return domain.SearchConfiguration{}, err
		}
		created.IsActive = true
	}
	s.log.Info().Int64("config_id", created.ID).Str("name", created.Name).Msg("конфигурация поиска создана")
	return created, nil
}

// Update обновляет конфигурацию, не меняя флаг активности.
func (s *Service) Update(ctx context.Context, cfg domain.SearchConfiguration) error {
	if cfg.ID == 0 {
		return fmt.Errorf("не указан идентификатор конфигурации")
	}
	return s.repo.UpdateConfig(ctx, normalize(cfg))
}

// Get возвращает конфигурацию по идентификатору.
func (s *Service) Get(ctx context.Context, id int64) (domain.SearchConfiguration, error) {
	return s.repo.GetConfig(ctx, id)
}

// List возвращает все конфигурации.
func (s *Service) List(ctx context.Context) ([]domain.SearchConfiguration, error) {
	return s.repo.ListConfigs(ctx)
}

// Activate делает конфигурацию активной. Остальные деактивируются
// в той же транзакции: активной может быть только одна.
func (s *Service) Activate(ctx context.Context, id int64) error {
	if err := s.repo.ActivateConfig(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("config_id", id).Msg("конфигурация поиска активирована")
	return nil
}

// Active возвращает действующую конфигурацию: активную, иначе первую,
// иначе создаёт конфигурацию по умолчанию.
func (s *Service) Active(ctx context.Context) (domain.SearchConfiguration, error) {
	cfg, err := s.repo.ActiveConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SearchConfiguration{}, err
	}
	cfg, err = s.repo.FirstConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SearchConfiguration{}, err
	}
	def := domain.DefaultSearchConfiguration()
	def.CreatedAt = time.Now().UTC()
	created, err := s.repo.CreateConfig(ctx, def)
	if err != nil {
		return domain.SearchConfiguration{}, err
	}
	if err := s.repo.ActivateConfig(ctx, created.ID); err != nil {
		return domain.SearchConfiguration{}, err
	}
	created.IsActive = true
	s.log.Info().Int64("config_id", created.ID).Msg("создана конфигурация поиска по умолчанию")
	return created, nil
}
