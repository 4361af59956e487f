package targets

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
)

// ErrInvalid возвращается при некорректных данных источника или производителя.
var ErrInvalid = errors.New("некорректные данные цели поиска")

// Service управляет целями поиска: источниками новостей и производителями.
type Service struct {
	resources     domain.ResourceRepo
	manufacturers domain.ManufacturerRepo
	stats         domain.StatisticsRepo
	log           zerolog.Logger
}

// NewService создаёт сервис целей поиска.
func NewService(resources domain.ResourceRepo, manufacturers domain.ManufacturerRepo, stats domain.StatisticsRepo, logger zerolog.Logger) *Service {
	return &Service{resources: resources, manufacturers: manufacturers, stats: stats, log: logger}
}

func validateResource(res domain.NewsResource) (domain.NewsResource, error) {
	if res.Name == "" {
		return domain.NewsResource{}, fmt.Errorf("%w: не указано имя источника", ErrInvalid)
	}
	if res.URL == "" {
		return domain.NewsResource{}, fmt.Errorf("%w: не указан адрес источника", ErrInvalid)
	}
	switch res.SourceType {
	case "":
		res.SourceType = domain.SourceTypeAuto
	case domain.SourceTypeAuto, domain.SourceTypeHybrid, domain.SourceTypeManual:
	default:
		return domain.NewsResource{}, fmt.Errorf("%w: неизвестный тип источника %q", ErrInvalid, res.SourceType)
	}
	return res, nil
}

// CreateResource создаёт источник новостей. Пустой тип источника
// трактуется как auto.
func (s *Service) CreateResource(ctx context.Context, res domain.NewsResource) (domain.NewsResource, error) {
	res, err := validateResource(res)
	if err != nil {
		return domain.NewsResource{}, err
	}
	created, err := s.resources.CreateResource(ctx, res)
	if err != nil {
		return domain.NewsResource{}, err
	}
	s.log.Info().Int64("resource_id", created.ID).Str("name", created.Name).Msg("источник новостей создан")
	return created, nil
}

// UpdateResource обновляет источник новостей.
func (s *Service) UpdateResource(ctx context.Context, res domain.NewsResource) error {
	if res.ID == 0 {
		return fmt.Errorf("%w: не указан идентификатор источника", ErrInvalid)
	}
	res, err := validateResource(res)
	if err != nil {
		return err
	}
	return s.resources.UpdateResource(ctx, res)
}

// DeleteResource удаляет источник новостей.
func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	return s.resources.DeleteResource(ctx, id)
}

// GetResource возвращает источник по идентификатору.
func (s *Service) GetResource(ctx context.Context, id int64) (domain.NewsResource, error) {
	return s.resources.GetResource(ctx, id)
}

// ListResources возвращает все источники новостей.
func (s *Service) ListResources(ctx context.Context) ([]domain.NewsResource, error) {
	return s.resources.ListResources(ctx)
}

// ResourceStatistics возвращает накопленную статистику поиска по источнику.
// Для источника, по которому поиск ещё не запускался, счётчики нулевые.
func (s *Service) ResourceStatistics(ctx context.Context, id int64) (domain.TargetStatistics, error) {
	if _, err := s.resources.GetResource(ctx, id); err != nil {
		return domain.TargetStatistics{}, err
	}
	return s.stats.GetStatistics(ctx, domain.SearchTypeResources, id)
}

// CreateManufacturer создаёт производителя.
func (s *Service) CreateManufacturer(ctx context.Context, m domain.Manufacturer) (domain.Manufacturer, error) {
	if m.Name == "" {
		return domain.Manufacturer{}, fmt.Errorf("%w: не указано имя производителя", ErrInvalid)
	}
	created, err := s.manufacturers.CreateManufacturer(ctx, m)
	if err != nil {
		return domain.Manufacturer{}, err
	}
	s.log.Info().Int64("manufacturer_id", created.ID).Str("name", created.Name).Msg("производитель создан")
	return created, nil
}

// UpdateManufacturer обновляет производителя.
func (s *Service) UpdateManufacturer(ctx context.Context, m domain.Manufacturer) error {
	if m.ID == 0 {
		return fmt.Errorf("%w: не указан идентификатор производителя", ErrInvalid)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: не указано имя производителя", ErrInvalid)
	}
	return s.manufacturers.UpdateManufacturer(ctx, m)
}

// DeleteManufacturer удаляет производителя.
func (s *Service) DeleteManufacturer(ctx context.Context, id int64) error {
	return s.manufacturers.DeleteManufacturer(ctx, id)
}

// GetManufacturer возвращает производителя по идентификатору.
func (s *Service) GetManufacturer(ctx context.Context, id int64) (domain.Manufacturer, error) {
	return s.manufacturers.GetManufacturer(ctx, id)
}

// ListManufacturers возвращает всех производителей.
func (s *Service) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	return s.manufacturers.ListManufacturers(ctx)
}

// ManufacturerStatistics возвращает накопленную статистику поиска по производителю.
func (s *Service) ManufacturerStatistics(ctx context.Context, id int64) (domain.TargetStatistics, error) {
	if _, err := s.manufacturers.GetManufacturer(ctx, id); err != nil {
		return domain.TargetStatistics{}, err
	}
	return s.stats.GetStatistics(ctx, domain.SearchTypeManufacturers, id)
}
