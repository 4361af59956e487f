package targets

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
)

type stubResourceRepo struct {
	resources map[int64]domain.NewsResource
	nextID    int64
}

func newStubResourceRepo() *stubResourceRepo {
	return &stubResourceRepo{resources: make(map[int64]domain.NewsResource)}
}

func (r *stubResourceRepo) CreateResource(_ context.Context, res domain.NewsResource) (domain.NewsResource, error) {
	r.nextID++
	res.ID = r.nextID
	r.resources[res.ID] = res
	return res, nil
}
func (r *stubResourceRepo) UpdateResource(_ context.Context, res domain.NewsResource) error {
	if _, ok := r.resources[res.ID]; !ok {
		return domain.ErrNotFound
	}
	r.resources[res.ID] = res
	return nil
}
func (r *stubResourceRepo) DeleteResource(_ context.Context, id int64) error {
	if _, ok := r.resources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.resources, id)
	return nil
}
func (r *stubResourceRepo) GetResource(_ context.Context, id int64) (domain.NewsResource, error) {
	res, ok := r.resources[id]
	if !ok {
		return domain.NewsResource{}, domain.ErrNotFound
	}
	return res, nil
}
func (r *stubResourceRepo) ListResources(context.Context) ([]domain.NewsResource, error) {
	var out []domain.NewsResource
	for _, res := range r.resources {
		out = append(out, res)
	}
	return out, nil
}
func (r *stubResourceRepo) ListSearchableResources(context.Context) ([]domain.NewsResource, error) {
	return nil, nil
}
func (r *stubResourceRepo) ListResourcesByIDs(context.Context, []int64) ([]domain.NewsResource, error) {
	return nil, nil
}

type stubManufacturerRepo struct {
	manufacturers map[int64]domain.Manufacturer
	nextID        int64
}

func newStubManufacturerRepo() *stubManufacturerRepo {
	return &stubManufacturerRepo{manufacturers: make(map[int64]domain.Manufacturer)}
}

func (r *stubManufacturerRepo) CreateManufacturer(_ context.Context, m domain.Manufacturer) (domain.Manufacturer, error) {
	r.nextID++
	m.ID = r.nextID
	r.manufacturers[m.ID] = m
	return m, nil
}
func (r *stubManufacturerRepo) UpdateManufacturer(_ context.Context, m domain.Manufacturer) error {
	if _, ok := r.manufacturers[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.manufacturers[m.ID] = m
	return nil
}
func (r *stubManufacturerRepo) DeleteManufacturer(_ context.Context, id int64) error {
	if _, ok := r.manufacturers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.manufacturers, id)
	return nil
}
func (r *stubManufacturerRepo) GetManufacturer(_ context.Context, id int64) (domain.Manufacturer, error) {
	m, ok := r.manufacturers[id]
	if !ok {
		return domain.Manufacturer{}, domain.ErrNotFound
	}
	return m, nil
}
func (r *stubManufacturerRepo) ListManufacturers(context.Context) ([]domain.Manufacturer, error) {
	var out []domain.Manufacturer
	for _, m := range r.manufacturers {
		out = append(out, m)
	}
	return out, nil
}
func (r *stubManufacturerRepo) ListManufacturersByIDs(context.Context, []int64) ([]domain.Manufacturer, error) {
	return nil, nil
}

type stubStatsRepo struct {
	stats    map[domain.SearchType]map[int64]domain.TargetStatistics
	requests []domain.SearchType
}

func (r *stubStatsRepo) ApplyOutcome(context.Context, domain.TargetOutcome, int, int) error {
	return nil
}
func (r *stubStatsRepo) GetStatistics(_ context.Context, st domain.SearchType, targetID int64) (domain.TargetStatistics, error) {
	r.requests = append(r.requests, st)
	if byID, ok := r.stats[st]; ok {
		if s, ok := byID[targetID]; ok {
			return s, nil
		}
	}
	return domain.TargetStatistics{SearchType: st, TargetID: targetID}, nil
}

func newService(res *stubResourceRepo, man *stubManufacturerRepo, stats *stubStatsRepo) *Service {
	return NewService(res, man, stats, zerolog.Nop())
}

func TestCreateResourceDefaultsSourceType(t *testing.T) {
	repo := newStubResourceRepo()
	svc := newService(repo, newStubManufacturerRepo(), &stubStatsRepo{})

	created, err := svc.CreateResource(context.Background(), domain.NewsResource{
		Name: "Metal Daily",
		URL:  "https://metal.example",
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if created.SourceType != domain.SourceTypeAuto {
		t.Fatalf("пустой тип источника должен стать auto, получили %q", created.SourceType)
	}
	if created.ID == 0 {
		t.Fatal("источнику не присвоен идентификатор")
	}
}

func TestCreateResourceValidation(t *testing.T) {
	svc := newService(newStubResourceRepo(), newStubManufacturerRepo(), &stubStatsRepo{})

	cases := []struct {
		name string
		res  domain.NewsResource
	}{
		{"без имени", domain.NewsResource{URL: "https://metal.example"}},
		{"без адреса", domain.NewsResource{Name: "Metal Daily"}},
		{"неизвестный тип", domain.NewsResource{Name: "Metal Daily", URL: "https://metal.example", SourceType: "rss"}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateResource(context.Background(), tc.res); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: ожидали ErrInvalid, получили %v", tc.name, err)
		}
	}
}

func TestUpdateResourceRequiresID(t *testing.T) {
	svc := newService(newStubResourceRepo(), newStubManufacturerRepo(), &stubStatsRepo{})

	err := svc.UpdateResource(context.Background(), domain.NewsResource{Name: "Metal Daily", URL: "https://metal.example"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("ожидали ErrInvalid, получили %v", err)
	}
}

func TestResourceStatisticsUnknownResource(t *testing.T) {
	stats := &stubStatsRepo{}
	svc := newService(newStubResourceRepo(), newStubManufacturerRepo(), stats)

	if _, err := svc.ResourceStatistics(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
	if len(stats.requests) != 0 {
		t.Fatal("статистика не должна запрашиваться для несуществующего источника")
	}
}

func TestResourceStatisticsZeroForNeverSearched(t *testing.T) {
	repo := newStubResourceRepo()
	stats := &stubStatsRepo{}
	svc := newService(repo, newStubManufacturerRepo(), stats)

	created, err := svc.CreateResource(context.Background(), domain.NewsResource{Name: "Metal Daily", URL: "https://metal.example"})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	got, err := svc.ResourceStatistics(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if got.TotalSearches != 0 || got.RankingScore != 0 {
		t.Fatalf("ожидали нулевую статистику, получили %+v", got)
	}
	if len(stats.requests) != 1 || stats.requests[0] != domain.SearchTypeResources {
		t.Fatalf("статистика должна запрашиваться по типу resources: %v", stats.requests)
	}
}

func TestCreateManufacturerRequiresName(t *testing.T) {
	svc := newService(newStubResourceRepo(), newStubManufacturerRepo(), &stubStatsRepo{})

	if _, err := svc.CreateManufacturer(context.Background(), domain.Manufacturer{Region: "EU"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("ожидали ErrInvalid, получили %v", err)
	}
}

func TestManufacturerStatisticsSearchType(t *testing.T) {
	man := newStubManufacturerRepo()
	stats := &stubStatsRepo{}
	svc := newService(newStubResourceRepo(), man, stats)

	created, err := svc.CreateManufacturer(context.Background(), domain.Manufacturer{Name: "SMS Group"})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if _, err := svc.ManufacturerStatistics(context.Background(), created.ID); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(stats.requests) != 1 || stats.requests[0] != domain.SearchTypeManufacturers {
		t.Fatalf("статистика должна запрашиваться по типу manufacturers: %v", stats.requests)
	}
}

func TestDeleteResource(t *testing.T) {
	repo := newStubResourceRepo()
	svc := newService(repo, newStubManufacturerRepo(), &stubStatsRepo{})

	created, err := svc.CreateResource(context.Background(), domain.NewsResource{Name: "Metal Daily", URL: "https://metal.example"})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if err := svc.DeleteResource(context.Background(), created.ID); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if _, err := svc.GetResource(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("источник должен быть удалён, получили %v", err)
	}
}
