package searchconfig

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
)

type stubConfigRepo struct {
	configs map[int64]domain.SearchConfiguration
	next    int64
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{configs: map[int64]domain.SearchConfiguration{}}
}

func (r *stubConfigRepo) CreateConfig(_ context.Context, cfg domain.SearchConfiguration) (domain.SearchConfiguration, error) {
	r.next++
	cfg.ID = r.next
	cfg.IsActive = false
	r.configs[cfg.ID] = cfg
	return cfg, nil
}
func (r *stubConfigRepo) UpdateConfig(_ context.Context, cfg domain.SearchConfiguration) error {
	existing, ok := r.configs[cfg.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cfg.IsActive = existing.IsActive
	r.configs[cfg.ID] = cfg
	return nil
}
func (r *stubConfigRepo) GetConfig(_ context.Context, id int64) (domain.SearchConfiguration, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return domain.SearchConfiguration{}, domain.ErrNotFound
	}
	return cfg, nil
}
func (r *stubConfigRepo) ListConfigs(context.Context) ([]domain.SearchConfiguration, error) {
	var out []domain.SearchConfiguration
	for i := int64(1); i <= r.next; i++ {
		if cfg, ok := r.configs[i]; ok {
			out = append(out, cfg)
		}
	}
	return out, nil
}
func (r *stubConfigRepo) ActivateConfig(_ context.Context, id int64) error {
	if _, ok := r.configs[id]; !ok {
		return domain.ErrNotFound
	}
	for cid, cfg := range r.configs {
		cfg.IsActive = cid == id
		r.configs[cid] = cfg
	}
	return nil
}
func (r *stubConfigRepo) ActiveConfig(context.Context) (domain.SearchConfiguration, error) {
	for _, cfg := range r.configs {
		if cfg.IsActive {
			return cfg, nil
		}
	}
	return domain.SearchConfiguration{}, domain.ErrNotFound
}
func (r *stubConfigRepo) FirstConfig(context.Context) (domain.SearchConfiguration, error) {
	for i := int64(1); i <= r.next; i++ {
		if cfg, ok := r.configs[i]; ok {
			return cfg, nil
		}
	}
	return domain.SearchConfiguration{}, domain.ErrNotFound
}

func (r *stubConfigRepo) activeCount() int {
	count := 0
	for _, cfg := range r.configs {
		if cfg.IsActive {
			count++
		}
	}
	return count
}

func TestActivateKeepsSingleActive(t *testing.T) {
	repo := newStubConfigRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.SearchConfiguration{Name: "первая"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	second, err := svc.Create(ctx, domain.SearchConfiguration{Name: "вторая"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	if !first.IsActive {
		t.Fatal("первая конфигурация должна стать активной автоматически")
	}
	if second.IsActive {
		t.Fatal("вторая конфигурация не должна быть активной при создании")
	}

	if err := svc.Activate(ctx, second.ID); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if repo.activeCount() != 1 {
		t.Fatalf("активной может быть только одна конфигурация, активных: %d", repo.activeCount())
	}
	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("активной должна быть вторая конфигурация, получили %d", active.ID)
	}
}

func TestActiveCreatesDefaultWhenEmpty(t *testing.T) {
	repo := newStubConfigRepo()
	svc := NewService(repo, zerolog.Nop())

	cfg, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Name != "default" {
		t.Fatalf("ожидали конфигурацию по умолчанию, получили %q", cfg.Name)
	}
	if !cfg.IsActive {
		t.Fatal("конфигурация по умолчанию должна быть активной")
	}
	if cfg.PrimaryProvider != domain.ProviderGrok {
		t.Fatalf("основной провайдер по умолчанию — grok, получили %s", cfg.PrimaryProvider)
	}
}

func TestCreateNormalizesEmptyFields(t *testing.T) {
	repo := newStubConfigRepo()
	svc := NewService(repo, zerolog.Nop())

	cfg, err := svc.Create(context.Background(), domain.SearchConfiguration{Name: "узкая"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Timeout != 120*time.Second {
		t.Fatalf("таймаут по умолчанию 120с, получили %v", cfg.Timeout)
	}
	if cfg.MaxNewsPerTarget != 10 {
		t.Fatalf("лимит новостей по умолчанию 10, получили %d", cfg.MaxNewsPerTarget)
	}
	if len(cfg.Models) == 0 || len(cfg.Prices) == 0 {
		t.Fatal("модели и цены должны заполняться значениями по умолчанию")
	}
	if len(cfg.FallbackChain) == 0 {
		t.Fatal("цепочка резервов должна заполняться значением по умолчанию")
	}
}

func TestUpdateRequiresID(t *testing.T) {
	svc := NewService(newStubConfigRepo(), zerolog.Nop())
	if err := svc.Update(context.Background(), domain.SearchConfiguration{Name: "x"}); err == nil {
		t.Fatal("обновление без идентификатора должно возвращать ошибку")
	}
}
