package news

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service — операции над новостями для публичной выдачи и админки.
type Service struct {
	repo domain.NewsRepo
	log  zerolog.Logger
	now  func() time.Time
}

// NewService создаёт сервис новостей.
func NewService(repo domain.NewsRepo, logger zerolog.Logger) *Service {
	return &Service{repo: repo, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListVisible возвращает новости для читателя: только с наступившей датой
// публикации и статусом published или scheduled.
func (s *Service) ListVisible(ctx context.Context, limit, offset int) ([]domain.NewsPost, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListVisible(ctx, s.now(), limit, offset)
}

// Get возвращает новость по идентификатору. Невидимые читателю записи
// наружу не отдаются.
func (s *Service) Get(ctx context.Context, id int64, admin bool) (domain.NewsPost, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return domain.NewsPost{}, err
	}
	if !admin && (!post.VisibleAt(s.now()) || post.IsNoNewsFound) {
		return domain.NewsPost{}, domain.ErrNotFound
	}
	return post, nil
}

// ListAll возвращает новости для админки с опциональным фильтром по статусу.
func (s *Service) ListAll(ctx context.Context, status domain.PostStatus, limit, offset int) ([]domain.NewsPost, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListAll(ctx, status, limit, offset)
}

// Create создаёт новость. Пустой статус означает черновик.
func (s *Service) Create(ctx context.Context, post domain.NewsPost) (domain.NewsPost, error) {
	if post.Status == "" {
		post.Status = domain.StatusDraft
	}
	if post.PubDate.IsZero() {
		post.PubDate = s.now()
	}
	if post.Title == nil {
		post.Title = map[string]string{}
	}
	if post.Body == nil {
		post.Body = map[string]string{}
	}
	return s.repo.CreatePost(ctx, post)
}

// Update обновляет новость.
func (s *Service) Update(ctx context.Context, post domain.NewsPost) error {
	return s.repo.UpdatePost(ctx, post)
}

// Delete удаляет новость.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeletePost(ctx, id)
}

// PublishDue переводит запланированные новости с наступившей датой в published.
func (s *Service) PublishDue(ctx context.Context) (int64, error) {
	published, err := s.repo.PublishDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if published > 0 {
		s.log.Info().Int64("published", published).Msg("запланированные новости опубликованы")
	}
	return published, nil
}

// CleanupNoNewsFound удаляет все заглушки "новостей нет".
func (s *Service) CleanupNoNewsFound(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteNoNewsFound(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("deleted", deleted).Msg("заглушки об отсутствии новостей удалены")
	return deleted, nil
}
