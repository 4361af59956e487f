package news

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"news-backend/internal/domain"
)

type stubNewsRepo struct {
	posts map[int64]domain.NewsPost
	next  int64
}

func newStubNewsRepo() *stubNewsRepo {
	return &stubNewsRepo{posts: map[int64]domain.NewsPost{}}
}

func (r *stubNewsRepo) CreatePost(_ context.Context, post domain.NewsPost) (domain.NewsPost, error) {
	r.next++
	post.ID = r.next
	r.posts[post.ID] = post
	return post, nil
}
func (r *stubNewsRepo) UpdatePost(_ context.Context, post domain.NewsPost) error {
	if _, ok := r.posts[post.ID]; !ok {
		return domain.ErrNotFound
	}
	r.posts[post.ID] = post
	return nil
}
func (r *stubNewsRepo) GetPost(_ context.Context, id int64) (domain.NewsPost, error) {
	post, ok := r.posts[id]
	if !ok {
		return domain.NewsPost{}, domain.ErrNotFound
	}
	return post, nil
}
func (r *stubNewsRepo) DeletePost(_ context.Context, id int64) error {
	if _, ok := r.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}
func (r *stubNewsRepo) ListVisible(_ context.Context, now time.Time, limit, _ int) ([]domain.NewsPost, error) {
	var out []domain.NewsPost
	for _, p := range r.posts {
		if p.VisibleAt(now) && !p.IsNoNewsFound {
			out = append(out, p)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
func (r *stubNewsRepo) ListAll(_ context.Context, status domain.PostStatus, _, _ int) ([]domain.NewsPost, error) {
	var out []domain.NewsPost
	for _, p := range r.posts {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *stubNewsRepo) ExistsBySourceURL(context.Context, string) (bool, error) { return false, nil }
func (r *stubNewsRepo) DeleteNoNewsFound(context.Context) (int64, error) {
	var deleted int64
	for id, p := range r.posts {
		if p.IsNoNewsFound {
			delete(r.posts, id)
			deleted++
		}
	}
	return deleted, nil
}
func (r *stubNewsRepo) PublishDue(_ context.Context, now time.Time) (int64, error) {
	var published int64
	for id, p := range r.posts {
		if p.Status == domain.StatusScheduled && !p.PubDate.After(now) {
			p.Status = domain.StatusPublished
			r.posts[id] = p
			published++
		}
	}
	return published, nil
}
func (r *stubNewsRepo) CountRecentByTarget(context.Context, domain.SearchType, int64, time.Time) (int, error) {
	return 0, nil
}

func newTestService(repo *stubNewsRepo, now time.Time) *Service {
	svc := NewService(repo, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetHidesInvisiblePosts(t *testing.T) {
	repo := newStubNewsRepo()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	draft, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusDraft, PubDate: now.Add(-time.Hour)})
	future, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusPublished, PubDate: now.Add(time.Hour)})
	visible, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusPublished, PubDate: now.Add(-time.Hour)})
	scheduled, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusScheduled, PubDate: now.Add(-time.Minute)})
	placeholder, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusPublished, PubDate: now.Add(-time.Hour), IsNoNewsFound: true})

	if _, err := svc.Get(ctx, draft.ID, false); err == nil {
		t.Fatal("черновик не должен быть виден читателю")
	}
	if _, err := svc.Get(ctx, future.ID, false); err == nil {
		t.Fatal("новость с будущей датой не должна быть видна")
	}
	if _, err := svc.Get(ctx, visible.ID, false); err != nil {
		t.Fatalf("опубликованная новость должна быть видна: %v", err)
	}
	if _, err := svc.Get(ctx, scheduled.ID, false); err != nil {
		t.Fatalf("запланированная новость с наступившей датой видна: %v", err)
	}
	if _, err := svc.Get(ctx, placeholder.ID, false); err == nil {
		t.Fatal("заглушка не должна быть видна читателю")
	}
	if _, err := svc.Get(ctx, draft.ID, true); err != nil {
		t.Fatalf("админ видит черновик: %v", err)
	}
}

func TestListVisibleFiltersByDateAndStatus(t *testing.T) {
	repo := newStubNewsRepo()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusPublished, PubDate: now.Add(-time.Hour)})
	repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusScheduled, PubDate: now.Add(-time.Minute)})
	repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusDraft, PubDate: now.Add(-time.Hour)})
	repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusPublished, PubDate: now.Add(time.Hour)})

	posts, err := svc.ListVisible(ctx, 0, 0)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ожидали 2 видимые новости, получили %d", len(posts))
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	repo := newStubNewsRepo()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	post, err := svc.Create(context.Background(), domain.NewsPost{Title: map[string]string{"ru": "Тест"}})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if post.Status != domain.StatusDraft {
		t.Fatalf("статус по умолчанию — черновик, получили %s", post.Status)
	}
	if !post.PubDate.Equal(now) {
		t.Fatalf("дата публикации по умолчанию — текущая: %v", post.PubDate)
	}
}

func TestPublishDue(t *testing.T) {
	repo := newStubNewsRepo()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	due, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusScheduled, PubDate: now.Add(-time.Minute)})
	notDue, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusScheduled, PubDate: now.Add(time.Hour)})

	published, err := svc.PublishDue(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if published != 1 {
		t.Fatalf("ожидали 1 публикацию, получили %d", published)
	}
	if repo.posts[due.ID].Status != domain.StatusPublished {
		t.Fatalf("новость с наступившей датой должна стать published")
	}
	if repo.posts[notDue.ID].Status != domain.StatusScheduled {
		t.Fatalf("новость с будущей датой должна остаться scheduled")
	}
}

func TestCleanupNoNewsFound(t *testing.T) {
	repo := newStubNewsRepo()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	ctx := context.Background()

	repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusDraft, IsNoNewsFound: true, PubDate: now})
	repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusDraft, IsNoNewsFound: true, PubDate: now})
	keep, _ := repo.CreatePost(ctx, domain.NewsPost{Status: domain.StatusDraft, PubDate: now})

	deleted, err := svc.CleanupNoNewsFound(ctx)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("ожидали 2 удаления, получили %d", deleted)
	}
	if _, ok := repo.posts[keep.ID]; !ok {
		t.Fatalf("обычная новость не должна удаляться")
	}
}
