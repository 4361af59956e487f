package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"news-backend/internal/domain"
	"news-backend/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.NewsRepo         = (*Postgres)(nil)
	_ domain.ResourceRepo     = (*Postgres)(nil)
	_ domain.ManufacturerRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

func marshalLocalized(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func unmarshalLocalized(data []byte) map[string]string {
	if len(data) == 0 {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return map[string]string{}
	}
	return m
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

const newsPostColumns = `id, title, body, source_url, source_language, status, pub_date, is_no_news_found, resource_id, manufacturer_id, author_id, created_at, updated_at`

func scanNewsPost(row pgx.Row) (domain.NewsPost, error) {
	var (
		post           domain.NewsPost
		title, body    []byte
		sourceURL      sql.NullString
		sourceLanguage sql.NullString
		resourceID     sql.NullInt64
		manufacturerID sql.NullInt64
		authorID       sql.NullInt64
	)
	err := row.Scan(&post.ID, &title, &body, &sourceURL, &sourceLanguage, &post.Status, &post.PubDate, &post.IsNoNewsFound, &resourceID, &manufacturerID, &authorID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return domain.NewsPost{}, err
	}
	post.Title = unmarshalLocalized(title)
	post.Body = unmarshalLocalized(body)
	post.SourceURL = sourceURL.String
	post.SourceLanguage = sourceLanguage.String
	post.ResourceID = int64Ptr(resourceID)
	post.ManufacturerID = int64Ptr(manufacturerID)
	post.AuthorID = int64Ptr(authorID)
	return post, nil
}

// CreatePost реализует domain.NewsRepo.
func (p *Postgres) CreatePost(ctx context.Context, post domain.NewsPost) (domain.NewsPost, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	title, err := marshalLocalized(post.Title)
	if err != nil {
		return domain.NewsPost{}, fmt.Errorf("marshal title: %w", err)
	}
	body, err := marshalLocalized(post.Body)
	if err != nil {
		return domain.NewsPost{}, fmt.Errorf("marshal body: %w", err)
	}
	if post.PubDate.IsZero() {
		post.PubDate = time.Now().UTC()
	}

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO news_posts (title, body, source_url, source_language, status, pub_date, is_no_news_found, resource_id, manufacturer_id, author_id)
VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), $5, $6, $7, $8, $9, $10)
RETURNING `+newsPostColumns+`
`, title, body, post.SourceURL, post.SourceLanguage, post.Status, post.PubDate, post.IsNoNewsFound, nullInt64(post.ResourceID), nullInt64(post.ManufacturerID), nullInt64(post.AuthorID))
	created, err := scanNewsPost(row)
	metrics.ObserveNetworkRequest("postgres", "news_posts_insert", "news_posts", start, err)
	return created, err
}

// UpdatePost реализует domain.NewsRepo.
func (p *Postgres) UpdatePost(ctx context.Context, post domain.NewsPost) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	title, err := marshalLocalized(post.Title)
	if err != nil {
		return fmt.Errorf("marshal title: %w", err)
	}
	body, err := marshalLocalized(post.Body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE news_posts
SET title = $2, body = $3, source_url = NULLIF($4,''), source_language = NULLIF($5,''), status = $6, pub_date = $7, is_no_news_found = $8, resource_id = $9, manufacturer_id = $10, updated_at = now()
WHERE id = $1
`, post.ID, title, body, post.SourceURL, post.SourceLanguage, post.Status, post.PubDate, post.IsNoNewsFound, nullInt64(post.ResourceID), nullInt64(post.ManufacturerID))
	metrics.ObserveNetworkRequest("postgres", "news_posts_update", "news_posts", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetPost реализует domain.NewsRepo.
func (p *Postgres) GetPost(ctx context.Context, id int64) (domain.NewsPost, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `SELECT `+newsPostColumns+` FROM news_posts WHERE id = $1`, id)
	post, err := scanNewsPost(row)
	metrics.ObserveNetworkRequest("postgres", "news_posts_get", "news_posts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewsPost{}, domain.ErrNotFound
	}
	return post, err
}

// DeletePost реализует domain.NewsRepo.
func (p *Postgres) DeletePost(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM news_posts WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "news_posts_delete", "news_posts", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListVisible возвращает новости, видимые читателю: наступившая дата
// публикации и статус published либо scheduled. Записи-заглушки "новостей нет"
// наружу не отдаются.
func (p *Postgres) ListVisible(ctx context.Context, now time.Time, limit, offset int) ([]domain.NewsPost, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT `+newsPostColumns+`
FROM news_posts
WHERE pub_date <= $1 AND status IN ($2, $3) AND NOT is_no_news_found
ORDER BY pub_date DESC, id DESC
LIMIT $4 OFFSET $5
`, now, domain.StatusPublished, domain.StatusScheduled, limit, offset)
	metrics.ObserveNetworkRequest("postgres", "news_posts_list_visible", "news_posts", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNewsPosts(rows)
}

// ListAll возвращает новости для админки, при пустом статусе — все.
func (p *Postgres) ListAll(ctx context.Context, status domain.PostStatus, limit, offset int) ([]domain.NewsPost, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT `+newsPostColumns+`
FROM news_posts
WHERE ($1 = '' OR status = $1)
ORDER BY pub_date DESC, id DESC
LIMIT $2 OFFSET $3
`, string(status), limit, offset)
	metrics.ObserveNetworkRequest("postgres", "news_posts_list_all", "news_posts", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNewsPosts(rows)
}

func collectNewsPosts(rows pgx.Rows) ([]domain.NewsPost, error) {
	var posts []domain.NewsPost
	for rows.Next() {
		post, err := scanNewsPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ExistsBySourceURL реализует дедупликацию найденных новостей.
func (p *Postgres) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	if sourceURL == "" {
		return false, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM news_posts WHERE source_url = $1)`, sourceURL).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "news_posts_exists", "news_posts", start, err)
	return exists, err
}

// DeleteNoNewsFound удаляет все записи-заглушки "новостей нет".
func (p *Postgres) DeleteNoNewsFound(ctx context.Context) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM news_posts WHERE is_no_news_found`)
	metrics.ObserveNetworkRequest("postgres", "news_posts_delete_no_news", "news_posts", start, err)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PublishDue переводит запланированные новости с наступившей датой в published.
func (p *Postgres) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE news_posts SET status = $1, updated_at = now()
WHERE status = $2 AND pub_date <= $3
`, domain.StatusPublished, domain.StatusScheduled, now)
	metrics.ObserveNetworkRequest("postgres", "news_posts_publish_due", "news_posts", start, err)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountRecentByTarget считает новости цели, созданные после указанной даты.
func (p *Postgres) CountRecentByTarget(ctx context.Context, searchType domain.SearchType, targetID int64, since time.Time) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	column := "resource_id"
	if searchType == domain.SearchTypeManufacturers {
		column = "manufacturer_id"
	}
	start := time.Now()
	var count int
	err := p.pool.QueryRow(ctx, `
SELECT count(*) FROM news_posts
WHERE `+column+` = $1 AND created_at >= $2 AND NOT is_no_news_found
`, targetID, since).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "news_posts_count_recent", "news_posts", start, err)
	return count, err
}

const resourceColumns = `id, name, url, language, source_type, custom_instructions, description, created_at`

func scanResource(row pgx.Row) (domain.NewsResource, error) {
	var (
		res          domain.NewsResource
		language     sql.NullString
		instructions sql.NullString
		description  sql.NullString
	)
	err := row.Scan(&res.ID, &res.Name, &res.URL, &language, &res.SourceType, &instructions, &description, &res.CreatedAt)
	if err != nil {
		return domain.NewsResource{}, err
	}
	res.Language = language.String
	res.CustomInstructions = instructions.String
	res.Description = description.String
	return res, nil
}

// CreateResource реализует domain.ResourceRepo.
func (p *Postgres) CreateResource(ctx context.Context, res domain.NewsResource) (domain.NewsResource, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO news_resources (name, url, language, source_type, custom_instructions, description)
VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), NULLIF($6,''))
RETURNING `+resourceColumns+`
`, res.Name, res.URL, res.Language, res.SourceType, res.CustomInstructions, res.Description)
	created, err := scanResource(row)
	metrics.ObserveNetworkRequest("postgres", "news_resources_insert", "news_resources", start, err)
	return created, err
}

// UpdateResource реализует domain.ResourceRepo.
func (p *Postgres) UpdateResource(ctx context.Context, res domain.NewsResource) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE news_resources
SET name = $2, url = $3, language = NULLIF($4,''), source_type = $5, custom_instructions = NULLIF($6,''), description = NULLIF($7,'')
WHERE id = $1
`, res.ID, res.Name, res.URL, res.Language, res.SourceType, res.CustomInstructions, res.Description)
	metrics.ObserveNetworkRequest("postgres", "news_resources_update", "news_resources", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteResource реализует domain.ResourceRepo.
func (p *Postgres) DeleteResource(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM news_resources WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "news_resources_delete", "news_resources", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetResource реализует domain.ResourceRepo.
func (p *Postgres) GetResource(ctx context.Context, id int64) (domain.NewsResource, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM news_resources WHERE id = $1`, id)
	res, err := scanResource(row)
	metrics.ObserveNetworkRequest("postgres", "news_resources_get", "news_resources", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewsResource{}, domain.ErrNotFound
	}
	return res, err
}

// ListResources реализует domain.ResourceRepo.
func (p *Postgres) ListResources(ctx context.Context) ([]domain.NewsResource, error) {
	return p.queryResources(ctx, `SELECT `+resourceColumns+` FROM news_resources ORDER BY id`, "news_resources_list")
}

// ListSearchableResources возвращает источники, участвующие в автоматическом
// поиске: типы auto и hybrid. Ручные источники поиск пропускает.
func (p *Postgres) ListSearchableResources(ctx context.Context) ([]domain.NewsResource, error) {
	return p.queryResources(ctx, `
SELECT `+resourceColumns+` FROM news_resources
WHERE source_type IN ('`+string(domain.SourceTypeAuto)+`', '`+string(domain.SourceTypeHybrid)+`')
ORDER BY id`, "news_resources_list_searchable")
}

// ListResourcesByIDs реализует domain.ResourceRepo.
func (p *Postgres) ListResourcesByIDs(ctx context.Context, ids []int64) ([]domain.NewsResource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+resourceColumns+` FROM news_resources WHERE id = ANY($1) ORDER BY id`, ids)
	metrics.ObserveNetworkRequest("postgres", "news_resources_list_by_ids", "news_resources", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

func (p *Postgres) queryResources(ctx context.Context, query, operation string) ([]domain.NewsResource, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, query)
	metrics.ObserveNetworkRequest("postgres", operation, "news_resources", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResources(rows)
}

func collectResources(rows pgx.Rows) ([]domain.NewsResource, error) {
	var out []domain.NewsResource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

const manufacturerColumns = `id, name, website1, website2, website3, region, created_at`

func scanManufacturer(row pgx.Row) (domain.Manufacturer, error) {
	var (
		m          domain.Manufacturer
		w1, w2, w3 sql.NullString
		region     sql.NullString
	)
	err := row.Scan(&m.ID, &m.Name, &w1, &w2, &w3, &region, &m.CreatedAt)
	if err != nil {
		return domain.Manufacturer{}, err
	}
	m.Website1 = w1.String
	m.Website2 = w2.String
	m.Website3 = w3.String
	m.Region = region.String
	return m, nil
}

// CreateManufacturer реализует domain.ManufacturerRepo.
func (p *Postgres) CreateManufacturer(ctx context.Context, m domain.Manufacturer) (domain.Manufacturer, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO manufacturers (name, website1, website2, website3, region)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''))
RETURNING `+manufacturerColumns+`
`, m.Name, m.Website1, m.Website2, m.Website3, m.Region)
	created, err := scanManufacturer(row)
	metrics.ObserveNetworkRequest("postgres", "manufacturers_insert", "manufacturers", start, err)
	return created, err
}

// UpdateManufacturer реализует domain.ManufacturerRepo.
func (p *Postgres) UpdateManufacturer(ctx context.Context, m domain.Manufacturer) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE manufacturers
SET name = $2, website1 = NULLIF($3,''), website2 = NULLIF($4,''), website3 = NULLIF($5,''), region = NULLIF($6,'')
WHERE id = $1
`, m.ID, m.Name, m.Website1, m.Website2, m.Website3, m.Region)
	metrics.ObserveNetworkRequest("postgres", "manufacturers_update", "manufacturers", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteManufacturer реализует domain.ManufacturerRepo.
func (p *Postgres) DeleteManufacturer(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM manufacturers WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "manufacturers_delete", "manufacturers", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetManufacturer реализует domain.ManufacturerRepo.
func (p *Postgres) GetManufacturer(ctx context.Context, id int64) (domain.Manufacturer, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `SELECT `+manufacturerColumns+` FROM manufacturers WHERE id = $1`, id)
	m, err := scanManufacturer(row)
	metrics.ObserveNetworkRequest("postgres", "manufacturers_get", "manufacturers", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Manufacturer{}, domain.ErrNotFound
	}
	return m, err
}

// ListManufacturers реализует domain.ManufacturerRepo.
func (p *Postgres) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+manufacturerColumns+` FROM manufacturers ORDER BY id`)
	metrics.ObserveNetworkRequest("postgres", "manufacturers_list", "manufacturers", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectManufacturers(rows)
}

// ListManufacturersByIDs реализует domain.ManufacturerRepo.
func (p *Postgres) ListManufacturersByIDs(ctx context.Context, ids []int64) ([]domain.Manufacturer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+manufacturerColumns+` FROM manufacturers WHERE id = ANY($1) ORDER BY id`, ids)
	metrics.ObserveNetworkRequest("postgres", "manufacturers_list_by_ids", "manufacturers", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectManufacturers(rows)
}

func collectManufacturers(rows pgx.Rows) ([]domain.Manufacturer, error) {
	var out []domain.Manufacturer
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
