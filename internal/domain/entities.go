package domain

import "time"

// PostStatus описывает статус публикации новости.
type PostStatus string

const (
	// StatusDraft черновик, невидим снаружи.
	StatusDraft PostStatus = "draft"
	// StatusScheduled запланирована и станет видимой после наступления даты.
	StatusScheduled PostStatus = "scheduled"
	// StatusPublished опубликована.
	StatusPublished PostStatus = "published"
)

// NewsPost представляет новость с переводами по языкам.
type NewsPost struct {
	ID             int64
	Title          map[string]string
	Body           map[string]string
	SourceURL      string
	SourceLanguage string
	Status         PostStatus
	PubDate        time.Time
	IsNoNewsFound  bool
	ResourceID     *int64
	ManufacturerID *int64
	AuthorID       *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VisibleAt сообщает, видна ли новость обычному читателю в указанный момент.
func (p NewsPost) VisibleAt(now time.Time) bool {
	if p.PubDate.After(now) {
		return false
	}
	return p.Status == StatusPublished || p.Status == StatusScheduled
}

// SourceType определяет способ наполнения источника.
type SourceType string

const (
	// SourceTypeAuto источник обрабатывается автоматическим поиском.
	SourceTypeAuto SourceType = "auto"
	// SourceTypeHybrid источник совмещает автоматический поиск и ручной ввод.
	SourceTypeHybrid SourceType = "hybrid"
	// SourceTypeManual источник наполняется только вручную, поиск его пропускает.
	SourceTypeManual SourceType = "manual"
)

// NewsResource описывает отраслевой источник новостей.
type NewsResource struct {
	ID                 int64
	Name               string
	URL                string
	Language           string
	SourceType         SourceType
	CustomInstructions string
	Description        string
	CreatedAt          time.Time
}

// Manufacturer описывает производителя, по которому ищутся новости.
type Manufacturer struct {
	ID        int64
	Name      string
	Website1  string
	Website2  string
	Website3  string
	Region    string
	CreatedAt time.Time
}

// Websites возвращает непустые сайты производителя.
func (m Manufacturer) Websites() []string {
	out := make([]string, 0, 3)
	for _, w := range []string{m.Website1, m.Website2, m.Website3} {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
