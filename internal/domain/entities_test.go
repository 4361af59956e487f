package domain

import (
	"testing"
	"time"
)

func TestNewsPostVisibleAt(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		post    NewsPost
		visible bool
	}{
		{"опубликована в прошлом", NewsPost{Status: StatusPublished, PubDate: now.Add(-time.Hour)}, true},
		{"опубликована в будущем", NewsPost{Status: StatusPublished, PubDate: now.Add(time.Hour)}, false},
		{"запланирована с наступившей датой", NewsPost{Status: StatusScheduled, PubDate: now.Add(-time.Minute)}, true},
		{"запланирована на будущее", NewsPost{Status: StatusScheduled, PubDate: now.Add(time.Minute)}, false},
		{"черновик", NewsPost{Status: StatusDraft, PubDate: now.Add(-time.Hour)}, false},
		{"дата ровно сейчас", NewsPost{Status: StatusPublished, PubDate: now}, true},
	}
	for _, tc := range cases {
		if got := tc.post.VisibleAt(now); got != tc.visible {
			t.Fatalf("%s: VisibleAt = %v, ожидали %v", tc.name, got, tc.visible)
		}
	}
}

func TestManufacturerWebsites(t *testing.T) {
	m := Manufacturer{Website1: "https://a.example", Website3: "https://c.example"}
	got := m.Websites()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://c.example" {
		t.Fatalf("пустые сайты должны пропускаться: %v", got)
	}
	if len((Manufacturer{}).Websites()) != 0 {
		t.Fatal("без сайтов список пуст")
	}
}
