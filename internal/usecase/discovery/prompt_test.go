package discovery

import (
	"strings"
	"testing"
	"time"

	"news-backend/internal/domain"
)

func TestBuildResourcePromptRussian(t *testing.T) {
	resource := domain.NewsResource{
		Name:     "Станконовости",
		URL:      "https://www.stanki.example/news",
		Language: "ru",
	}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	prompt := BuildResourcePrompt(resource, start, end)
	if !strings.Contains(prompt, "01.08.2026") || !strings.Contains(prompt, "31.08.2026") {
		t.Fatalf("русский промпт использует формат дд.мм.гггг: %s", prompt)
	}
	if !strings.Contains(prompt, "https://www.stanki.example/news") {
		t.Fatalf("промпт должен содержать URL источника")
	}
	if !strings.Contains(prompt, `"news"`) {
		t.Fatalf("промпт должен требовать JSON с ключом news")
	}
}

func TestBuildResourcePromptFallsBackToEnglish(t *testing.T) {
	resource := domain.NewsResource{
		Name:     "Nieuwsbron",
		URL:      "https://nieuws.example",
		Language: "nl",
	}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	prompt := BuildResourcePrompt(resource, start, end)
	if !strings.Contains(prompt, "Find all news on the website") {
		t.Fatalf("неподдерживаемый язык должен давать английский промпт: %s", prompt)
	}
	if !strings.Contains(prompt, "2026-08-01") || !strings.Contains(prompt, "2026-08-31") {
		t.Fatalf("нерусские промпты используют ISO-даты: %s", prompt)
	}
}

func TestBuildResourcePromptCustomInstructions(t *testing.T) {
	resource := domain.NewsResource{
		Name:               "Custom Source",
		URL:                "https://custom.example",
		Language:           "en",
		CustomInstructions: "Search only the press-release section.",
	}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	prompt := BuildResourcePrompt(resource, start, end)
	if !strings.HasPrefix(prompt, "Search only the press-release section.") {
		t.Fatalf("кастомные инструкции должны заменять основной текст: %s", prompt)
	}
	if strings.Contains(prompt, "Find all news on the website") {
		t.Fatalf("стандартный текст не должен присутствовать при кастомных инструкциях")
	}
	if !strings.Contains(prompt, "Search period:") || !strings.Contains(prompt, `"news"`) {
		t.Fatalf("период и требование JSON добавляются всегда: %s", prompt)
	}
}

func TestBuildManufacturerPrompt(t *testing.T) {
	m := domain.Manufacturer{
		Name:     "Acme Machines",
		Website1: "https://www.acme.example",
		Website2: "https://acme-tools.example",
	}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	prompt := BuildManufacturerPrompt(m, start, end)
	if !strings.Contains(prompt, "Acme Machines") {
		t.Fatalf("промпт должен содержать имя производителя")
	}
	if !strings.Contains(prompt, "https://www.acme.example, https://acme-tools.example") {
		t.Fatalf("промпт должен перечислять сайты производителя: %s", prompt)
	}
}

func TestBuildManufacturerPromptWithoutWebsites(t *testing.T) {
	m := domain.Manufacturer{Name: "No Site GmbH"}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	prompt := BuildManufacturerPrompt(m, start, end)
	if !strings.Contains(prompt, "industry publications") {
		t.Fatalf("без сайтов поиск идёт по отраслевым источникам: %s", prompt)
	}
	if strings.Contains(prompt, "Official manufacturer websites") {
		t.Fatalf("список сайтов не должен присутствовать: %s", prompt)
	}
}

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/news?page=1", "example.com"},
		{"http://example.com", "example.com"},
		{"example.com/path", "example.com"},
		{"https://sub.example.co.uk/a#b", "sub.example.co.uk"},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := extractDomain(tc.in); got != tc.want {
			t.Fatalf("extractDomain(%q) = %q, ожидали %q", tc.in, got, tc.want)
		}
	}
}
