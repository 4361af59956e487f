package discovery

import (
	"fmt"
	"strings"
	"time"

	"news-backend/internal/domain"
)

// promptTemplates — шаблоны поискового промпта на языке источника.
type promptTemplates struct {
	main       string
	period     string
	jsonFormat string
}

var promptsByLanguage = map[string]promptTemplates{
	"ru": {
		main: `Найди на сайте %[1]s (%[2]s) все новости за период с %[3]s по %[4]s включительно.

Используй веб-поиск для поиска новостей. Ищи все статьи, публикации, пресс-релизы, новости, опубликованные на сайте за указанный период. Для каждой найденной новости найди заголовок, текст новости (1-2 абзаца) и ссылку на источник.`,
		period: "Период поиска: с %[1]s по %[2]s включительно.",
		jsonFormat: `Верни ответ СТРОГО в формате JSON (только JSON, без дополнительного текста):

{
  "news": [
    {
      "title": "Заголовок новости на русском",
      "summary": "Текст новости на русском языке (1-2 абзаца). Пиши новость напрямую, как журналист, от третьего лица.",
      "source_url": "https://example.com/news/article"
    }
  ]
}

Если новостей нет, верни: {"news": []}

Верни ТОЛЬКО JSON, без дополнительных комментариев или объяснений.`,
	},
	"en": {
		main: `Find all news on the website %[1]s (%[2]s) for the period from %[3]s to %[4]s inclusive.

Use web search to find news. Look for all articles, publications, press releases, news published on the website for the specified period. For each found news item, find the title, news text (1-2 paragraphs) and source link.`,
		period: "Search period: from %[1]s to %[2]s inclusive.",
		jsonFormat: `Return the answer STRICTLY in JSON format (JSON only, without additional text):

{
  "news": [
    {
      "title": {
        "en": "News title in English",
        "ru": "Заголовок новости на русском"
      },
      "summary": {
        "en": "News text in English (1-2 paragraphs). Write the news directly, as a journalist, in third person.",
        "ru": "Текст новости на русском языке (1-2 абзаца). Пиши новость напрямую, как журналист, от третьего лица."
      },
      "source_url": "https://example.com/news/article"
    }
  ]
}

If no news found, return: {"news": []}

Return ONLY JSON, without additional comments or explanations.`,
	},
	"es": {
		main: `Encuentra todas las noticias en el sitio web %[1]s (%[2]s) para el período del %[3]s al %[4]s inclusive.

Usa la búsqueda web para encontrar noticias. Busca todos los artículos, publicaciones, comunicados de prensa, noticias publicadas en el sitio web para el período especificado. Para cada noticia encontrada, encuentra el título, texto de la noticia (1-2 párrafos) y enlace a la fuente.`,
		period: "Período de búsqueda: del %[1]s al %[2]s inclusive.",
		jsonFormat: `Devuelve la respuesta ESTRICTAMENTE en formato JSON (solo JSON, sin texto adicional):

{
  "news": [
    {
      "title": {
        "es": "Título de la noticia en español",
        "ru": "Заголовок новости на русском"
      },
      "summary": {
        "es": "Texto de la noticia en español (1-2 párrafos). Escribe la noticia directamente, como periodista, en tercera persona.",
        "ru": "Текст новости на русском языке (1-2 абзаца). Пиши новость напрямую, как журналист, от третьего лица."
      },
      "source_url": "https://example.com/news/article"
    }
  ]
}

Si no se encuentran noticias, devuelve: {"news": []}

Devuelve SOLO JSON, sin comentarios adicionales o explicaciones.`,
	},
	"de": {
		main: `Finde alle Nachrichten auf der Website %[1]s (%[2]s) für den Zeitraum vom %[3]s bis %[4]s einschließlich.

Verwende die Websuche, um Nachrichten zu finden. Suche nach allen Artikeln, Veröffentlichungen, Pressemitteilungen, Nachrichten, die auf der Website für den angegebenen Zeitraum veröffentlicht wurden. Für jede gefundene Nachricht finde den Titel, den Nachrichtentext (1-2 Absätze) und den Quelllink.`,
		period: "Suchzeitraum: vom %[1]s bis %[2]s einschließlich.",
		jsonFormat: `Gib die Antwort STRENG im JSON-Format zurück (nur JSON, ohne zusätzlichen Text):

{
  "news": [
    {
      "title": {
        "de": "Nachrichtentitel auf Deutsch",
        "ru": "Заголовок новости на русском"
      },
      "summary": {
        "de": "Nachrichtentext auf Deutsch (1-2 Absätze). Schreibe die Nachricht direkt, als Journalist, in der dritten Person.",
        "ru": "Текст новости на русском языке (1-2 абзаца). Пиши новость напрямую, как журналист, от третьего лица."
      },
      "source_url": "https://example.com/news/article"
    }
  ]
}

Wenn keine Nachrichten gefunden wurden, gib zurück: {"news": []}

Gib NUR JSON zurück, ohne zusätzliche Kommentare oder Erklärungen.`,
	},
	"pt": {
		main: `Encontre todas as notícias no site %[1]s (%[2]s) para o período de %[3]s a %[4]s inclusive.

Use a pesquisa na web para encontrar notícias. Procure por todos os artigos, publicações, comunicados de imprensa, notícias publicadas no site para o período especificado. Para cada notícia encontrada, encontre o título, texto da notícia (1-2 parágrafos) e link da fonte.`,
		period: "Período de pesquisa: de %[1]s a %[2]s inclusive.",
		jsonFormat: `Retorne a resposta ESTRITAMENTE em formato JSON (apenas JSON, sem texto adicional):

{
  "news": [
    {
      "title": {
        "pt": "Título da notícia em português",
        "ru": "Заголовок новости на русском"
      },
      "summary": {
        "pt": "Texto da notícia em português (1-2 parágrafos). Escreva a notícia diretamente, como jornalista, na terceira pessoa.",
        "ru": "Текст новости на русском языке (1-2 абзаца). Пиши новость напрямую, как журналист, от третьего лица."
      },
      "source_url": "https://example.com/news/article"
    }
  ]
}

Se nenhuma notícia for encontrada, retorne: {"news": []}

Retorne APENAS JSON, sem comentários adicionais ou explicações.`,
	},
}

// templatesFor возвращает шаблоны языка, по умолчанию английские.
func templatesFor(language string) promptTemplates {
	if t, ok := promptsByLanguage[language]; ok {
		return t
	}
	return promptsByLanguage["en"]
}

// formatPeriodDate форматирует дату периода: русские источники
// привыкли к дд.мм.гггг, остальные получают ISO-формат.
func formatPeriodDate(d time.Time, language string) string {
	if language == "ru" {
		return d.Format("02.01.2006")
	}
	return d.Format("2006-01-02")
}

// BuildResourcePrompt формирует промпт поиска новостей источника
// на его языке. Кастомные инструкции источника заменяют основной текст,
// период и требование JSON добавляются всегда.
func BuildResourcePrompt(resource domain.NewsResource, startDate, endDate time.Time) string {
	language := resource.Language
	if language == "" {
		language = "en"
	}
	templates := templatesFor(language)
	startStr := formatPeriodDate(startDate, language)
	endStr := formatPeriodDate(endDate, language)

	if instructions := strings.TrimSpace(resource.CustomInstructions); instructions != "" {
		return fmt.Sprintf("%s\n\n%s\n%s",
			instructions,
			fmt.Sprintf(templates.period, startStr, endStr),
			templates.jsonFormat,
		)
	}
	return fmt.Sprintf("%s\n%s",
		fmt.Sprintf(templates.main, resource.URL, resource.Name, startStr, endStr),
		templates.jsonFormat,
	)
}

// BuildManufacturerPrompt формирует промпт поиска новостей о производителе.
// Производители международные, поэтому промпт всегда английский.
func BuildManufacturerPrompt(m domain.Manufacturer, startDate, endDate time.Time) string {
	templates := templatesFor("en")
	startStr := formatPeriodDate(startDate, "en")
	endStr := formatPeriodDate(endDate, "en")
	websites := m.Websites()

	if len(websites) == 0 {
		return fmt.Sprintf(`Find all news about manufacturer %s for the period from %s to %s inclusive.

Use web search to find news. Look for all articles, publications, press releases, news about the manufacturer published on industry publications, news portals, press releases, or other sources for the specified period. For each found news item, find the title, news text (1-2 paragraphs) and source link.

%s`, m.Name, startStr, endStr, templates.jsonFormat)
	}
	return fmt.Sprintf(`Find all news about manufacturer %s for the period from %s to %s inclusive.

Official manufacturer websites: %s

Use web search to find news. Look for all articles, publications, press releases, news about the manufacturer published on these websites or other industry sources for the specified period. For each found news item, find the title, news text (1-2 paragraphs) and source link.

%s`, m.Name, startStr, endStr, strings.Join(websites, ", "), templates.jsonFormat)
}

// extractDomain вырезает хост из URL источника для ограничения веб-поиска.
// Префикс www. отбрасывается.
func extractDomain(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "www.")
	return s
}
