package provider

import (
	"encoding/json"
	"errors"
	"strings"

	"news-backend/internal/domain"
)

// rawNewsPayload — ожидаемая структура ответа модели.
type rawNewsPayload struct {
	News []rawNewsItem `json:"news"`
}

type rawNewsItem struct {
	Title     json.RawMessage `json:"title"`
	Summary   json.RawMessage `json:"summary"`
	URL       string          `json:"url"`
	SourceURL string          `json:"source_url"`
}

// ExtractNewsPayload разбирает текст ответа модели в список новостей.
// Модели не всегда возвращают чистый JSON: пробуем разобрать текст как есть,
// затем содержимое fenced-блока ```json, затем первый JSON-объект,
// найденный сканированием по фигурным скобкам.
func ExtractNewsPayload(raw string) ([]domain.NewsItem, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty model response")
	}

	candidates := []string{raw}
	if fenced := extractFenced(raw); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if scanned := extractBraced(raw); scanned != "" {
		candidates = append(candidates, scanned)
	}

	var lastErr error
	for _, candidate := range candidates {
		var payload rawNewsPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			lastErr = err
			continue
		}
		items := make([]domain.NewsItem, 0, len(payload.News))
		for _, ri := range payload.News {
			item := domain.NewsItem{
				Title:     decodeLocalized(ri.Title),
				Summary:   decodeLocalized(ri.Summary),
				SourceURL: ri.SourceURL,
			}
			if item.SourceURL == "" {
				item.SourceURL = ri.URL
			}
			if len(item.Title) == 0 || item.SourceURL == "" {
				continue
			}
			items = append(items, item)
		}
		return items, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no news payload in model response")
	}
	return nil, lastErr
}

// decodeLocalized принимает либо строку, либо объект {lang: text}.
// Строка без указания языка кладётся под ключ "en".
func decodeLocalized(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for lang, text := range asMap {
			if strings.TrimSpace(text) == "" {
				delete(asMap, lang)
			}
		}
		if len(asMap) == 0 {
			return nil
		}
		return asMap
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == "" {
			return nil
		}
		return map[string]string{"en": asString}
	}
	return nil
}

func extractFenced(raw string) string {
	start := strings.Index(raw, "```")
	if start < 0 {
		return ""
	}
	rest := raw[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// пропускаем метку языка на первой строке блока
		if tag := strings.TrimSpace(rest[:nl]); tag == "json" || tag == "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

// extractBraced находит первый сбалансированный JSON-объект,
// содержащий ключ "news". Строковые литералы при подсчёте скобок пропускаются.
func extractBraced(raw string) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for j := i; j < len(raw); j++ {
			ch := raw[j]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := raw[i : j+1]
					if strings.Contains(candidate, `"news"`) {
						return candidate
					}
					i = j
					j = len(raw)
				}
			}
		}
	}
	return ""
}
