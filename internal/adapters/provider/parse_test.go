package provider

import (
	"testing"
)

func TestExtractNewsPayloadPlainJSON(t *testing.T) {
	raw := `{"news":[{"title":{"ru":"Новый станок","en":"New machine"},"summary":{"en":"Summary"},"url":"https://example.com/a"}]}`
	items, err := ExtractNewsPayload(raw)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ожидали 1 новость, получили %d", len(items))
	}
	if items[0].Title["ru"] != "Новый станок" {
		t.Fatalf("неверный заголовок: %+v", items[0].Title)
	}
	if items[0].SourceURL != "https://example.com/a" {
		t.Fatalf("неверный URL: %s", items[0].SourceURL)
	}
}

func TestExtractNewsPayloadFencedBlock(t *testing.T) {
	raw := "Вот результаты поиска:\n```json\n{\"news\":[{\"title\":\"Plain title\",\"url\":\"https://example.com/b\"}]}\n```\nКонец."
	items, err := ExtractNewsPayload(raw)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ожидали 1 новость, получили %d", len(items))
	}
	if items[0].Title["en"] != "Plain title" {
		t.Fatalf("строковый заголовок должен попасть под ключ en: %+v", items[0].Title)
	}
}

func TestExtractNewsPayloadBraceScan(t *testing.T) {
	raw := `I found the following: {"news":[{"title":"Scan","source_url":"https://example.com/c"}]} hope this helps`
	items, err := ExtractNewsPayload(raw)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 1 || items[0].SourceURL != "https://example.com/c" {
		t.Fatalf("неверный результат: %+v", items)
	}
}

func TestExtractNewsPayloadEmptyList(t *testing.T) {
	items, err := ExtractNewsPayload(`{"news":[]}`)
	if err != nil {
		t.Fatalf("пустой список — не ошибка: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("ожидали пустой список, получили %d", len(items))
	}
}

func TestExtractNewsPayloadSkipsIncomplete(t *testing.T) {
	raw := `{"news":[{"title":"Без ссылки"},{"summary":"Без заголовка","url":"https://example.com/d"},{"title":"Полная","url":"https://example.com/e"}]}`
	items, err := ExtractNewsPayload(raw)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ожидали 1 валидную новость, получили %d", len(items))
	}
	if items[0].SourceURL != "https://example.com/e" {
		t.Fatalf("осталась не та новость: %+v", items[0])
	}
}

func TestExtractNewsPayloadGarbage(t *testing.T) {
	if _, err := ExtractNewsPayload("модель ответила прозой без JSON"); err == nil {
		t.Fatal("ожидали ошибку разбора")
	}
	if _, err := ExtractNewsPayload("   "); err == nil {
		t.Fatal("ожидали ошибку на пустом ответе")
	}
}

func TestExtractNewsPayloadStringsInsideBraces(t *testing.T) {
	// фигурные скобки внутри строковых литералов не ломают сканер
	raw := `prefix {"news":[{"title":"Скобки {} в тексте","url":"https://example.com/f"}]}`
	items, err := ExtractNewsPayload(raw)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ожидали 1 новость, получили %d", len(items))
	}
}
