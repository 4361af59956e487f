package domain

import (
	"testing"
	"time"
)

func TestParseProvider(t *testing.T) {
	cases := map[string]Provider{
		"grok":      ProviderGrok,
		"anthropic": ProviderAnthropic,
		"gemini":    ProviderGemini,
		"openai":    ProviderOpenAI,
		"auto":      ProviderAuto,
		"":          ProviderAuto,
		"deepseek":  ProviderAuto,
		"GROK":      ProviderAuto,
	}
	for raw, want := range cases {
		if got := ParseProvider(raw); got != want {
			t.Fatalf("ParseProvider(%q) = %s, ожидали %s", raw, got, want)
		}
	}
}

func TestCallCost(t *testing.T) {
	snap := ConfigSnapshot{Prices: map[Provider]ProviderPrices{
		ProviderGrok:      {Input: 3.0, Output: 15.0},
		ProviderAnthropic: {Input: 0.80, Output: 4.0},
	}}

	// 1000*3/1M + 500*15/1M = 0.0105
	if got := snap.CallCost(ProviderGrok, 1000, 500); got != 0.0105 {
		t.Fatalf("ожидали 0.0105, получили %v", got)
	}
	// округление до 6 знаков: 4.8e-6 превращается в 5e-6
	if got := snap.CallCost(ProviderAnthropic, 1, 1); got != 0.000005 {
		t.Fatalf("ожидали 0.000005, получили %v", got)
	}
	// провайдер без тарифа стоит ноль
	if got := snap.CallCost(ProviderOpenAI, 1000, 1000); got != 0 {
		t.Fatalf("ожидали 0, получили %v", got)
	}
	if got := snap.CallCost(ProviderGrok, 0, 0); got != 0 {
		t.Fatalf("нулевые токены стоят ноль, получили %v", got)
	}
}

func TestRunEfficiency(t *testing.T) {
	run := DiscoveryRun{NewsFound: 20, EstimatedCostUSD: 0.5}
	if got := run.Efficiency(); got != 40 {
		t.Fatalf("ожидали 40 новостей на доллар, получили %v", got)
	}
	// нулевая стоимость — нулевая эффективность, а не деление на ноль
	zero := DiscoveryRun{NewsFound: 20}
	if got := zero.Efficiency(); got != 0 {
		t.Fatalf("ожидали 0, получили %v", got)
	}
}

func TestRunAddCall(t *testing.T) {
	var run DiscoveryRun
	run.AddCall(DiscoveryAPICall{Provider: ProviderGrok, InputTokens: 100, OutputTokens: 50, CostUSD: 0.001, Success: true})
	run.AddCall(DiscoveryAPICall{Provider: ProviderGrok, InputTokens: 200, OutputTokens: 10, CostUSD: 0.002})
	run.AddCall(DiscoveryAPICall{Provider: ProviderAnthropic, InputTokens: 10, OutputTokens: 5, CostUSD: 0.0001, Success: true})

	if run.TotalRequests != 3 || run.TotalInputTokens != 310 || run.TotalOutputTokens != 65 {
		t.Fatalf("неверные агрегаты: %+v", run)
	}
	grok := run.ProviderStats[ProviderGrok]
	if grok.Requests != 2 || grok.Errors != 1 || grok.InputTokens != 300 {
		t.Fatalf("неверная статистика grok: %+v", grok)
	}
	anthropic := run.ProviderStats[ProviderAnthropic]
	if anthropic.Requests != 1 || anthropic.Errors != 0 {
		t.Fatalf("неверная статистика anthropic: %+v", anthropic)
	}
}

func TestSnapshotIsValueCopy(t *testing.T) {
	cfg := DefaultSearchConfiguration()
	snap := cfg.Snapshot()

	cfg.Models[ProviderGrok] = "grok-other"
	cfg.FallbackChain[0] = ProviderOpenAI
	cfg.Prices[ProviderGrok] = ProviderPrices{Input: 999, Output: 999}

	if snap.Models[ProviderGrok] != "grok-4-1-fast" {
		t.Fatalf("снимок не должен меняться вслед за конфигурацией: %s", snap.Models[ProviderGrok])
	}
	if snap.FallbackChain[0] != ProviderAnthropic {
		t.Fatalf("цепочка снимка изменилась: %v", snap.FallbackChain)
	}
	if snap.Prices[ProviderGrok].Input != 3.0 {
		t.Fatalf("цены снимка изменились: %+v", snap.Prices[ProviderGrok])
	}
}

func TestSnapshotDefaults(t *testing.T) {
	var snap ConfigSnapshot
	if snap.Timeout() != 120*time.Second {
		t.Fatalf("таймаут по умолчанию 120с, получили %v", snap.Timeout())
	}
	if snap.RequestDelay() != 0 {
		t.Fatalf("пауза по умолчанию 0, получили %v", snap.RequestDelay())
	}
}

func TestStatusPercent(t *testing.T) {
	if got := (DiscoveryStatus{Processed: 3, Total: 12}).Percent(); got != 25 {
		t.Fatalf("ожидали 25, получили %d", got)
	}
	if got := (DiscoveryStatus{}).Percent(); got != 0 {
		t.Fatalf("пустой статус даёт 0, получили %d", got)
	}
	if got := (DiscoveryStatus{Processed: 12, Total: 12}).Percent(); got != 100 {
		t.Fatalf("ожидали 100, получили %d", got)
	}
}

func TestStatisticsRecalculate(t *testing.T) {
	stats := TargetStatistics{
		TotalSearches:  10,
		TotalNewsFound: 25,
		TotalNoNews:    2,
		TotalErrors:    1,
		News30Days:     5,
		News90Days:     15,
	}
	stats.Recalculate()
	if stats.SuccessRate != 70 {
		t.Fatalf("ожидали успешность 70%%, получили %v", stats.SuccessRate)
	}
	if stats.ErrorRate != 10 {
		t.Fatalf("ожидали долю ошибок 10%%, получили %v", stats.ErrorRate)
	}
	if stats.AvgNewsPerSearch != 2.5 {
		t.Fatalf("ожидали 2.5 новости на поиск, получили %v", stats.AvgNewsPerSearch)
	}
	if stats.RankingScore <= 0 {
		t.Fatalf("рейтинг должен быть положительным: %v", stats.RankingScore)
	}

	var empty TargetStatistics
	empty.Recalculate()
	if empty.SuccessRate != 0 || empty.RankingScore != 0 {
		t.Fatalf("пустая статистика даёт нули: %+v", empty)
	}
}
