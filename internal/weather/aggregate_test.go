package weather

import (
	"testing"
	"time"
)

func TestAggregateDailyGroupsByLocalDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) // 21:00 in Tokyo

	slots := []RawForecast{
		{Time: base, Temperature: 20, Text: "Clear"},
		{Time: base.Add(3 * time.Hour), Temperature: 17, Text: "Rain"}, // next day in Tokyo
		{Time: base.Add(6 * time.Hour), Temperature: 22, Text: "Clear"},
		{Time: base.Add(9 * time.Hour), Temperature: 25, Text: "Rain"},
	}

	days := AggregateDaily(slots, tokyo)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Min != 20 || days[0].Max != 20 || days[0].Text != "Clear" {
		t.Fatalf("unexpected first day %#v", days[0])
	}
	second := days[1]
	if second.Min != 17 || second.Max != 25 || second.Temperature != 25 {
		t.Fatalf("unexpected second day %#v", second)
	}
	if second.Text != "Rain" {
		t.Fatalf("expected first description to reach the top count, got %q", second.Text)
	}
	if got := second.Time.In(tokyo); got.Day() != 2 || got.Hour() != 12 {
		t.Fatalf("expected noon of June 2 in Tokyo, got %v", got)
	}
}

func TestAggregateDailyEmpty(t *testing.T) {
	if got := AggregateDaily(nil, nil); len(got) != 0 {
		t.Fatalf("expected no days, got %#v", got)
	}
}
