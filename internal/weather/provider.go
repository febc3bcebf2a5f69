package weather

import (
	"context"
	"time"
)

// Query identifies what to ask a provider for. An empty City means
// "use the device location".
type Query struct {
	Units Units
	City  string
}

// RawConditions is a provider's current-conditions answer before normalization.
type RawConditions struct {
	Temperature       float64
	FeelsLike         *float64
	Text              string
	Humidity          float64
	WindSpeed         float64
	WindDirection     string
	PrecipProbability float64
	Timezone          string
	CityLocalized     string
	CityEnglish       string
}

// RawForecast is one provider forecast item. Hourly items fill Temperature,
// daily items fill Min and Max.
type RawForecast struct {
	Time        time.Time
	Temperature float64
	Min         float64
	Max         float64
	Text        string
}

// Provider abstracts a weather data source (e.g. WeatherAPI.com, Open-Meteo).
// Series calls return at least the requested number of items when the
// source has them; callers truncate.
type Provider interface {
	Name() string
	GetConditions(ctx context.Context, q Query) (RawConditions, error)
	GetHourlyForecast(ctx context.Context, q Query, hours int) ([]RawForecast, error)
	GetDailyForecast(ctx context.Context, q Query, days int) ([]RawForecast, error)
}
