package weather

import (
	"time"

	"github.com/i474232898/weather-signage/internal/common"
)

const (
	hourLabelLayout = "3PM"
	dayLabelLayout  = "Mon"
)

// Normalize maps raw provider output onto a Record. It never fails: missing
// optional fields fall back to defaults (feels-like to the temperature,
// an empty wind direction, no timezone). LocationID, Units and FetchedAt
// are left for the caller.
func Normalize(cur RawConditions, series []RawForecast, hourly bool) Record {
	feelsLike := cur.Temperature
	if cur.FeelsLike != nil {
		feelsLike = *cur.FeelsLike
	}

	rec := Record{
		Current: CurrentConditions{
			Temperature:       cur.Temperature,
			Condition:         cur.Text,
			Icon:              ClassifyIcon(cur.Text),
			Humidity:          cur.Humidity,
			WindSpeed:         cur.WindSpeed,
			WindDirection:     cur.WindDirection,
			FeelsLike:         feelsLike,
			PrecipProbability: cur.PrecipProbability,
			Timezone:          cur.Timezone,
			City:              common.FirstNonEmpty(cur.CityLocalized, cur.CityEnglish),
		},
		Forecast: make([]ForecastEntry, 0, len(series)),
	}

	tz := LoadZone(cur.Timezone, time.UTC)
	for _, f := range series {
		ts := f.Time.In(tz)
		if hourly {
			rec.Forecast = append(rec.Forecast, ForecastEntry{
				Label:       ts.Format(hourLabelLayout),
				Icon:        ClassifyIcon(f.Text),
				Temperature: f.Temperature,
			})
			continue
		}
		rec.Forecast = append(rec.Forecast, ForecastEntry{
			Label:       ts.Format(dayLabelLayout),
			Icon:        ClassifyIcon(f.Text),
			Temperature: f.Max,
			Min:         f.Min,
			Max:         f.Max,
			Daily:       true,
		})
	}

	return rec
}

// LoadZone resolves an IANA zone name, returning fallback when the name is
// empty or unknown to the host's zone database.
func LoadZone(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
