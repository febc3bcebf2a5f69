package weather

import (
	"strings"
	"time"
)

// Units selects the measurement system requested from providers.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// TemperatureLabel returns the display suffix for temperatures in u.
func (u Units) TemperatureLabel() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// ForecastRange selects which forecast series accompanies current conditions.
type ForecastRange string

const (
	RangeDaily  ForecastRange = "daily"
	RangeHourly ForecastRange = "hourly"
	RangeNone   ForecastRange = "none"
)

// DefaultForecastCount is used when no positive item count is configured.
const DefaultForecastCount = 5

// ParseForecastRange maps stored values, including the legacy "24h", "3d"
// and "7d" aliases, onto a ForecastRange. Anything unrecognised is daily.
func ParseForecastRange(s string) ForecastRange {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly", "24h":
		return RangeHourly
	case "none":
		return RangeNone
	default:
		return RangeDaily
	}
}

// LocationType tells whether a location names a city or follows the device.
type LocationType string

const (
	LocationManual LocationType = "manual"
	LocationAuto   LocationType = "auto"
)

// LocationConfig is one entry of the configured rotation.
// City must be provided for manual locations.
type LocationConfig struct {
	ID    string       `json:"id"`
	Type  LocationType `json:"type" validate:"required,oneof=manual auto"`
	City  string       `json:"city,omitempty" validate:"required_if=Type manual"`
	Label string       `json:"label,omitempty"`
}

// Query builds the provider query for this location. Auto locations, and
// manual ones that lost their city, omit the city so the provider resolves
// the device location itself.
func (l LocationConfig) Query(units Units) Query {
	q := Query{Units: units}
	if l.Type == LocationManual && l.City != "" {
		q.City = l.City
	}
	return q
}

// Key returns a short identifier for logging.
func (l LocationConfig) Key() string {
	if l.Type == LocationAuto || l.City == "" {
		return l.ID + ":auto"
	}
	return l.ID + ":" + l.City
}

// FetchOptions carries the display settings that shape a fetch.
type FetchOptions struct {
	Units Units
	Range ForecastRange
	Count int
}

// Record is the normalized weather view of one location.
// Records are immutable once built; the controller shares them by pointer.
type Record struct {
	// LocationID is the ID of the LocationConfig the record was fetched for.
	LocationID string            `json:"locationId"`
	Units      Units             `json:"units"`
	Current    CurrentConditions `json:"current"`
	Forecast   []ForecastEntry   `json:"forecast"`
	FetchedAt  time.Time         `json:"fetchedAt"` // always UTC
}

// CurrentConditions is the "now" part of a Record.
type CurrentConditions struct {
	Temperature       float64 `json:"temp"`
	Condition         string  `json:"condition"`
	Icon              Icon    `json:"icon"`
	Humidity          float64 `json:"humidity"`
	WindSpeed         float64 `json:"wind"`
	WindDirection     string  `json:"windDir"`
	FeelsLike         float64 `json:"feelsLike"`
	PrecipProbability float64 `json:"precip"`
	Timezone          string  `json:"timezone,omitempty"`
	City              string  `json:"city"`
}

// ForecastEntry is one hourly or daily forecast item. Hourly entries use
// Temperature; daily entries use Min and Max and set Daily.
type ForecastEntry struct {
	Label       string  `json:"day"`
	Icon        Icon    `json:"icon"`
	Temperature float64 `json:"temp"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Daily       bool    `json:"isDaily,omitempty"`
}
