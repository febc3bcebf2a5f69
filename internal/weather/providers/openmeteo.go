package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-signage/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Cities are resolved through a Geocoder; auto locations use the configured
// device coordinates.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	client   *client
	geocoder Geocoder
	device   *Place
}

// NewOpenMeteoProvider creates the provider. device may be nil, in which case
// auto locations fail and the service falls over to the next provider.
func NewOpenMeteoProvider(cfg HTTPClientConfig, geo Geocoder, device *Place) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		client:   newClient("openmeteo", cfg),
		geocoder: newCachingGeocoder(geo),
		device:   device,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) GetConditions(ctx context.Context, q weather.Query) (weather.RawConditions, error) {
	place, err := p.resolve(ctx, q)
	if err != nil {
		return weather.RawConditions{}, err
	}

	values := p.baseValues(place, q.Units)
	values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,wind_direction_10m")
	values.Set("daily", "precipitation_probability_max")
	values.Set("forecast_days", "1")

	var payload struct {
		Timezone string `json:"timezone"`
		Current  struct {
			Temperature   float64 `json:"temperature_2m"`
			Humidity      float64 `json:"relative_humidity_2m"`
			Apparent      float64 `json:"apparent_temperature"`
			WeatherCode   int     `json:"weather_code"`
			WindSpeed     float64 `json:"wind_speed_10m"`
			WindDirection float64 `json:"wind_direction_10m"`
		} `json:"current"`
		Daily struct {
			PrecipProbability []float64 `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := p.client.getJSON(ctx, p.url(values), &payload); err != nil {
		return weather.RawConditions{}, err
	}

	c := payload.Current
	apparent := c.Apparent
	raw := weather.RawConditions{
		Temperature:   c.Temperature,
		FeelsLike:     &apparent,
		Text:          p.describe(c.WeatherCode),
		Humidity:      c.Humidity,
		WindSpeed:     c.WindSpeed,
		WindDirection: compassPoint(c.WindDirection),
		Timezone:      payload.Timezone,
		CityEnglish:   place.Name,
	}
	if len(payload.Daily.PrecipProbability) > 0 {
		raw.PrecipProbability = payload.Daily.PrecipProbability[0]
	}
	return raw, nil
}

func (p *OpenMeteoProvider) GetHourlyForecast(ctx context.Context, q weather.Query, hours int) ([]weather.RawForecast, error) {
	place, err := p.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	values := p.baseValues(place, q.Units)
	values.Set("hourly", "temperature_2m,weather_code")
	values.Set("forecast_hours", strconv.Itoa(max(hours, 1)))

	var payload struct {
		Timezone string `json:"timezone"`
		Hourly   struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			WeatherCode []int     `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := p.client.getJSON(ctx, p.url(values), &payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	if len(h.Temperature) != len(h.Time) || len(h.WeatherCode) != len(h.Time) {
		return nil, fmt.Errorf("openmeteo: malformed hourly series")
	}

	tz := weather.LoadZone(payload.Timezone, time.UTC)
	out := make([]weather.RawForecast, 0, len(h.Time))
	for i := range h.Time {
		ts, err := time.ParseInLocation("2006-01-02T15:04", h.Time[i], tz)
		if err != nil {
			return nil, fmt.Errorf("openmeteo: hourly time %q: %w", h.Time[i], err)
		}
		out = append(out, weather.RawForecast{
			Time:        ts.UTC(),
			Temperature: h.Temperature[i],
			Text:        p.describe(h.WeatherCode[i]),
		})
	}
	return out, nil
}

func (p *OpenMeteoProvider) GetDailyForecast(ctx context.Context, q weather.Query, days int) ([]weather.RawForecast, error) {
	place, err := p.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	values := p.baseValues(place, q.Units)
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	values.Set("forecast_days", strconv.Itoa(min(max(days, 1), 16)))

	var payload struct {
		Timezone string `json:"timezone"`
		Daily    struct {
			Time        []string  `json:"time"`
			WeatherCode []int     `json:"weather_code"`
			TempMax     []float64 `json:"temperature_2m_max"`
			TempMin     []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := p.client.getJSON(ctx, p.url(values), &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	if len(d.WeatherCode) != len(d.Time) || len(d.TempMax) != len(d.Time) || len(d.TempMin) != len(d.Time) {
		return nil, fmt.Errorf("openmeteo: malformed daily series")
	}

	tz := weather.LoadZone(payload.Timezone, time.UTC)
	out := make([]weather.RawForecast, 0, len(d.Time))
	for i := range d.Time {
		date, err := time.ParseInLocation("2006-01-02", d.Time[i], tz)
		if err != nil {
			return nil, fmt.Errorf("openmeteo: daily time %q: %w", d.Time[i], err)
		}
		out = append(out, weather.RawForecast{
			Time: date.Add(12 * time.Hour).UTC(),
			Min:  d.TempMin[i],
			Max:  d.TempMax[i],
			Text: p.describe(d.WeatherCode[i]),
		})
	}
	return out, nil
}

func (p *OpenMeteoProvider) resolve(ctx context.Context, q weather.Query) (Place, error) {
	if q.City == "" {
		if p.device == nil {
			return Place{}, errNoDeviceLocation
		}
		return *p.device, nil
	}
	return p.geocoder.Geocode(ctx, q.City)
}

func (p *OpenMeteoProvider) baseValues(place Place, units weather.Units) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', 4, 64))
	values.Set("timezone", "auto")
	if units == weather.UnitsImperial {
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
	}
	return values
}

func (p *OpenMeteoProvider) url(values url.Values) string {
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

// describe maps a WMO weather interpretation code onto display text.
func (p *OpenMeteoProvider) describe(code int) string {
	desc, ok := wmoDescriptions[code]
	if !ok {
		return "Unknown"
	}
	// Casers are stateful; one per call keeps concurrent fetches apart.
	return cases.Title(language.English).String(desc)
}

// WMO Weather interpretation codes (https://open-meteo.com/en/docs)
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	56: "light freezing drizzle",
	57: "dense freezing drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snow",
	73: "moderate snow",
	75: "heavy snow",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

var _ weather.Provider = (*OpenMeteoProvider)(nil)
