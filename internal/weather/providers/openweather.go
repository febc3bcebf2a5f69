package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-signage/internal/weather"
)

const (
	// openWeatherSlot is the step of the free 5 day forecast.
	openWeatherSlot = 3 * time.Hour

	// openWeatherMaxSlots covers the whole five days.
	openWeatherMaxSlots = 40
)

// OpenWeatherProvider implements the weather.Provider interface for
// OpenWeatherMap. The free tier has no hourly or daily series, so hourly
// items come in 3 hour steps and daily items are folded from those steps.
// Auto locations use the configured device coordinates.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *client
	device  *Place
}

func NewOpenWeatherProvider(cfg HTTPClientConfig, apiKey string, device *Place) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		client:  newClient("openweather", cfg),
		device:  device,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type openWeatherCurrent struct {
	Name     string `json:"name"`
	Timezone int    `json:"timezone"`
	Main     struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []openWeatherCondition `json:"weather"`
}

type openWeatherForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Pop     float64                `json:"pop"`
		Weather []openWeatherCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

func (p *OpenWeatherProvider) GetConditions(ctx context.Context, q weather.Query) (weather.RawConditions, error) {
	values, err := p.values(q)
	if err != nil {
		return weather.RawConditions{}, err
	}

	var payload openWeatherCurrent
	if err := p.client.getJSON(ctx, p.baseURL+"/weather?"+values.Encode(), &payload); err != nil {
		return weather.RawConditions{}, err
	}

	feels := payload.Main.FeelsLike
	speed := payload.Wind.Speed
	if q.Units != weather.UnitsImperial {
		// Metric wind comes in m/s; the display shows km/h.
		speed *= 3.6
	}

	raw := weather.RawConditions{
		Temperature:   payload.Main.Temp,
		FeelsLike:     &feels,
		Text:          describeOpenWeather(payload.Weather),
		Humidity:      payload.Main.Humidity,
		WindSpeed:     speed,
		WindDirection: compassPoint(payload.Wind.Deg),
		Timezone:      etcZone(payload.Timezone),
		CityEnglish:   payload.Name,
	}

	// The current endpoint has no precipitation chance; the first slot has.
	if next, err := p.slots(ctx, q, 1); err == nil && len(next.List) > 0 {
		raw.PrecipProbability = next.List[0].Pop * 100
	}
	return raw, nil
}

func (p *OpenWeatherProvider) GetHourlyForecast(ctx context.Context, q weather.Query, hours int) ([]weather.RawForecast, error) {
	n := int((time.Duration(hours)*time.Hour + openWeatherSlot - 1) / openWeatherSlot)
	payload, err := p.slots(ctx, q, n)
	if err != nil {
		return nil, err
	}
	return payload.raw(), nil
}

func (p *OpenWeatherProvider) GetDailyForecast(ctx context.Context, q weather.Query, days int) ([]weather.RawForecast, error) {
	payload, err := p.slots(ctx, q, openWeatherMaxSlots)
	if err != nil {
		return nil, err
	}

	zone := time.FixedZone("", payload.City.Timezone)
	out := weather.AggregateDaily(payload.raw(), zone)
	if len(out) > days {
		out = out[:days]
	}
	return out, nil
}

func (p *OpenWeatherProvider) slots(ctx context.Context, q weather.Query, n int) (openWeatherForecast, error) {
	values, err := p.values(q)
	if err != nil {
		return openWeatherForecast{}, err
	}
	values.Set("cnt", strconv.Itoa(min(max(n, 1), openWeatherMaxSlots)))

	var payload openWeatherForecast
	if err := p.client.getJSON(ctx, p.baseURL+"/forecast?"+values.Encode(), &payload); err != nil {
		return openWeatherForecast{}, err
	}
	return payload, nil
}

func (f openWeatherForecast) raw() []weather.RawForecast {
	out := make([]weather.RawForecast, 0, len(f.List))
	for _, item := range f.List {
		out = append(out, weather.RawForecast{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Text:        describeOpenWeather(item.Weather),
		})
	}
	return out
}

func (p *OpenWeatherProvider) values(q weather.Query) (url.Values, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", string(q.Units))
	if q.City != "" {
		values.Set("q", q.City)
		return values, nil
	}

	if p.device == nil {
		return nil, errNoDeviceLocation
	}
	values.Set("lat", strconv.FormatFloat(p.device.Latitude, 'f', 4, 64))
	values.Set("lon", strconv.FormatFloat(p.device.Longitude, 'f', 4, 64))
	return values, nil
}

func describeOpenWeather(items []openWeatherCondition) string {
	if len(items) == 0 {
		return ""
	}
	if items[0].Description != "" {
		return items[0].Description
	}
	return items[0].Main
}

// etcZone maps a UTC offset in seconds onto an IANA Etc zone. Etc zones only
// exist for whole hours, so other offsets yield "".
func etcZone(offset int) string {
	if offset%3600 != 0 {
		return ""
	}
	h := offset / 3600
	switch {
	case h == 0:
		return "UTC"
	case h < -12 || h > 14:
		return ""
	default:
		// Etc zones use inverted signs: UTC+2 is Etc/GMT-2.
		return fmt.Sprintf("Etc/GMT%+d", -h)
	}
}
