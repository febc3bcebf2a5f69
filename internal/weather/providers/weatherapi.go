package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-signage/internal/weather"
)

// weatherAPIMaxDays is the longest forecast WeatherAPI.com serves.
const weatherAPIMaxDays = 14

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
// Queries without a city use the "auto:ip" lookup so the provider resolves
// the device location on every call.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *client
	now     func() time.Time
}

func NewWeatherAPIProvider(cfg HTTPClientConfig, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		client:  newClient("weatherapi", cfg),
		now:     time.Now,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

type weatherAPIPayload struct {
	Location struct {
		Name           string `json:"name"`
		TzID           string `json:"tz_id"`
		LocaltimeEpoch int64  `json:"localtime_epoch"`
	} `json:"location"`
	Current struct {
		TempC      float64             `json:"temp_c"`
		TempF      float64             `json:"temp_f"`
		FeelsLikeC float64             `json:"feelslike_c"`
		FeelsLikeF float64             `json:"feelslike_f"`
		Humidity   float64             `json:"humidity"`
		WindKph    float64             `json:"wind_kph"`
		WindMph    float64             `json:"wind_mph"`
		WindDir    string              `json:"wind_dir"`
		Condition  weatherAPICondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			DateEpoch int64 `json:"date_epoch"`
			Day       struct {
				MaxTempC          float64             `json:"maxtemp_c"`
				MaxTempF          float64             `json:"maxtemp_f"`
				MinTempC          float64             `json:"mintemp_c"`
				MinTempF          float64             `json:"mintemp_f"`
				DailyChanceOfRain float64             `json:"daily_chance_of_rain"`
				Condition         weatherAPICondition `json:"condition"`
			} `json:"day"`
			Hour []struct {
				TimeEpoch int64               `json:"time_epoch"`
				TempC     float64             `json:"temp_c"`
				TempF     float64             `json:"temp_f"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) GetConditions(ctx context.Context, q weather.Query) (weather.RawConditions, error) {
	payload, err := p.forecast(ctx, q, 1)
	if err != nil {
		return weather.RawConditions{}, err
	}

	imperial := q.Units == weather.UnitsImperial
	c := payload.Current

	raw := weather.RawConditions{
		Temperature:   pick(imperial, c.TempF, c.TempC),
		Text:          c.Condition.Text,
		Humidity:      c.Humidity,
		WindSpeed:     pick(imperial, c.WindMph, c.WindKph),
		WindDirection: c.WindDir,
		Timezone:      payload.Location.TzID,
		CityEnglish:   payload.Location.Name,
	}
	feels := pick(imperial, c.FeelsLikeF, c.FeelsLikeC)
	raw.FeelsLike = &feels

	if len(payload.Forecast.ForecastDay) > 0 {
		raw.PrecipProbability = payload.Forecast.ForecastDay[0].Day.DailyChanceOfRain
	}

	return raw, nil
}

func (p *WeatherAPIProvider) GetHourlyForecast(ctx context.Context, q weather.Query, hours int) ([]weather.RawForecast, error) {
	// Hours run past midnight, so ask for one extra day.
	days := hours/24 + 2
	payload, err := p.forecast(ctx, q, days)
	if err != nil {
		return nil, err
	}

	imperial := q.Units == weather.UnitsImperial
	from := p.now().Truncate(time.Hour).Unix()

	out := make([]weather.RawForecast, 0, hours)
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			if h.TimeEpoch < from {
				continue
			}
			out = append(out, weather.RawForecast{
				Time:        time.Unix(h.TimeEpoch, 0).UTC(),
				Temperature: pick(imperial, h.TempF, h.TempC),
				Text:        h.Condition.Text,
			})
		}
	}
	return out, nil
}

func (p *WeatherAPIProvider) GetDailyForecast(ctx context.Context, q weather.Query, days int) ([]weather.RawForecast, error) {
	payload, err := p.forecast(ctx, q, days)
	if err != nil {
		return nil, err
	}

	imperial := q.Units == weather.UnitsImperial

	out := make([]weather.RawForecast, 0, len(payload.Forecast.ForecastDay))
	for _, d := range payload.Forecast.ForecastDay {
		out = append(out, weather.RawForecast{
			// date_epoch is midnight UTC of the local date; noon keeps the
			// weekday stable in any timezone.
			Time: time.Unix(d.DateEpoch, 0).UTC().Add(12 * time.Hour),
			Min:  pick(imperial, d.Day.MinTempF, d.Day.MinTempC),
			Max:  pick(imperial, d.Day.MaxTempF, d.Day.MaxTempC),
			Text: d.Day.Condition.Text,
		})
	}
	return out, nil
}

func (p *WeatherAPIProvider) forecast(ctx context.Context, q weather.Query, days int) (weatherAPIPayload, error) {
	if p.apiKey == "" {
		return weatherAPIPayload{}, fmt.Errorf("weatherapi api key is not configured")
	}

	if days < 1 {
		days = 1
	}
	if days > weatherAPIMaxDays {
		days = weatherAPIMaxDays
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("days", strconv.Itoa(days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")
	// WeatherAPI uses "q" for location; "auto:ip" resolves the caller.
	if q.City != "" {
		values.Set("q", q.City)
	} else {
		values.Set("q", "auto:ip")
	}

	var payload weatherAPIPayload
	u := fmt.Sprintf("%s/forecast.json?%s", p.baseURL, values.Encode())
	if err := p.client.getJSON(ctx, u, &payload); err != nil {
		return weatherAPIPayload{}, err
	}
	return payload, nil
}

func pick(imperial bool, imperialValue, metricValue float64) float64 {
	if imperial {
		return imperialValue
	}
	return metricValue
}

var _ weather.Provider = (*WeatherAPIProvider)(nil)
