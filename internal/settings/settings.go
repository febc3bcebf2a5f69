package settings

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-signage/internal/weather"
)

var validate = validator.New()

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Transition is the visual effect used when the display moves to the next location.
type Transition string

const (
	TransitionFade    Transition = "fade"
	TransitionSlide   Transition = "slide"
	TransitionInstant Transition = "instant"
)

// DefaultCycleDuration is used when no positive cycle duration is configured.
const DefaultCycleDuration = 5 * time.Second

// Background describes the backdrop the renderer draws behind the data.
type Background struct {
	Type    string  `json:"type" validate:"omitempty,oneof=dynamic solid image"`
	Color   string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	URL     string  `json:"url,omitempty" validate:"omitempty,url"`
	Opacity float64 `json:"opacity" validate:"gte=0,lte=100"`
}

// Settings is the whole configuration of the signage widget.
type Settings struct {
	Locations []weather.LocationConfig `json:"locations" validate:"dive"`

	// CycleDuration is in seconds; the settings UI offers 5-60.
	CycleDuration int        `json:"cycleDuration" validate:"gte=0"`
	Transition    Transition `json:"transition" validate:"omitempty,oneof=fade slide instant"`

	ForecastRange weather.ForecastRange `json:"forecastRange"`
	ForecastCount int                   `json:"forecastCount" validate:"gte=0,lte=24"`
	Units         weather.Units         `json:"units" validate:"omitempty,oneof=metric imperial"`

	TimeFormat string     `json:"timeFormat" validate:"omitempty,oneof=12h 24h"`
	DateFormat string     `json:"dateFormat"`
	Background Background `json:"background"`
	FontColor  string     `json:"fontColor,omitempty" validate:"omitempty,hexcolor"`
	UIScale    float64    `json:"uiScale" validate:"omitempty,gte=0.5,lte=3"`
}

// Defaults returns the settings a fresh installation starts with.
func Defaults() Settings {
	return Settings{
		Locations:     []weather.LocationConfig{},
		CycleDuration: int(DefaultCycleDuration / time.Second),
		Transition:    TransitionFade,
		ForecastRange: weather.RangeDaily,
		ForecastCount: weather.DefaultForecastCount,
		Units:         weather.UnitsMetric,
		TimeFormat:    "12h",
		DateFormat:    "MMM DD, YYYY",
		Background:    Background{Type: "dynamic", Opacity: 100},
		FontColor:     "#ffffff",
		UIScale:       1,
	}
}

// Validate checks field constraints and location ID uniqueness.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	seen := make(map[string]struct{}, len(s.Locations))
	for i, loc := range s.Locations {
		if loc.ID == "" {
			return fmt.Errorf("%w: location %d: id is required", ErrInvalid, i)
		}
		if _, dup := seen[loc.ID]; dup {
			return fmt.Errorf("%w: location %d: duplicate id %q", ErrInvalid, i, loc.ID)
		}
		seen[loc.ID] = struct{}{}
	}
	return nil
}

// Normalized fills empty fields with defaults and rewrites legacy forecast
// range aliases. It returns a copy.
func (s Settings) Normalized() Settings {
	d := Defaults()
	out := s.Clone()

	if out.Locations == nil {
		out.Locations = []weather.LocationConfig{}
	}
	if out.CycleDuration <= 0 {
		out.CycleDuration = d.CycleDuration
	}
	if out.Transition == "" {
		out.Transition = d.Transition
	}
	out.ForecastRange = weather.ParseForecastRange(string(out.ForecastRange))
	if out.ForecastCount <= 0 {
		out.ForecastCount = d.ForecastCount
	}
	if out.Units != weather.UnitsImperial {
		out.Units = weather.UnitsMetric
	}
	if out.TimeFormat == "" {
		out.TimeFormat = d.TimeFormat
	}
	if out.DateFormat == "" {
		out.DateFormat = d.DateFormat
	}
	if out.Background.Type == "" {
		out.Background = d.Background
	}
	if out.FontColor == "" {
		out.FontColor = d.FontColor
	}
	if out.UIScale == 0 {
		out.UIScale = d.UIScale
	}
	return out
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	if s.Locations != nil {
		out.Locations = make([]weather.LocationConfig, len(s.Locations))
		copy(out.Locations, s.Locations)
	}
	return out
}

// CycleInterval is the delay between display cycles. Any positive number of
// seconds is honoured.
func (s Settings) CycleInterval() time.Duration {
	if s.CycleDuration <= 0 {
		return DefaultCycleDuration
	}
	return time.Duration(s.CycleDuration) * time.Second
}

// Animated reports whether cycles fade or slide instead of cutting.
func (s Settings) Animated() bool {
	return s.Transition != TransitionInstant
}

// FetchOptions returns the parts of the settings that shape a weather fetch.
func (s Settings) FetchOptions() weather.FetchOptions {
	count := s.ForecastCount
	if count <= 0 {
		count = weather.DefaultForecastCount
	}
	return weather.FetchOptions{
		Units: s.Units,
		Range: weather.ParseForecastRange(string(s.ForecastRange)),
		Count: count,
	}
}

// Equal reports whether two settings are identical.
func Equal(a, b Settings) bool {
	return reflect.DeepEqual(a, b)
}
