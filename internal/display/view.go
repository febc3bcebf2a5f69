package display

import (
	"time"

	"github.com/i474232898/weather-signage/internal/settings"
	"github.com/i474232898/weather-signage/internal/weather"
)

const (
	nameCurrentLocation = "Current Location"
	nameNoLocation      = "No Location Set"
	nameUnconfigured    = "Configure in Settings"
)

// View is the read-only picture a renderer draws from.
type View struct {
	State

	Location     *weather.LocationConfig `json:"location"`
	LocationName string                  `json:"locationName"`
	UnitLabel    string                  `json:"unitLabel"`
	LocalTime    string                  `json:"localTime,omitempty"`
	LocalDate    string                  `json:"localDate,omitempty"`
	ShowForecast bool                    `json:"showForecast"`
	Background   string                  `json:"background,omitempty"`
	FontColor    string                  `json:"fontColor"`
	UIScale      float64                 `json:"uiScale"`
}

// View returns the current state together with the settings it is shown with.
func (c *Controller) View() View {
	st, s := c.current()
	return buildView(st, s, c.clock.Now())
}

func buildView(st State, s settings.Settings, now time.Time) View {
	v := View{
		State:        st,
		UnitLabel:    s.Units.TemperatureLabel(),
		ShowForecast: weather.ParseForecastRange(string(s.ForecastRange)) != weather.RangeNone,
		FontColor:    s.FontColor,
		UIScale:      s.UIScale,
	}
	if st.CurrentIndex < len(s.Locations) {
		loc := s.Locations[st.CurrentIndex]
		v.Location = &loc
	}
	v.LocationName = displayName(v.Location, st.Weather)

	if st.Weather != nil {
		v.UnitLabel = st.Weather.Units.TemperatureLabel()
		local := now.In(weather.LoadZone(st.Weather.Current.Timezone, time.Local))
		v.LocalTime = local.Format(timeLayout(s.TimeFormat))
		v.LocalDate = local.Format(dateLayout(s.DateFormat))
		if s.Background.Type == "dynamic" {
			v.Background = string(st.Weather.Current.Icon)
		}
	}
	return v
}

func displayName(loc *weather.LocationConfig, rec *weather.Record) string {
	switch {
	case loc == nil:
		return nameUnconfigured
	case loc.Label != "":
		return loc.Label
	case rec != nil && rec.Current.City != "":
		return rec.Current.City
	case loc.Type == weather.LocationAuto:
		return nameCurrentLocation
	case loc.City != "":
		return loc.City
	default:
		return nameNoLocation
	}
}

func timeLayout(format string) string {
	if format == "24h" {
		return "15:04"
	}
	return "3:04 PM"
}

func dateLayout(format string) string {
	switch format {
	case "MMM DD, YYYY":
		return "Jan 02, 2006"
	case "YYYY-MM-DD":
		return "2006-01-02"
	case "DD/MM/YYYY":
		return "02/01/2006"
	default:
		return "1/2/2006"
	}
}
