package weather

import "github.com/i474232898/weather-signage/internal/common"

// Icon is the small fixed set of glyph keys a renderer maps to artwork.
type Icon string

const (
	IconStorm       Icon = "storm"
	IconRain        Icon = "rain"
	IconSnow        Icon = "snow"
	IconFog         Icon = "fog"
	IconPartly      Icon = "partly"
	IconCloud       Icon = "cloud"
	IconSun         Icon = "sun"
	IconThermometer Icon = "thermometer"
)

// iconRules is evaluated top to bottom; the first rule whose substrings
// appear in the condition text wins. "partly" sits above the generic cloud
// rule so "Partly cloudy" keeps its own icon.
var iconRules = []struct {
	icon Icon
	subs []string
}{
	{IconStorm, []string{"storm", "thunder"}},
	{IconRain, []string{"rain", "drizzle"}},
	{IconSnow, []string{"snow", "flurry", "flurries"}},
	{IconFog, []string{"fog", "mist"}},
	{IconPartly, []string{"partly"}},
	{IconCloud, []string{"cloud", "overcast"}},
	{IconSun, []string{"clear", "sun"}},
}

// ClassifyIcon derives the icon key for a free-text condition description.
func ClassifyIcon(condition string) Icon {
	if condition == "" {
		return IconThermometer
	}
	for _, r := range iconRules {
		if common.HasAnyFold(condition, r.subs...) {
			return r.icon
		}
	}
	return IconThermometer
}
