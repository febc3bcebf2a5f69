package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
)

// ErrLocationNotFound is returned when a geocoder has no match for a city.
var ErrLocationNotFound = errors.New("location not found")

// Place is a geocoded city.
type Place struct {
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Geocoder resolves a free-text city into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city string) (Place, error)
}

// OpenMeteoGeocoder uses the keyless Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL string
	client  *client
}

func NewOpenMeteoGeocoder(cfg HTTPClientConfig) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		client:  newClient("openmeteo-geocoding", cfg),
	}
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, city string) (Place, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}

	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
	if err := g.client.getJSON(ctx, u, &payload); err != nil {
		return Place{}, err
	}
	if len(payload.Results) == 0 {
		return Place{}, fmt.Errorf("%w: %s", ErrLocationNotFound, city)
	}

	r := payload.Results[0]
	return Place{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude, Timezone: r.Timezone}, nil
}

// GoogleGeocoder resolves cities through the Google Geocoding API.
// The underlying library keeps its key in a package variable, so calls
// are serialized.
type GoogleGeocoder struct {
	mu     sync.Mutex
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, city string) (Place, error) {
	if g.apiKey == "" {
		return Place{}, fmt.Errorf("google geocoder api key is not configured")
	}
	if err := ctx.Err(); err != nil {
		return Place{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: city})
	if err != nil {
		return Place{}, fmt.Errorf("%w: %s: %v", ErrLocationNotFound, city, err)
	}

	return Place{Name: city, Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

// cachingGeocoder remembers resolved cities; coordinates do not move.
type cachingGeocoder struct {
	next  Geocoder
	mu    sync.RWMutex
	cache map[string]Place
}

func newCachingGeocoder(next Geocoder) *cachingGeocoder {
	return &cachingGeocoder{next: next, cache: make(map[string]Place)}
}

func (c *cachingGeocoder) Geocode(ctx context.Context, city string) (Place, error) {
	key := strings.ToLower(strings.TrimSpace(city))

	c.mu.RLock()
	place, found := c.cache[key]
	c.mu.RUnlock()
	if found {
		return place, nil
	}

	place, err := c.next.Geocode(ctx, city)
	if err != nil {
		return Place{}, err
	}

	c.mu.Lock()
	c.cache[key] = place
	c.mu.Unlock()
	return place, nil
}
