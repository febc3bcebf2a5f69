package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-signage/internal/weather"
)

type AppConfig struct {
	WeatherAPIKey     string
	OpenWeatherAPIKey string
	GeocoderAPIKey    string

	// Providers lists the weather providers to try, in order.
	Providers []string

	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int

	// Device is the fixed position used for auto locations by providers that
	// cannot locate the caller themselves.
	Device *DeviceLocation

	DatabaseURL  string
	SettingsFile string

	// SettingsSyncInterval controls how often persisted settings are pulled
	// into the live store (0 disables the sync job).
	SettingsSyncInterval time.Duration

	// SeedLocations are used when nothing has been persisted yet.
	SeedLocations []weather.LocationConfig

	Port        string
	CORSOrigins string
}

type DeviceLocation struct {
	Latitude  float64
	Longitude float64
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Providers = splitList(getenvDefault("PROVIDERS", "weatherapi,openweather,openmeteo"))

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	rps, err := strconv.ParseFloat(getenvDefault("PROVIDER_RPS", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_RPS: %w", err)
	}
	cfg.RequestsPerSecond = rps
	cfg.Burst = getenvInt("PROVIDER_BURST", 4)

	device, err := loadDeviceLocation()
	if err != nil {
		return nil, err
	}
	cfg.Device = device

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SettingsFile = getenvDefault("SETTINGS_FILE", "settings.json")

	syncInterval, err := time.ParseDuration(getenvDefault("SETTINGS_SYNC_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SETTINGS_SYNC_INTERVAL: %w", err)
	}
	cfg.SettingsSyncInterval = syncInterval

	cfg.SeedLocations = loadSeedLocations()
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.CORSOrigins = getenvDefault("CORS_ORIGINS", "*")

	return cfg, nil
}

// loadSeedLocations turns WEATHER_LOCATION_CITY into manual locations. The
// special value "auto" adds a device location instead.
func loadSeedLocations() []weather.LocationConfig {
	var locs []weather.LocationConfig
	for _, city := range splitList(os.Getenv("WEATHER_LOCATION_CITY")) {
		loc := weather.LocationConfig{ID: uuid.NewString(), Type: weather.LocationManual, City: city}
		if strings.EqualFold(city, "auto") {
			loc.Type, loc.City = weather.LocationAuto, ""
		}
		locs = append(locs, loc)
	}
	return locs
}

func loadDeviceLocation() (*DeviceLocation, error) {
	lat, lon := os.Getenv("DEVICE_LATITUDE"), os.Getenv("DEVICE_LONGITUDE")
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("DEVICE_LATITUDE and DEVICE_LONGITUDE must be set together")
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return nil, fmt.Errorf("invalid DEVICE_LATITUDE %q", lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || lo < -180 || lo > 180 {
		return nil, fmt.Errorf("invalid DEVICE_LONGITUDE %q", lon)
	}
	return &DeviceLocation{Latitude: la, Longitude: lo}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
