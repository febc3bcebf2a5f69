package config

import (
	"testing"
	"time"

	"github.com/i474232898/weather-signage/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PROVIDERS", "HTTP_TIMEOUT", "PORT", "WEATHER_LOCATION_CITY", "DEVICE_LATITUDE", "DEVICE_LONGITUDE", "SETTINGS_SYNC_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Providers) != 3 || cfg.Providers[0] != "weatherapi" || cfg.Providers[2] != "openmeteo" {
		t.Fatalf("unexpected providers %v", cfg.Providers)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.SettingsSyncInterval != time.Minute {
		t.Fatalf("unexpected durations %v / %v", cfg.HTTPTimeout, cfg.SettingsSyncInterval)
	}
	if cfg.Port != "8080" || cfg.Device != nil || len(cfg.SeedLocations) != 0 {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadSeedLocations(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "Paris, auto ,,Berlin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SeedLocations) != 3 {
		t.Fatalf("expected 3 locations, got %#v", cfg.SeedLocations)
	}
	if l := cfg.SeedLocations[1]; l.Type != weather.LocationAuto || l.City != "" {
		t.Fatalf("expected auto location, got %#v", l)
	}
	if l := cfg.SeedLocations[2]; l.Type != weather.LocationManual || l.City != "Berlin" {
		t.Fatalf("expected Berlin, got %#v", l)
	}
	if cfg.SeedLocations[0].ID == "" || cfg.SeedLocations[0].ID == cfg.SeedLocations[2].ID {
		t.Fatal("expected unique generated ids")
	}
}

func TestLoadDeviceLocation(t *testing.T) {
	t.Setenv("DEVICE_LATITUDE", "52.52")
	t.Setenv("DEVICE_LONGITUDE", "13.40")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Device == nil || cfg.Device.Latitude != 52.52 || cfg.Device.Longitude != 13.40 {
		t.Fatalf("unexpected device %#v", cfg.Device)
	}

	t.Setenv("DEVICE_LONGITUDE", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for half a device location")
	}

	t.Setenv("DEVICE_LONGITUDE", "200")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out of range longitude")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid HTTP_TIMEOUT")
	}
}
