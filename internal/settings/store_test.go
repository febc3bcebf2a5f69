package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-signage/internal/weather"
)

func manual(id, city string) weather.LocationConfig {
	return weather.LocationConfig{ID: id, Type: weather.LocationManual, City: city}
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.Locations = []weather.LocationConfig{manual("a", "Paris"), {ID: "b", Type: weather.LocationAuto}}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}

	cases := map[string]func(*Settings){
		"manual without city": func(s *Settings) { s.Locations[0].City = "" },
		"unknown type":        func(s *Settings) { s.Locations[0].Type = "gps" },
		"duplicate id":        func(s *Settings) { s.Locations[1].ID = "a" },
		"missing id":          func(s *Settings) { s.Locations[1].ID = "" },
		"bad transition":      func(s *Settings) { s.Transition = "wipe" },
		"bad units":           func(s *Settings) { s.Units = "kelvin" },
		"count too large":     func(s *Settings) { s.ForecastCount = 25 },
		"negative duration":   func(s *Settings) { s.CycleDuration = -1 },
	}
	for name, mutate := range cases {
		bad := s.Clone()
		mutate(&bad)
		if err := bad.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestUnknownForecastRangeFallsBackToDaily(t *testing.T) {
	s := Defaults()
	s.ForecastRange = "monthly"
	if err := s.Validate(); err != nil {
		t.Fatalf("expected unknown range to be accepted, got %v", err)
	}
	if got := s.Normalized().ForecastRange; got != weather.RangeDaily {
		t.Fatalf("expected daily, got %q", got)
	}
}

func TestNormalizedRewritesLegacyAliases(t *testing.T) {
	s := Settings{ForecastRange: "24h"}
	if got := s.Normalized().ForecastRange; got != weather.RangeHourly {
		t.Fatalf("expected 24h to become hourly, got %q", got)
	}
	s.ForecastRange = "7d"
	n := s.Normalized()
	if n.ForecastRange != weather.RangeDaily {
		t.Fatalf("expected 7d to become daily, got %q", n.ForecastRange)
	}
	if n.CycleDuration != 5 || n.ForecastCount != 5 || n.Units != weather.UnitsMetric || n.Transition != TransitionFade {
		t.Fatalf("expected defaults to be filled, got %#v", n)
	}
}

func TestCycleIntervalToleratesAnyPositiveValue(t *testing.T) {
	if got := (Settings{CycleDuration: 1}).CycleInterval(); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
	if got := (Settings{CycleDuration: 600}).CycleInterval(); got != 10*time.Minute {
		t.Fatalf("expected 10m, got %v", got)
	}
	if got := (Settings{}).CycleInterval(); got != DefaultCycleDuration {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestStoreNotLoadedUntilSet(t *testing.T) {
	store := NewMemoryStore(nil)
	if _, loaded := store.Get(); loaded {
		t.Fatal("expected fresh store to be unloaded")
	}
	if _, err := store.Update(context.Background(), func(*Settings) error { return nil }); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}

	if _, err := store.Set(context.Background(), Defaults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, loaded := store.Get(); !loaded {
		t.Fatal("expected store to be loaded after Set")
	}
}

func TestStoreRejectsInvalidSettings(t *testing.T) {
	store := NewMemoryStore(nil)
	s := Defaults()
	s.Locations = []weather.LocationConfig{{ID: "a", Type: weather.LocationManual}}
	if _, err := store.Set(context.Background(), s); err == nil {
		t.Fatal("expected validation error")
	}
	if _, loaded := store.Get(); loaded {
		t.Fatal("invalid settings must not load the store")
	}
}

// gatedPersister blocks Save until release is closed.
type gatedPersister struct {
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPersister) Load(context.Context) (Settings, error) {
	return Settings{}, ErrNoSettings
}

func (p *gatedPersister) Save(context.Context, Settings) error {
	p.entered <- struct{}{}
	<-p.release
	return nil
}

func TestSlowPersistDoesNotBlockReaders(t *testing.T) {
	p := &gatedPersister{entered: make(chan struct{}, 1), release: make(chan struct{})}
	store := NewMemoryStore(p)

	done := make(chan error, 1)
	go func() {
		_, err := store.Set(context.Background(), Defaults())
		done <- err
	}()
	<-p.entered

	read := make(chan bool, 1)
	go func() {
		_, loaded := store.Get()
		read <- loaded
	}()
	select {
	case loaded := <-read:
		if loaded {
			t.Fatal("expected value to be published only after it was persisted")
		}
	case <-time.After(time.Second):
		t.Fatal("Get blocked while settings were being persisted")
	}

	close(p.release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, loaded := store.Get(); !loaded {
		t.Fatal("expected store to be loaded after Set")
	}
}

func TestWatchDeliversCurrentAndLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore(nil)
	ch := store.Watch(ctx)

	select {
	case <-ch:
		t.Fatal("unloaded store must not emit")
	default:
	}

	for i := 1; i <= 3; i++ {
		s := Defaults()
		s.CycleDuration = 5 * i
		if _, err := store.Set(ctx, s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got := <-ch
	if got.CycleDuration != 15 {
		t.Fatalf("expected only the latest value, got duration %d", got.CycleDuration)
	}

	late := store.Watch(ctx)
	if v := <-late; v.CycleDuration != 15 {
		t.Fatalf("expected late watcher to get current value, got %d", v.CycleDuration)
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("expected channel to close after cancel")
		}
	}
}

func TestWatchReturnsCopies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore(nil)
	s := Defaults()
	s.Locations = []weather.LocationConfig{manual("a", "Paris")}
	if _, err := store.Set(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := <-store.Watch(ctx)
	v.Locations[0].City = "Berlin"

	cur, _ := store.Get()
	if cur.Locations[0].City != "Paris" {
		t.Fatal("mutating a watched value must not leak into the store")
	}
}

func TestFilePersisterRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")

	first := NewMemoryStore(NewFilePersister(path))
	fallback := Defaults()
	fallback.Locations = []weather.LocationConfig{manual("a", "Paris")}
	if err := first.Init(ctx, fallback); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := first.Update(ctx, func(s *Settings) error {
		s.Units = weather.UnitsImperial
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := NewMemoryStore(NewFilePersister(path))
	if err := second.Init(ctx, Defaults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := second.Get()
	if got.Units != weather.UnitsImperial || len(got.Locations) != 1 {
		t.Fatalf("expected persisted settings to win over fallback, got %#v", got)
	}

	changed, err := second.Reload(ctx)
	if err != nil || changed {
		t.Fatalf("expected unchanged reload, got changed=%v err=%v", changed, err)
	}
}

func TestFilePersisterMissingFile(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := p.Load(context.Background()); !errors.Is(err, ErrNoSettings) {
		t.Fatalf("expected ErrNoSettings, got %v", err)
	}
}
