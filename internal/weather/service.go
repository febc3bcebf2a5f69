package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrFetchFailure wraps every failed fetch. The wrapped cause is for logs,
	// never for the screen.
	ErrFetchFailure = errors.New("unable to load weather data")

	// ErrNoProviders is returned when the service has nothing to ask.
	ErrNoProviders = errors.New("no weather providers configured")
)

// Service fetches a location's weather from the configured providers and
// normalizes it. Providers are tried in order; the first success wins.
type Service struct {
	providers []Provider
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(providers []Provider) *Service {
	return &Service{
		providers: providers,
		now:       time.Now,
	}
}

// Fetch returns the Record for loc under opts. Any provider error is logged
// and the returned error wraps ErrFetchFailure.
func (s *Service) Fetch(ctx context.Context, loc LocationConfig, opts FetchOptions) (Record, error) {
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return Record{}, fmt.Errorf("%w: %w", ErrFetchFailure, ErrNoProviders)
	}

	q := loc.Query(opts.Units)

	var lastErr error
	for _, p := range s.providers {
		rec, err := s.fetchFrom(ctx, p, q, opts)
		if err != nil {
			// Log and fall through to the next provider.
			log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		rec.LocationID = loc.ID
		rec.Units = opts.Units
		rec.FetchedAt = s.now().UTC()
		return rec, nil
	}

	return Record{}, fmt.Errorf("%w: %w", ErrFetchFailure, lastErr)
}

func (s *Service) fetchFrom(ctx context.Context, p Provider, q Query, opts FetchOptions) (Record, error) {
	current, err := p.GetConditions(ctx, q)
	if err != nil {
		return Record{}, fmt.Errorf("conditions: %w", err)
	}

	count := opts.Count
	if count <= 0 {
		count = DefaultForecastCount
	}

	var (
		series []RawForecast
		hourly bool
	)
	switch opts.Range {
	case RangeNone:
	case RangeHourly:
		hourly = true
		series, err = p.GetHourlyForecast(ctx, q, count)
		if err != nil {
			return Record{}, fmt.Errorf("hourly forecast: %w", err)
		}
	default:
		series, err = p.GetDailyForecast(ctx, q, count)
		if err != nil {
			return Record{}, fmt.Errorf("daily forecast: %w", err)
		}
	}

	if len(series) > count {
		series = series[:count]
	}

	return Normalize(current, series, hourly), nil
}
