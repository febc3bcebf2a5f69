package display

import (
	"context"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/i474232898/weather-signage/internal/settings"
	"github.com/i474232898/weather-signage/internal/weather"
)

const (
	// Dwell is the minimum time a fade or slide holds the display hidden.
	Dwell = 500 * time.Millisecond

	fetchTimeout = 30 * time.Second
)

// Fetcher returns the weather record for one location.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.LocationConfig, opts weather.FetchOptions) (weather.Record, error)
}

// Source streams settings. The channel delivers the current value once the
// settings are loaded and every later change, and closes when ctx is done.
type Source interface {
	Watch(ctx context.Context) <-chan settings.Settings
}

// Controller rotates the display through the configured locations.
//
// All state transitions run on the goroutine executing Run. Fetches and the
// transition dwell run in worker goroutines that post a single result back.
type Controller struct {
	fetcher Fetcher
	source  Source
	clock   clock.Clock
	dwell   time.Duration

	retries chan struct{}

	mu        sync.RWMutex
	state     State
	settings  settings.Settings
	observers []func(State)
}

// New creates a Controller. A nil clk uses the wall clock.
func New(fetcher Fetcher, source Source, clk clock.Clock) *Controller {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Controller{
		fetcher: fetcher,
		source:  source,
		clock:   clk,
		dwell:   Dwell,
		retries: make(chan struct{}, 1),
		state:   initialState(),
	}
}

// Subscribe registers fn to receive every published state. Observers are
// called on the controller goroutine and must not block.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Retry asks the controller to refetch the current location. Requests made
// while one is already queued are coalesced; Retry reports whether this
// call queued a new one.
func (c *Controller) Retry() bool {
	select {
	case c.retries <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run drives the display until ctx is done. The pending timer is cancelled
// on return and late fetch results are dropped.
func (c *Controller) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := newLoop(c)
	defer l.timer.cancel()

	updates := c.source.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			l.applySettings(ctx, s)
		case <-l.timer.C():
			l.timer.fired()
			l.startCycle(ctx)
		case <-c.retries:
			l.startRetry(ctx)
		case r := <-l.results:
			l.finish(ctx, r)
		}
	}
}

// dispatch applies ev and notifies observers with the resulting state.
func (c *Controller) dispatch(ev event) State {
	c.mu.Lock()
	c.state = reduce(c.state, ev)
	st := c.state
	observers := c.observers
	c.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
	return st
}

func (c *Controller) setSettings(s settings.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
}

// current returns the state and the settings it should be read against.
func (c *Controller) current() (State, settings.Settings) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.settings
}
