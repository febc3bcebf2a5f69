package display

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/i474232898/weather-signage/internal/settings"
	"github.com/i474232898/weather-signage/internal/weather"
)

type fetchKind int

const (
	kindInitial fetchKind = iota
	kindCycle
	kindRetry
	kindRefresh
)

func (k fetchKind) String() string {
	switch k {
	case kindInitial:
		return "initial load"
	case kindCycle:
		return "cycle"
	case kindRetry:
		return "retry"
	default:
		return "refresh"
	}
}

// result is what a worker posts back to the loop.
type result struct {
	kind     fetchKind
	epoch    uint64
	seq      uint64
	index    int
	opts     weather.FetchOptions
	animated bool
	record   *weather.Record
	err      error
}

// loop holds what only the Run goroutine touches.
type loop struct {
	c       *Controller
	timer   *scheduleTimer
	results chan result

	cfg    settings.Settings
	loaded bool

	// epoch is bumped when the location list empties; results from an
	// older epoch are dropped.
	epoch uint64

	// At most one initial load or cycle is in flight; they never overlap.
	loading  bool
	cycling  bool
	retrying bool

	// refreshSeq identifies the newest refresh; older ones are dropped.
	refreshSeq uint64
	refreshing bool
}

func newLoop(c *Controller) *loop {
	return &loop{
		c:       c,
		timer:   newScheduleTimer(c.clock),
		results: make(chan result),
	}
}

func (l *loop) busy() bool {
	return l.loading || l.cycling
}

// pending reports whether a fetch that holds State.Loading is in flight.
func (l *loop) pending() bool {
	return l.loading || l.retrying || l.refreshing
}

// startInitial fetches index 0 without transition choreography.
func (l *loop) startInitial(ctx context.Context) {
	l.timer.cancel()
	l.loading = true
	l.c.dispatch(initialLoadStarted{})
	l.spawn(ctx, result{kind: kindInitial, index: 0}, nil)
}

// startCycle runs one step of the rotation after the timer fired.
func (l *loop) startCycle(ctx context.Context) {
	n := len(l.cfg.Locations)
	if n == 0 || l.busy() {
		return
	}

	st := l.c.Snapshot()
	next := (st.CurrentIndex + 1) % n
	animated := l.cfg.Animated()

	l.cycling = true
	l.c.dispatch(cycleStarted{hide: animated})

	var dwell <-chan time.Time
	if animated {
		dwell = l.c.clock.After(l.c.dwell)
	}
	l.spawn(ctx, result{kind: kindCycle, index: next, animated: animated}, dwell)
}

// startRetry refetches the current index outside the schedule.
func (l *loop) startRetry(ctx context.Context) {
	if l.retrying {
		return
	}
	st := l.c.Snapshot()
	if st.CurrentIndex >= len(l.cfg.Locations) {
		l.c.dispatch(retryNoLocation{pending: l.pending()})
		return
	}

	l.retrying = true
	l.c.dispatch(retryStarted{})
	l.spawn(ctx, result{kind: kindRetry, index: st.CurrentIndex}, nil)
}

// spawn fetches the location at r.index and, when dwell is set, waits for it
// as well before posting r back to the loop.
func (l *loop) spawn(ctx context.Context, r result, dwell <-chan time.Time) {
	r.epoch = l.epoch
	r.seq = l.refreshSeq
	r.opts = l.cfg.FetchOptions()
	loc := l.cfg.Locations[r.index]

	go func() {
		fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		rec, err := l.c.fetcher.Fetch(fctx, loc, r.opts)
		cancel()
		if err != nil {
			log.Printf("ERROR: display: %s fetch for %s failed: %v", r.kind, loc.Key(), err)
			r.err = err
		} else {
			r.record = &rec
		}

		if dwell != nil {
			select {
			case <-dwell:
			case <-ctx.Done():
				return
			}
		}

		select {
		case l.results <- r:
		case <-ctx.Done():
		}
	}()
}

// finish applies a worker result. For a cycle the commit, the visibility
// restore and the rearm happen in that order within this one call.
func (l *loop) finish(ctx context.Context, r result) {
	if r.epoch != l.epoch {
		return
	}

	switch r.kind {
	case kindInitial:
		l.loading = false
		if r.err != nil {
			l.c.dispatch(initialLoadFailed{pending: l.pending()})
		} else {
			l.c.dispatch(initialLoaded{record: r.record, pending: l.pending()})
		}
		l.timer.arm(l.cfg.CycleInterval())

	case kindCycle:
		l.cycling = false
		if r.err != nil {
			l.c.dispatch(cycleFailed{})
		} else {
			l.c.dispatch(cycleCommitted{index: r.index, record: r.record})
		}
		l.c.dispatch(cycleFinished{show: r.animated})
		l.timer.arm(l.cfg.CycleInterval())

	case kindRetry:
		l.retrying = false
		if r.err != nil {
			l.c.dispatch(retryFailed{pending: l.pending()})
		} else {
			l.c.dispatch(retrySucceeded{index: r.index, record: r.record, pending: l.pending()})
		}

	case kindRefresh:
		if r.seq != l.refreshSeq {
			return
		}
		l.refreshing = false
		if r.err != nil {
			l.c.dispatch(refreshFailed{pending: l.pending()})
		} else {
			l.c.dispatch(refreshed{index: r.index, record: r.record, pending: l.pending()})
		}
		return
	}

	// Settings moved on while this fetch was in flight.
	if r.err == nil && r.opts != l.cfg.FetchOptions() {
		l.startRefresh(ctx)
	}
}

// applySettings reconciles the loop with a new settings value.
func (l *loop) applySettings(ctx context.Context, s settings.Settings) {
	prev, had := l.cfg, l.loaded
	l.cfg, l.loaded = s, true
	l.c.setSettings(s)

	if len(s.Locations) == 0 {
		l.clear()
		return
	}

	listChanged := !had || !slices.Equal(prev.Locations, s.Locations)
	st := l.c.Snapshot()
	if st.Weather == nil && !l.busy() && listChanged {
		l.startInitial(ctx)
		return
	}

	if !l.busy() && (listChanged || scheduleChanged(prev, s)) {
		l.timer.arm(s.CycleInterval())
	}
	if had && fetchChanged(prev, s) {
		l.startRefresh(ctx)
	}
}

// clear returns to idle: no timer, no record, in-flight results dropped.
func (l *loop) clear() {
	l.timer.cancel()
	l.epoch++
	l.loading, l.cycling, l.retrying, l.refreshing = false, false, false, false
	if st := l.c.Snapshot(); st.Phase == PhaseIdle && st.Weather == nil && st.Error == "" {
		return
	}
	l.c.dispatch(locationsCleared{})
}
