package display

import (
	"context"
	"slices"

	"github.com/i474232898/weather-signage/internal/settings"
)

// scheduleChanged reports a change that invalidates the pending timer.
func scheduleChanged(prev, next settings.Settings) bool {
	return !slices.Equal(prev.Locations, next.Locations) ||
		prev.CycleInterval() != next.CycleInterval() ||
		prev.Transition != next.Transition
}

// fetchChanged reports a change in what a fetch of the same location returns.
func fetchChanged(prev, next settings.Settings) bool {
	return prev.FetchOptions() != next.FetchOptions()
}

// startRefresh refetches the displayed location under the current settings.
// It never moves the index, never hides the display and leaves the timer
// alone.
func (l *loop) startRefresh(ctx context.Context) {
	st := l.c.Snapshot()
	if st.Weather == nil || st.CurrentIndex >= len(l.cfg.Locations) {
		return
	}

	l.refreshSeq++
	l.refreshing = true
	l.c.dispatch(refreshStarted{})
	l.spawn(ctx, result{kind: kindRefresh, index: st.CurrentIndex}, nil)
}
