package display

import (
	"testing"

	"github.com/i474232898/weather-signage/internal/weather"
)

func rec(id string) *weather.Record {
	return &weather.Record{LocationID: id}
}

func displaying(id string, index int) State {
	return State{Phase: PhaseDisplaying, CurrentIndex: index, Weather: rec(id), Visible: true}
}

func TestReduceCommitMovesIndexAndWeatherTogether(t *testing.T) {
	s := displaying("a", 0)
	s = reduce(s, cycleStarted{hide: true})
	if s.Visible || s.Phase != PhaseTransitioning {
		t.Fatalf("expected hidden transitioning state, got %#v", s)
	}
	if s.CurrentIndex != 0 || s.Weather.LocationID != "a" {
		t.Fatal("starting a cycle must not touch index or weather")
	}

	s = reduce(s, cycleCommitted{index: 1, record: rec("b")})
	if s.CurrentIndex != 1 || s.Weather.LocationID != "b" || s.Error != "" {
		t.Fatalf("expected atomic commit, got %#v", s)
	}

	s = reduce(s, cycleFinished{show: true})
	if !s.Visible || s.Phase != PhaseDisplaying {
		t.Fatalf("expected visible displaying state, got %#v", s)
	}
}

func TestReduceCycleFailureKeepsLastGood(t *testing.T) {
	s := displaying("a", 2)
	s = reduce(s, cycleStarted{hide: true})
	s = reduce(s, cycleFailed{})
	s = reduce(s, cycleFinished{show: true})

	if s.CurrentIndex != 2 || s.Weather.LocationID != "a" {
		t.Fatalf("failure must not advance, got %#v", s)
	}
	if s.Failure != FailureCycleFetch || s.Error != msgCycleFetch {
		t.Fatalf("expected cycle fetch failure, got %q/%q", s.Failure, s.Error)
	}
	if !s.Visible || s.Phase != PhaseDisplaying {
		t.Fatalf("failed cycle must still restore visibility, got %#v", s)
	}
}

func TestReduceInitialLoadFailure(t *testing.T) {
	s := reduce(initialState(), initialLoadStarted{})
	if s.Phase != PhaseLoading || !s.Loading {
		t.Fatalf("expected loading, got %#v", s)
	}
	s = reduce(s, initialLoadFailed{})
	if s.Phase != PhaseError || s.Weather != nil || s.Failure != FailureInitialLoad {
		t.Fatalf("expected initial load failure, got %#v", s)
	}
	if s.Error != "Could not load initial data" {
		t.Fatalf("unexpected message %q", s.Error)
	}
}

func TestReduceRetry(t *testing.T) {
	s := reduce(reduce(initialState(), initialLoadStarted{}), initialLoadFailed{})

	failed := reduce(reduce(s, retryStarted{}), retryFailed{})
	if failed.Error != msgRetry || failed.Weather != nil || failed.Phase != PhaseError || failed.Loading {
		t.Fatalf("expected retry failure, got %#v", failed)
	}

	ok := reduce(reduce(failed, retryStarted{}), retrySucceeded{index: 0, record: rec("a")})
	if ok.Phase != PhaseDisplaying || ok.Error != "" || ok.Weather.LocationID != "a" {
		t.Fatalf("expected retry to recover, got %#v", ok)
	}

	moved := displaying("b", 1)
	stale := reduce(moved, retrySucceeded{index: 0, record: rec("a")})
	if stale.Weather.LocationID != "b" {
		t.Fatal("retry result for an old index must be dropped")
	}

	none := reduce(initialState(), retryNoLocation{})
	if none.Error != msgNoLocation || none.Weather != nil {
		t.Fatalf("expected no-location error, got %#v", none)
	}
}

func TestReduceRefresh(t *testing.T) {
	s := displaying("a", 1)
	s = reduce(s, refreshStarted{})
	if !s.Loading || s.Phase != PhaseDisplaying {
		t.Fatalf("refresh must only set the loading flag, got %#v", s)
	}

	next := &weather.Record{LocationID: "a", Units: weather.UnitsImperial}
	got := reduce(s, refreshed{index: 1, record: next})
	if got.Weather != next || got.CurrentIndex != 1 || got.Loading {
		t.Fatalf("expected refreshed record, got %#v", got)
	}

	failed := reduce(s, refreshFailed{})
	if failed.Weather.LocationID != "a" || failed.Phase != PhaseDisplaying || failed.Failure != FailureRefresh {
		t.Fatalf("refresh failure must be non-fatal, got %#v", failed)
	}

	// A refresh failure does not mask a cycle failure.
	s.Error, s.Failure = msgCycleFetch, FailureCycleFetch
	if masked := reduce(s, refreshFailed{}); masked.Failure != FailureCycleFetch {
		t.Fatalf("expected cycle failure to survive, got %q", masked.Failure)
	}

	if stale := reduce(s, refreshed{index: 0, record: next}); stale.Weather.LocationID != "a" || stale.Weather == next {
		t.Fatal("refresh result for an old index must be dropped")
	}
}

func TestReduceKeepsLoadingForPendingFetch(t *testing.T) {
	s := reduce(reduce(displaying("a", 0), refreshStarted{}), retryStarted{})

	s = reduce(s, retryFailed{pending: true})
	if !s.Loading || s.Failure != FailureRetry {
		t.Fatalf("expected loading to survive the retry, got %#v", s)
	}
	s = reduce(s, refreshed{index: 0, record: rec("a")})
	if s.Loading {
		t.Fatalf("expected loading cleared once nothing is pending, got %#v", s)
	}

	s = reduce(reduce(s, retryStarted{}), refreshFailed{pending: true})
	if !s.Loading {
		t.Fatalf("expected loading to survive the refresh, got %#v", s)
	}
}

func TestReduceLocationsCleared(t *testing.T) {
	s := displaying("a", 3)
	s.Error = msgCycleFetch
	s = reduce(s, locationsCleared{})
	if s != initialState() {
		t.Fatalf("expected idle state, got %#v", s)
	}
}
