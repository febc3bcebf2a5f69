package display

import "github.com/i474232898/weather-signage/internal/weather"

// Phase is the coarse display state a renderer switches on.
type Phase string

const (
	PhaseIdle          Phase = "idle"          // no locations configured
	PhaseLoading       Phase = "loading"       // first fetch in flight, nothing to show
	PhaseDisplaying    Phase = "displaying"    // data shown, timer armed
	PhaseTransitioning Phase = "transitioning" // next fetch in flight, maybe faded out
	PhaseError         Phase = "error"         // nothing to show and the last fetch failed
)

// Failure classifies the error currently held in State.
type Failure string

const (
	FailureNone        Failure = ""
	FailureInitialLoad Failure = "initial_load"
	FailureCycleFetch  Failure = "cycle_fetch"
	FailureRetry       Failure = "retry"
	FailureRefresh     Failure = "refresh"
)

// Messages shown to the end user. Provider errors are only logged.
const (
	msgInitialLoad = "Could not load initial data"
	msgCycleFetch  = "Failed to load next location"
	msgRetry       = "Retry failed. Please check connection."
	msgNoLocation  = "No location configuration found."
	msgRefresh     = "Unable to load weather data"
)

// State is the display tuple. Weather, when set, was fetched for the
// location at CurrentIndex; both only ever change in the same reduce step.
type State struct {
	Phase        Phase           `json:"phase"`
	CurrentIndex int             `json:"currentIndex"`
	Weather      *weather.Record `json:"weather"`
	Visible      bool            `json:"visible"`
	Error        string          `json:"error,omitempty"`
	Failure      Failure         `json:"failure,omitempty"`
	// Loading is set while an initial load, retry or refresh is in flight.
	Loading bool `json:"loading"`
}

func initialState() State {
	return State{Phase: PhaseIdle, Visible: true}
}

// event is one input to reduce.
type event interface {
	isEvent()
}

type (
	locationsCleared   struct{}
	initialLoadStarted struct{}
	initialLoaded      struct {
		record  *weather.Record
		pending bool
	}
	initialLoadFailed struct{ pending bool }

	cycleStarted   struct{ hide bool }
	cycleCommitted struct {
		index  int
		record *weather.Record
	}
	cycleFailed   struct{}
	cycleFinished struct{ show bool }

	retryStarted   struct{}
	retrySucceeded struct {
		index   int
		record  *weather.Record
		pending bool
	}
	retryFailed     struct{ pending bool }
	retryNoLocation struct{ pending bool }

	refreshStarted struct{}
	refreshed      struct {
		index   int
		record  *weather.Record
		pending bool
	}
	refreshFailed struct{ pending bool }
)

func (locationsCleared) isEvent()   {}
func (initialLoadStarted) isEvent() {}
func (initialLoaded) isEvent()      {}
func (initialLoadFailed) isEvent()  {}
func (cycleStarted) isEvent()       {}
func (cycleCommitted) isEvent()     {}
func (cycleFailed) isEvent()        {}
func (cycleFinished) isEvent()      {}
func (retryStarted) isEvent()       {}
func (retrySucceeded) isEvent()     {}
func (retryFailed) isEvent()        {}
func (retryNoLocation) isEvent()    {}
func (refreshStarted) isEvent()     {}
func (refreshed) isEvent()          {}
func (refreshFailed) isEvent()      {}

// reduce returns the state after ev. It is the only place State changes.
func reduce(s State, ev event) State {
	switch e := ev.(type) {
	case locationsCleared:
		return initialState()

	case initialLoadStarted:
		s.Phase = PhaseLoading
		s.Loading = true

	case initialLoaded:
		s.Weather = e.record
		s.CurrentIndex = 0
		s.Error, s.Failure = "", FailureNone
		s.Phase = PhaseDisplaying
		s.Loading = e.pending

	case initialLoadFailed:
		s.Error, s.Failure = msgInitialLoad, FailureInitialLoad
		s.Phase = settledPhase(s)
		s.Loading = e.pending

	case cycleStarted:
		s.Phase = PhaseTransitioning
		if e.hide {
			s.Visible = false
		}

	case cycleCommitted:
		s.Weather = e.record
		s.CurrentIndex = e.index
		s.Error, s.Failure = "", FailureNone

	case cycleFailed:
		s.Error, s.Failure = msgCycleFetch, FailureCycleFetch

	case cycleFinished:
		if e.show {
			s.Visible = true
		}
		s.Phase = settledPhase(s)

	case retryStarted:
		s.Loading = true

	case retrySucceeded:
		s.Loading = e.pending
		if e.index != s.CurrentIndex {
			// The display moved on while the retry was in flight.
			return s
		}
		s.Weather = e.record
		s.Error, s.Failure = "", FailureNone
		if s.Phase != PhaseTransitioning {
			s.Phase = PhaseDisplaying
		}

	case retryFailed:
		s.Loading = e.pending
		s.Error, s.Failure = msgRetry, FailureRetry
		if s.Phase != PhaseTransitioning {
			s.Phase = settledPhase(s)
		}

	case retryNoLocation:
		s.Loading = e.pending
		s.Error, s.Failure = msgNoLocation, FailureRetry

	case refreshStarted:
		s.Loading = true

	case refreshed:
		s.Loading = e.pending
		if e.index != s.CurrentIndex || s.Weather == nil {
			return s
		}
		s.Weather = e.record
		if s.Failure == FailureRefresh {
			s.Error, s.Failure = "", FailureNone
		}

	case refreshFailed:
		s.Loading = e.pending
		// Non-fatal: keep stale data and never mask a stronger failure.
		if s.Failure == FailureNone {
			s.Error, s.Failure = msgRefresh, FailureRefresh
		}
	}
	return s
}

// settledPhase is the resting phase once nothing is in flight.
func settledPhase(s State) Phase {
	if s.Weather == nil {
		return PhaseError
	}
	return PhaseDisplaying
}
