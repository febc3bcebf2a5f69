package settings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrNotLoaded is returned while the store has not resolved its first value.
	ErrNotLoaded = errors.New("settings not loaded")

	// ErrLocationNotFound is returned when no location has the requested ID.
	ErrLocationNotFound = errors.New("location not found")
)

// MemoryStore is a concurrency-safe, observable settings store. Until the
// first value is set or loaded it reports loaded=false, mirroring a remote
// store that has not answered yet.
type MemoryStore struct {
	mu sync.RWMutex

	// writeMu serializes writers so persisting never happens under mu.
	writeMu sync.Mutex

	current Settings
	loaded  bool

	// watcher channels hold at most the latest unread value
	watchers map[int]chan Settings
	nextID   int

	persister Persister
}

// NewMemoryStore creates an empty store. persister may be nil.
func NewMemoryStore(persister Persister) *MemoryStore {
	return &MemoryStore{
		watchers:  make(map[int]chan Settings),
		persister: persister,
	}
}

// Get returns the current settings and whether they have been loaded.
func (s *MemoryStore) Get() (Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), s.loaded
}

// Set validates, normalizes, persists and publishes v.
func (s *MemoryStore) Set(ctx context.Context, v Settings) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.setLocked(ctx, v)
}

// Update applies fn to a copy of the current settings and stores the result.
func (s *MemoryStore) Update(ctx context.Context, fn func(*Settings) error) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur, loaded := s.Get()
	if !loaded {
		return Settings{}, ErrNotLoaded
	}
	if err := fn(&cur); err != nil {
		return Settings{}, err
	}
	return s.setLocked(ctx, cur)
}

// setLocked requires writeMu. Readers are only blocked while publishing.
func (s *MemoryStore) setLocked(ctx context.Context, v Settings) (Settings, error) {
	if err := v.Validate(); err != nil {
		return Settings{}, err
	}
	v = v.Normalized()

	if s.persister != nil {
		if err := s.persister.Save(ctx, v); err != nil {
			return Settings{}, fmt.Errorf("persist settings: %w", err)
		}
	}

	s.mu.Lock()
	s.publishLocked(v)
	s.mu.Unlock()
	return v.Clone(), nil
}

// Reload pulls the persisted settings and publishes them when they differ
// from the current value. It reports whether anything changed.
func (s *MemoryStore) Reload(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	v, err := s.persister.Load(ctx)
	if err != nil {
		return false, err
	}
	if err := v.Validate(); err != nil {
		return false, fmt.Errorf("persisted settings invalid: %w", err)
	}
	v = v.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && Equal(s.current, v) {
		return false, nil
	}
	s.publishLocked(v)
	return true, nil
}

// Init makes sure the store is loaded: persisted settings win, otherwise
// fallback is stored (and persisted).
func (s *MemoryStore) Init(ctx context.Context, fallback Settings) error {
	if _, err := s.Reload(ctx); err == nil {
		if _, loaded := s.Get(); loaded {
			return nil
		}
	} else if !errors.Is(err, ErrNoSettings) {
		return err
	}

	log.Printf("INFO: settings: no persisted settings; starting from defaults with %d location(s)", len(fallback.Locations))
	_, err := s.Set(ctx, fallback)
	return err
}

// Watch streams settings: the current value first (once loaded), then every
// change. Slow readers only ever see the latest value. The channel is closed
// when ctx is done.
func (s *MemoryStore) Watch(ctx context.Context) <-chan Settings {
	ch := make(chan Settings, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	if s.loaded {
		ch <- s.current.Clone()
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

func (s *MemoryStore) publishLocked(v Settings) {
	s.current = v
	s.loaded = true

	for _, ch := range s.watchers {
		// Drop the unread value, keep the newest.
		select {
		case <-ch:
		default:
		}
		ch <- v.Clone()
	}
}
