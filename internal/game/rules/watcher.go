package rules

import "sync"

// Watcher tallies published events. Watchers see every event and filter
// for the ones they count.
type Watcher interface {
	Watch(event Event)
	Reset()
	Key() string
	// Matched reports how many events the watcher has counted since the
	// last reset.
	Matched() int
}

// BaseWatcher carries the key and match counter shared by all watchers.
type BaseWatcher struct {
	key     string
	matched int
}

// NewBaseWatcher returns a base watcher registered under key.
func NewBaseWatcher(key string) *BaseWatcher {
	return &BaseWatcher{key: key}
}

func (bw *BaseWatcher) Key() string  { return bw.key }
func (bw *BaseWatcher) Matched() int { return bw.matched }

// Hit records that the watcher counted an event.
func (bw *BaseWatcher) Hit() { bw.matched++ }

// Reset zeroes the match counter.
func (bw *BaseWatcher) Reset() { bw.matched = 0 }

// WatcherRegistry holds a game's watchers. Events reach watchers in the
// order they were added.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers []Watcher
	byKey    map[string]int
}

func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{byKey: make(map[string]int)}
}

// Add registers w. A watcher with the same key is replaced in place so
// notification order is unchanged.
func (wr *WatcherRegistry) Add(w Watcher) {
	if w == nil || w.Key() == "" {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	if i, ok := wr.byKey[w.Key()]; ok {
		wr.watchers[i] = w
		return
	}
	wr.byKey[w.Key()] = len(wr.watchers)
	wr.watchers = append(wr.watchers, w)
}

// Get returns the watcher registered under key, or nil.
func (wr *WatcherRegistry) Get(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	if i, ok := wr.byKey[key]; ok {
		return wr.watchers[i]
	}
	return nil
}

// Len returns the number of registered watchers.
func (wr *WatcherRegistry) Len() int {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return len(wr.watchers)
}

// Notify passes event to every watcher. It is an EventBus handler.
func (wr *WatcherRegistry) Notify(event Event) {
	wr.mu.RLock()
	ws := append([]Watcher(nil), wr.watchers...)
	wr.mu.RUnlock()
	for _, w := range ws {
		w.Watch(event)
	}
}

// ResetAll clears every watcher's tally.
func (wr *WatcherRegistry) ResetAll() {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, w := range wr.watchers {
		w.Reset()
	}
}
