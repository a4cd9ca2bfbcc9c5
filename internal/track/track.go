package track

import "sync"

// Tracker is a concurrency-safe registry of active jobs keyed by source
// URL. It enforces at most one live job per key and separately tracks
// which jobs are in the conversion sub-phase. A single mutex guards both
// sets so the admit/release invariant holds across all workers.
type Tracker struct {
	mu         sync.Mutex
	active     map[string]struct{}
	converting map[string]struct{}
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		active:     make(map[string]struct{}),
		converting: make(map[string]struct{}),
	}
}

// TryAdmit registers a URL as active. It returns false if a job for the
// URL is already live; the caller must treat that as a duplicate and skip.
func (t *Tracker) TryAdmit(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[url]; ok {
		return false
	}
	t.active[url] = struct{}{}
	return true
}

// MarkConverting flags an admitted job as being in the conversion phase.
// Unknown URLs are ignored.
func (t *Tracker) MarkConverting(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[url]; ok {
		t.converting[url] = struct{}{}
	}
}

// IsConverting reports whether the job for a URL is in the conversion phase.
func (t *Tracker) IsConverting(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.converting[url]
	return ok
}

// Release removes a URL from the registry, making it eligible for a new
// job. It must be called on every exit path of a worker.
func (t *Tracker) Release(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, url)
	delete(t.converting, url)
}

// ActiveCount returns the number of live jobs
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// ConvertingCount returns the number of jobs in the conversion phase
func (t *Tracker) ConvertingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.converting)
}
