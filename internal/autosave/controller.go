// Package autosave provides the debounced-save discipline of the profile
// editor: one cancellable timer per section key, independent of any
// transport or UI lifecycle.
package autosave

import (
	"log"
	"sync"
	"time"
)

// DefaultDebounce is the idle window after the last edit before an
// automatic save fires.
const DefaultDebounce = 800 * time.Millisecond

// SaveFunc persists the pending state of one section.
type SaveFunc func() error

type entry struct {
	timer *time.Timer
	save  SaveFunc
	gen   uint64 // bumped on every Schedule/Flush to invalidate stale timer fires
}

// Controller owns a debounce timer per section key. Schedule replaces any
// pending timer for the key, so only the last edit of a burst is saved
// (debounce, not throttle). A failed automatic save is logged and the key
// stays dirty; there is no retry until the next Schedule or Flush.
type Controller struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*entry

	// OnError receives failures of timer-fired saves. Defaults to a log
	// line; the failure is never surfaced to the user for silent saves.
	OnError func(key string, err error)
}

// New returns a Controller firing saves after the given idle delay.
func New(delay time.Duration) *Controller {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Controller{
		delay:   delay,
		pending: make(map[string]*entry),
		OnError: func(key string, err error) {
			log.Printf("autosave: save for %q failed: %v", key, err)
		},
	}
}

// Schedule marks the key dirty with the given save and (re)starts its
// timer. The save captures the state as of this call; an earlier pending
// save for the same key is discarded.
func (c *Controller) Schedule(key string, save SaveFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.pending[key]
	if !ok {
		e = &entry{}
		c.pending[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.save = save
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(c.delay, func() { c.fire(key, gen) })
}

func (c *Controller) fire(key string, gen uint64) {
	c.mu.Lock()
	e, ok := c.pending[key]
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	save := e.save
	c.mu.Unlock()

	if err := save(); err != nil {
		// Key stays pending so a later Flush or manual save retries.
		c.OnError(key, err)
		return
	}
	c.clearIfCurrent(key, gen)
}

// Flush cancels the key's pending timer and runs its save synchronously.
// Returns nil when the key is clean. On failure the key stays dirty and
// the error is returned for the caller to surface.
func (c *Controller) Flush(key string) error {
	c.mu.Lock()
	e, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	save := e.save
	c.mu.Unlock()

	if err := save(); err != nil {
		return err
	}
	c.clearIfCurrent(key, gen)
	return nil
}

// Cancel drops the key's pending save without running it.
func (c *Controller) Cancel(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.pending[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.pending, key)
	}
}

// CancelAll drops every pending save, e.g. on shutdown.
func (c *Controller) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.pending {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(c.pending, key)
	}
}

// Dirty reports whether the key has an unsaved pending state.
func (c *Controller) Dirty(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

func (c *Controller) clearIfCurrent(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.pending[key]; ok && e.gen == gen {
		delete(c.pending, key)
	}
}
