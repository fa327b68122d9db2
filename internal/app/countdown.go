package app

import (
	"context"
	"sync"
	"time"
)

// tickFunc consumes one countdown step of a session and reports whether the
// countdown is finished.
type tickFunc func(ctx context.Context, sessionID string) bool

// Countdown runs one ticker goroutine per live session.
type Countdown struct {
	interval time.Duration

	mu      sync.Mutex
	tick    tickFunc
	running map[string]*countdownEntry
}

type countdownEntry struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCountdown ticks every interval; a non-positive interval means one second.
func NewCountdown(interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{interval: interval, running: make(map[string]*countdownEntry)}
}

func (c *Countdown) bind(fn tickFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = fn
}

// Start begins ticking sessionID. Starting a session that is already running
// is a no-op.
func (c *Countdown) Start(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tick == nil {
		return
	}
	if _, ok := c.running[sessionID]; ok {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	entry := &countdownEntry{cancel: cancel, done: make(chan struct{})}
	c.running[sessionID] = entry
	go c.run(ctx, sessionID, entry, c.tick)
}

func (c *Countdown) run(ctx context.Context, sessionID string, entry *countdownEntry, fn tickFunc) {
	ticker := time.NewTicker(c.interval)
	defer func() {
		ticker.Stop()
		c.release(sessionID, entry)
		close(entry.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if fn(ctx, sessionID) {
				return
			}
		}
	}
}

func (c *Countdown) release(sessionID string, entry *countdownEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running[sessionID] == entry {
		delete(c.running, sessionID)
	}
	entry.cancel()
}

// Stop cancels the countdown of sessionID without waiting for it to exit, so
// it is safe to call from inside a tick.
func (c *Countdown) Stop(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.running[sessionID]; ok {
		entry.cancel()
		delete(c.running, sessionID)
	}
}

// Running reports whether sessionID currently has a live countdown.
func (c *Countdown) Running(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.running[sessionID]
	return ok
}

// StopAll cancels every countdown and waits for the goroutines to exit.
func (c *Countdown) StopAll() {
	c.mu.Lock()
	entries := make([]*countdownEntry, 0, len(c.running))
	for id, entry := range c.running {
		entry.cancel()
		entries = append(entries, entry)
		delete(c.running, id)
	}
	c.mu.Unlock()
	for _, entry := range entries {
		<-entry.done
	}
}
