// Package debounce coalesces bursts of triggers into one delayed call.
package debounce

import (
	"sync"
	"time"
)

var afterFunc = time.AfterFunc

// Group debounces triggers per key: each key fires fn(key) once, delay
// after its latest Trigger.
type Group struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(key string)
	pending map[string]*pending
	stopped bool
}

type pending struct {
	timer *time.Timer
	gen   uint64
}

func New(delay time.Duration, fn func(key string)) *Group {
	return &Group{delay: delay, fn: fn, pending: make(map[string]*pending)}
}

// Trigger (re)starts the timer for key.
func (g *Group) Trigger(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	p := g.pending[key]
	if p == nil {
		p = &pending{}
		g.pending[key] = p
	} else if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = afterFunc(g.delay, func() { g.fire(key, gen) })
}

func (g *Group) fire(key string, gen uint64) {
	g.mu.Lock()
	p := g.pending[key]
	if g.stopped || p == nil || p.gen != gen {
		g.mu.Unlock()
		return
	}
	delete(g.pending, key)
	g.mu.Unlock()
	g.fn(key)
}

// Pending reports how many keys are waiting to fire.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Stop cancels all pending calls. Later triggers are ignored.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	for key, p := range g.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(g.pending, key)
	}
}
