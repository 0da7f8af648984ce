// internal/cache/payout.go

// Package cache holds the single piece of in-process shared state this
// service owns: a short-TTL slot for the payout-phase flag.
package cache

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// PhaseSource supplies the authoritative payout-phase flag, normally
// backed by the game_state row in the data store.
type PhaseSource interface {
	PayoutPhase(ctx context.Context) (bool, error)
}

// Payout caches the payout-phase flag for a short TTL. The flag is read
// on every attempt and every prompt-construction decision but only
// changes as a side effect of a win, so a ~1s staleness bound removes
// redundant round-trips under load.
type Payout struct {
	source PhaseSource
	ttl    time.Duration
	now    func() time.Time // injectable clock for deterministic expiry in tests

	mu      sync.Mutex
	value   bool
	held    bool // slot holds a previously fetched value
	expires time.Time
}

// NewPayout creates an empty cache over the given source.
func NewPayout(source PhaseSource, ttl time.Duration) *Payout {
	return &Payout{source: source, ttl: ttl, now: time.Now}
}

// IsActive reports whether the payout phase is currently active.
//
// A fresh slot is served without contacting the source. An empty or
// expired slot triggers exactly one refresh; if the refresh fails, the
// previous value is returned even when expired (degraded read), and
// with no previous value the answer is false — the flag gates a costly
// behavior, so the safe assumption is the normal phase.
func (p *Payout) IsActive(ctx context.Context) bool {
	p.mu.Lock()
	if p.held && p.now().Before(p.expires) {
		v := p.value
		p.mu.Unlock()
		return v
	}
	p.mu.Unlock()

	active, err := p.source.PayoutPhase(ctx)
	if err != nil {
		log.WithError(err).Error("Payout phase refresh failed")
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.held {
			return p.value
		}
		return false
	}

	// Last writer wins; value and expiry always move together.
	p.mu.Lock()
	p.value = active
	p.held = true
	p.expires = p.now().Add(p.ttl)
	p.mu.Unlock()
	return active
}

// Invalidate clears the slot so the next read is forced to refresh.
// Must be called after any operation that resets game state.
func (p *Payout) Invalidate() {
	p.mu.Lock()
	p.value = false
	p.held = false
	p.expires = time.Time{}
	p.mu.Unlock()
}
