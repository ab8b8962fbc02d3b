package pace

import (
	"context"
	"sync"
	"time"

	"github.com/nagelea/keysentry/pkg/errors"
)

// Clock abstracts time for the pacer so tests can drive it directly
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) (err error) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "pacing interrupted")
	}
}

func SystemClock() Clock {
	return systemClock{}
}

// Pacer spaces calls to an upstream host. Tokens refill at a fixed interval
// up to the burst size; a cool-down empties the bucket and blocks refills
// until the penalty window has passed.
type Pacer struct {
	interval time.Duration
	burst    int
	clock    Clock

	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
	holdUntil  time.Time
}

func NewPacer(interval time.Duration, burst int, clock Clock) *Pacer {
	if burst < 1 {
		burst = 1
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Pacer{
		interval:   interval,
		burst:      burst,
		clock:      clock,
		tokens:     burst,
		lastRefill: clock.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled
func (p *Pacer) Wait(ctx context.Context) (err error) {
	for {
		wait := p.take()
		if wait == 0 {
			return
		}
		if err = p.clock.Sleep(ctx, wait); err != nil {
			return
		}
	}
}

// CoolDown drains the bucket and suspends refills for the penalty window.
// Called when the upstream signals throttling.
func (p *Pacer) CoolDown(penalty time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	p.tokens = 0
	p.lastRefill = now
	until := now.Add(penalty)
	if until.After(p.holdUntil) {
		p.holdUntil = until
	}
}

// take consumes a token if one is available, otherwise returns how long to
// wait before trying again
func (p *Pacer) take() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	if now.Before(p.holdUntil) {
		return p.holdUntil.Sub(now)
	}
	p.refill(now)

	if p.tokens > 0 {
		p.tokens--
		return 0
	}
	next := p.lastRefill.Add(p.interval)
	if !next.After(now) {
		return p.interval
	}
	return next.Sub(now)
}

func (p *Pacer) refill(now time.Time) {
	if p.interval <= 0 {
		p.tokens = p.burst
		return
	}
	elapsed := now.Sub(p.lastRefill)
	refills := int(elapsed / p.interval)
	if refills == 0 {
		return
	}
	p.tokens += refills
	if p.tokens > p.burst {
		p.tokens = p.burst
	}
	p.lastRefill = p.lastRefill.Add(time.Duration(refills) * p.interval)
}
