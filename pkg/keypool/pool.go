// Package keypool manages a small set of quota-limited API credentials,
// rotating between them and throttling so that each key stays under its
// requests-per-minute ceiling.
package keypool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// MaxExtraKeys caps caller-supplied keys. The default key is always kept.
	MaxExtraKeys = 5

	// rotateAfter forces rotation to the next least-used key after this many
	// consecutive grants on one key, independent of the RPM limit.
	rotateAfter = 10

	window = 60 * time.Second

	// slack added when sleeping until the oldest window entry ages out.
	slack = 100 * time.Millisecond
)

// ErrAllKeysExhausted is returned when every credential has been reported
// quota-limited within the current window. Callers should treat it as
// retryable after the window passes.
var ErrAllKeysExhausted = errors.New("keypool: all credentials exhausted")

type keyState struct {
	grants      []time.Time // grant timestamps inside the trailing window
	consecutive int
	exhausted   bool
	exhaustedAt time.Time
	lastUsed    time.Time
}

// Pool is safe for concurrent use by multiple planning requests. Window and
// exhaustion bookkeeping is kept per credential in a registry shared by
// every view derived from the same pool, so state is process-wide: it is
// mutated under lock on every grant and only ever reset by time passing.
type Pool struct {
	mu     *sync.Mutex
	states map[string]*keyState
	keys   []string // this view's credential order
	rpm    int
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// New builds a pool from one default key plus up to MaxExtraKeys extra keys.
// Blank and duplicate keys are discarded; extras beyond the cap are ignored.
func New(defaultKey string, extraKeys []string, rpm int) *Pool {
	p := &Pool{
		mu:     &sync.Mutex{},
		states: make(map[string]*keyState),
		rpm:    rpm,
		now:    time.Now,
		sleep:  sleepCtx,
	}
	p.add(defaultKey)
	accepted := 0
	for _, k := range extraKeys {
		if accepted >= MaxExtraKeys {
			break
		}
		if p.add(k) {
			accepted++
		}
	}
	return p
}

// Derive returns a view of this pool widened with caller-supplied keys for
// one request. The per-credential registry stays shared, so a derived view
// never resets or duplicates the window of the default and operator keys,
// and the same caller key seen on two requests shares one budget too.
func (p *Pool) Derive(extraKeys []string) *Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := &Pool{
		mu:     p.mu,
		states: p.states,
		keys:   append([]string{}, p.keys...),
		rpm:    p.rpm,
		now:    p.now,
		sleep:  p.sleep,
	}
	accepted := 0
	for _, k := range extraKeys {
		if accepted >= MaxExtraKeys {
			break
		}
		if d.add(k) {
			accepted++
		}
	}
	return d
}

// add registers a trimmed, non-blank key not already in this view. The
// caller holds p.mu except during construction. Reports whether the key
// was appended.
func (p *Pool) add(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, k := range p.keys {
		if k == key {
			return false
		}
	}
	if _, ok := p.states[key]; !ok {
		p.states[key] = &keyState{}
	}
	p.keys = append(p.keys, key)
	return true
}

// Size returns the number of credentials in this view.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Acquire blocks until a credential may be used and returns it. It returns
// ErrAllKeysExhausted when every key has been reported quota-limited, and
// the context error if ctx is cancelled while waiting.
func (p *Pool) Acquire(ctx context.Context) (string, error) {
	for {
		key, wait, err := p.tryAcquire()
		if err != nil {
			return "", err
		}
		if wait == 0 {
			return key, nil
		}
		if err := p.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
}

// ReportLimited marks a credential as quota-exhausted for the remainder of
// its window. Call it when the provider answers with a 429-class error.
func (p *Pool) ReportLimited(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ks, ok := p.states[key]; ok {
		ks.exhausted = true
		ks.exhaustedAt = p.now()
		ks.consecutive = 0
	}
}

// tryAcquire returns either a granted key, or a duration to sleep before
// retrying, or ErrAllKeysExhausted.
func (p *Pool) tryAcquire() (string, time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.expire(now)

	if len(p.keys) == 0 {
		return "", 0, ErrAllKeysExhausted
	}

	candidates := p.selectionOrder()
	allExhausted := true
	for _, key := range candidates {
		if !p.states[key].exhausted {
			allExhausted = false
			break
		}
	}
	if allExhausted {
		return "", 0, ErrAllKeysExhausted
	}

	for _, key := range candidates {
		ks := p.states[key]
		if ks.exhausted {
			continue
		}
		if len(ks.grants) >= p.rpm {
			continue // saturated, try the next key
		}
		ks.grants = append(ks.grants, now)
		ks.lastUsed = now
		ks.consecutive++
		if ks.consecutive >= rotateAfter {
			// Reset the streak and push this key to the back of the LRU
			// order by leaving lastUsed at now; the next call picks another.
			ks.consecutive = 0
		}
		return key, 0, nil
	}

	// Every usable key is saturated: wait until the oldest grant of the
	// least-recently-used usable key leaves the window.
	var wait time.Duration
	for _, key := range candidates {
		ks := p.states[key]
		if ks.exhausted || len(ks.grants) == 0 {
			continue
		}
		d := window - now.Sub(ks.grants[0]) + slack
		if wait == 0 || d < wait {
			wait = d
		}
	}
	if wait <= 0 {
		wait = slack
	}
	return "", wait, nil
}

// selectionOrder returns keys least-recently-used first, except that a key
// in the middle of a streak (recent consecutive grants below the rotation
// threshold) keeps priority so requests stick to one key between rotations.
func (p *Pool) selectionOrder() []string {
	ordered := make([]string, len(p.keys))
	copy(ordered, p.keys)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && p.before(ordered[j], ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func (p *Pool) before(a, b string) bool {
	// An active streak wins; otherwise least-recently-used first.
	sa, sb := p.states[a], p.states[b]
	if (sa.consecutive > 0) != (sb.consecutive > 0) {
		return sa.consecutive > 0
	}
	return sa.lastUsed.Before(sb.lastUsed)
}

// expire drops window entries older than 60s and clears exhaustion marks
// whose window has passed. Callers hold p.mu.
func (p *Pool) expire(now time.Time) {
	cutoff := now.Add(-window)
	for _, ks := range p.states {
		kept := ks.grants[:0]
		for _, ts := range ks.grants {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		ks.grants = kept
		if ks.exhausted && ks.exhaustedAt.Before(cutoff) {
			ks.exhausted = false
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
