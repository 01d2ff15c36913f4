package keypool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives the pool without real sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestPool(t *testing.T, defaultKey string, extras []string, rpm int) (*Pool, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	p := New(defaultKey, extras, rpm)
	p.now = clock.Now
	p.sleep = func(ctx context.Context, d time.Duration) error {
		clock.Advance(d)
		return nil
	}
	return p, clock
}

func TestNewDiscardsBlankAndDuplicateKeys(t *testing.T) {
	p, _ := newTestPool(t, "default", []string{"", "  ", "default", "k1", "k1", "k2"}, 10)
	assert.Equal(t, 3, p.Size()) // default, k1, k2
}

func TestNewTruncatesExtraKeysToFive(t *testing.T) {
	extras := []string{"k1", "k2", "k3", "k4", "k5", "k6"}
	p, _ := newTestPool(t, "default", extras, 10)
	assert.Equal(t, 6, p.Size())

	// Drain far more grants than five keys could need and verify k6 never
	// shows up.
	granted := make(map[string]int)
	for i := 0; i < 120; i++ {
		key, err := p.Acquire(context.Background())
		assert.NoError(t, err)
		granted[key]++
	}
	assert.Zero(t, granted["k6"])
}

func TestSlidingWindowInvariant(t *testing.T) {
	const rpm = 5
	p, clock := newTestPool(t, "only", nil, rpm)

	type grant struct{ at time.Time }
	var grants []grant

	// Request steadily for three minutes of simulated time.
	for i := 0; i < 40; i++ {
		key, err := p.Acquire(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "only", key)
		grants = append(grants, grant{at: clock.now})
		clock.Advance(2 * time.Second)
	}

	// Every trailing 60s window must contain at most rpm grants.
	for _, g := range grants {
		count := 0
		for _, other := range grants {
			if !other.at.After(g.at) && other.at.After(g.at.Add(-60*time.Second)) {
				count++
			}
		}
		assert.LessOrEqual(t, count, rpm, "window ending at %v", g.at)
	}
}

func TestAcquireRotatesWhenKeySaturated(t *testing.T) {
	p, _ := newTestPool(t, "a", []string{"b"}, 2)

	seen := make(map[string]int)
	for i := 0; i < 4; i++ {
		key, err := p.Acquire(context.Background())
		assert.NoError(t, err)
		seen[key]++
	}
	// Both keys had capacity for 2 each; nothing should have slept.
	assert.Equal(t, 2, seen["a"])
	assert.Equal(t, 2, seen["b"])
}

func TestAcquireSleepsUntilWindowFrees(t *testing.T) {
	p, clock := newTestPool(t, "only", nil, 1)

	start := clock.now
	_, err := p.Acquire(context.Background())
	assert.NoError(t, err)

	// Second acquire must wait for the first grant to age out.
	_, err = p.Acquire(context.Background())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, clock.now.Sub(start), 60*time.Second)
}

func TestProactiveRotationAfterConsecutiveUses(t *testing.T) {
	p, _ := newTestPool(t, "a", []string{"b"}, 100)

	var sequence []string
	for i := 0; i < 12; i++ {
		key, err := p.Acquire(context.Background())
		assert.NoError(t, err)
		sequence = append(sequence, key)
	}

	// First ten grants stick to one key, then the pool rotates.
	first := sequence[0]
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, sequence[i])
	}
	assert.NotEqual(t, first, sequence[10])
}

func TestReportLimitedForcesRotation(t *testing.T) {
	p, _ := newTestPool(t, "a", []string{"b"}, 100)

	key, err := p.Acquire(context.Background())
	assert.NoError(t, err)
	p.ReportLimited(key)

	next, err := p.Acquire(context.Background())
	assert.NoError(t, err)
	assert.NotEqual(t, key, next)
}

func TestAllKeysExhaustedFailsFast(t *testing.T) {
	p, _ := newTestPool(t, "a", []string{"b"}, 100)
	p.ReportLimited("a")
	p.ReportLimited("b")

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAllKeysExhausted)
}

func TestDerivedViewsShareWindowState(t *testing.T) {
	base, clock := newTestPool(t, "shared", nil, 2)
	start := clock.now

	// Two back-to-back requests, each with its own derived view.
	first := base.Derive(nil)
	for i := 0; i < 2; i++ {
		key, err := first.Acquire(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "shared", key)
	}

	// The credential's window budget is spent; a grant through a second
	// view must wait for the window, not start from a fresh count.
	second := base.Derive(nil)
	_, err := second.Acquire(context.Background())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, clock.now.Sub(start), 60*time.Second)
}

func TestDeriveSharesExhaustionAndCallerKeys(t *testing.T) {
	base, _ := newTestPool(t, "a", nil, 100)

	first := base.Derive([]string{"caller"})
	assert.Equal(t, 2, first.Size())
	first.ReportLimited("a")
	first.ReportLimited("caller")
	_, err := first.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAllKeysExhausted)

	// A later request supplying the same caller key sees its state.
	second := base.Derive([]string{"caller"})
	_, err = second.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAllKeysExhausted)

	// The base view shares the default key's exhaustion too.
	_, err = base.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAllKeysExhausted)
}

func TestDeriveCapsAndDeduplicatesCallerKeys(t *testing.T) {
	base, _ := newTestPool(t, "default", []string{"op"}, 10)

	derived := base.Derive([]string{"default", "op", "", "c1", "c1", "c2", "c3", "c4", "c5", "c6"})
	// default + op + five accepted caller keys; c6 is beyond the cap.
	assert.Equal(t, 7, derived.Size())
	assert.Equal(t, 2, base.Size()) // the base view is never widened
}

func TestExhaustionClearsAfterWindow(t *testing.T) {
	p, clock := newTestPool(t, "a", nil, 100)
	p.ReportLimited("a")

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAllKeysExhausted)

	clock.Advance(61 * time.Second)
	key, err := p.Acquire(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "a", key)
}
