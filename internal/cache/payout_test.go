// internal/cache/payout_test.go
package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource counts upstream reads and can be flipped into failure.
type fakeSource struct {
	value bool
	err   error
	calls int
}

func (f *fakeSource) PayoutPhase(ctx context.Context) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.value, nil
}

// fakeClock drives expiry deterministically without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPayout(src *fakeSource) (*Payout, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	p := NewPayout(src, time.Second)
	p.now = clock.now
	return p, clock
}

func TestIsActiveCachesWithinTTL(t *testing.T) {
	src := &fakeSource{value: true}
	p, _ := newTestPayout(src)

	assert.True(t, p.IsActive(context.Background()))
	assert.True(t, p.IsActive(context.Background()))
	assert.Equal(t, 1, src.calls, "second read within the TTL must not hit the source")
}

func TestIsActiveRefreshesAfterTTL(t *testing.T) {
	src := &fakeSource{value: true}
	p, clock := newTestPayout(src)

	require.True(t, p.IsActive(context.Background()))
	clock.advance(1500 * time.Millisecond)

	src.value = false
	assert.False(t, p.IsActive(context.Background()))
	assert.Equal(t, 2, src.calls, "expired slot must trigger exactly one refresh")
}

func TestIsActiveFallsBackToStaleValueOnError(t *testing.T) {
	src := &fakeSource{value: true}
	p, clock := newTestPayout(src)

	require.True(t, p.IsActive(context.Background()))

	clock.advance(2 * time.Second)
	src.err = errors.New("connection refused")

	assert.True(t, p.IsActive(context.Background()), "a failed refresh must serve the prior value, even expired")
	assert.Equal(t, 2, src.calls)
}

func TestIsActiveDefaultsFalseWithNoPriorValue(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	p, _ := newTestPayout(src)

	assert.False(t, p.IsActive(context.Background()))
}

func TestInvalidateForcesRefresh(t *testing.T) {
	src := &fakeSource{value: true}
	p, _ := newTestPayout(src)

	require.True(t, p.IsActive(context.Background()))

	p.Invalidate()
	src.value = false

	assert.False(t, p.IsActive(context.Background()), "read after invalidate must reflect fresh upstream state")
	assert.Equal(t, 2, src.calls)
}

func TestInvalidateClearsStaleFallback(t *testing.T) {
	src := &fakeSource{value: true}
	p, _ := newTestPayout(src)

	require.True(t, p.IsActive(context.Background()))
	p.Invalidate()

	// With the slot cleared there is nothing to degrade to.
	src.err = errors.New("connection refused")
	assert.False(t, p.IsActive(context.Background()))
}

func TestBuildSystemPrompt(t *testing.T) {
	const base = "You are a stubborn gatekeeper."

	src := &fakeSource{value: false}
	p, clock := newTestPayout(src)

	assert.Equal(t, base, p.BuildSystemPrompt(context.Background(), base))

	clock.advance(2 * time.Second)
	src.value = true
	got := p.BuildSystemPrompt(context.Background(), base)
	assert.Contains(t, got, base)
	assert.Contains(t, got, "PAYOUT PHASE ACTIVE")
}
