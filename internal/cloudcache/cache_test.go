package cloudcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

type countingGen struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (g *countingGen) Generate(key Key, points []frontier.Point) (frontier.Cloud, error) {
	g.calls.Add(1)
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return frontier.Cloud{}, g.err
	}
	return frontier.Cloud{Requested: key.Size, Points: []frontier.Point{{ID: "cloud-0"}}}, nil
}

func testFrontier() []frontier.Point {
	return []frontier.Point{
		{ID: "p1", Rank: 1, F1: 100, F2: 5},
		{ID: "p2", Rank: 2, F1: 200, F2: 3},
	}
}

func TestGetHitAfterMiss(t *testing.T) {
	gen := &countingGen{}
	c := New(4, time.Minute, gen, nil)
	key := NewKey(testFrontier(), frontier.Directions{}, 100, 7, "")

	cloud, hit, err := c.Get(key, testFrontier())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 100, cloud.Requested)

	_, hit, err = c.Get(key, testFrontier())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := NewKey(testFrontier(), frontier.Directions{}, 100, 7, "dense")
	assert.Equal(t, base, NewKey(testFrontier(), frontier.IndustryLight.Directions(), 100, 7, ""))

	moved := testFrontier()
	moved[1].F2 = 3.5
	assert.NotEqual(t, base, NewKey(moved, frontier.Directions{}, 100, 7, "dense"))
	assert.NotEqual(t, base, NewKey(testFrontier(), frontier.IndustryHeavy.Directions(), 100, 7, "dense"))
	assert.NotEqual(t, base, NewKey(testFrontier(), frontier.Directions{}, 101, 7, "dense"))
	assert.NotEqual(t, base, NewKey(testFrontier(), frontier.Directions{}, 100, 8, "dense"))
	assert.NotEqual(t, base, NewKey(testFrontier(), frontier.Directions{}, 100, 7, "envelope"))
}

func TestFingerprintSeesF3Presence(t *testing.T) {
	with := testFrontier()
	zero := 0.0
	with[0].F3 = &zero
	assert.NotEqual(t, Fingerprint(testFrontier()), Fingerprint(with))
}

func TestConcurrentMissesShareGeneration(t *testing.T) {
	gen := &countingGen{release: make(chan struct{})}
	c := New(4, time.Minute, gen, nil)
	key := NewKey(testFrontier(), frontier.Directions{}, 50, 1, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Get(key, testFrontier())
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestEntriesExpire(t *testing.T) {
	gen := &countingGen{}
	c := New(4, time.Second, gen, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.entries.now = func() time.Time { return now }
	key := NewKey(testFrontier(), frontier.Directions{}, 10, 1, "")

	_, _, err := c.Get(key, testFrontier())
	require.NoError(t, err)
	now = now.Add(500 * time.Millisecond)
	_, hit, _ := c.Get(key, testFrontier())
	assert.True(t, hit)

	now = now.Add(time.Second)
	_, hit, _ = c.Get(key, testFrontier())
	assert.False(t, hit)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	gen := &countingGen{}
	c := New(2, time.Minute, gen, nil)
	k1 := NewKey(testFrontier(), frontier.Directions{}, 1, 1, "")
	k2 := NewKey(testFrontier(), frontier.Directions{}, 2, 1, "")
	k3 := NewKey(testFrontier(), frontier.Directions{}, 3, 1, "")

	c.Get(k1, testFrontier())
	c.Get(k2, testFrontier())
	c.Get(k1, testFrontier()) // k1 now most recent
	c.Get(k3, testFrontier()) // evicts k2

	_, hit, _ := c.Get(k1, testFrontier())
	assert.True(t, hit)
	_, hit, _ = c.Get(k2, testFrontier())
	assert.False(t, hit)
}

func TestGenerationErrorIsNotCached(t *testing.T) {
	gen := &countingGen{err: errors.New("boom")}
	c := New(2, time.Minute, gen, nil)
	key := NewKey(testFrontier(), frontier.Directions{}, 1, 1, "")

	_, _, err := c.Get(key, testFrontier())
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestSynthGenerate(t *testing.T) {
	key := NewKey(testFrontier(), frontier.Directions{}, 200, 42, "envelope")
	a, err := Synth{}.Generate(key, testFrontier())
	require.NoError(t, err)
	b, err := Synth{}.Generate(key, testFrontier())
	require.NoError(t, err)

	assert.Len(t, a.Points, 200)
	assert.Equal(t, a, b, "same key yields the same cloud")

	_, err = Synth{}.Generate(NewKey(testFrontier(), frontier.Directions{}, 1, 1, "nope"), testFrontier())
	assert.Error(t, err)
}
