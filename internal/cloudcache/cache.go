// Package cloudcache memoizes synthetic clouds so repeated requests for the
// same frontier, directions, size, seed and shape do not regenerate them.
package cloudcache

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
	"github.com/MikeSquared-Agency/Frontier/internal/metrics"
)

// Key identifies one generated cloud.
type Key struct {
	Fingerprint uint64
	Dirs        frontier.Directions
	Size        int
	Seed        uint64
	Shape       string
}

// NewKey fingerprints the frontier and resolves directions so equivalent
// requests share an entry.
func NewKey(points []frontier.Point, dirs frontier.Directions, size int, seed uint64, shape string) Key {
	if shape == "" {
		shape = frontier.DefaultShapeName
	}
	return Key{
		Fingerprint: Fingerprint(points),
		Dirs:        dirs.Resolve(),
		Size:        size,
		Seed:        seed,
		Shape:       shape,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%016x/%s,%s,%s/%d/%d/%s",
		k.Fingerprint, k.Dirs.F1, k.Dirs.F2, k.Dirs.F3, k.Size, k.Seed, k.Shape)
}

// Fingerprint is an FNV-1a hash over point ids and objective bits.
func Fingerprint(points []frontier.Point) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, p := range points {
		io.WriteString(h, p.ID)
		h.Write([]byte{0})
		writeFloat(p.F1)
		writeFloat(p.F2)
		if p.F3 != nil {
			h.Write([]byte{1})
			writeFloat(*p.F3)
		} else {
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// Generator produces the cloud for a key.
type Generator interface {
	Generate(key Key, points []frontier.Point) (frontier.Cloud, error)
}

// Synth generates clouds with a fresh seeded Synthesizer per call, since the
// underlying random source is not safe for concurrent use.
type Synth struct {
	Logger *slog.Logger
}

func (s Synth) Generate(key Key, points []frontier.Point) (frontier.Cloud, error) {
	shape, err := frontier.ShapeByName(key.Shape)
	if err != nil {
		return frontier.Cloud{}, err
	}
	start := time.Now()
	cloud := frontier.NewSynthesizer(shape, frontier.NewRand(key.Seed), s.Logger).
		Synthesize(points, key.Dirs, key.Size)

	metrics.SynthesisSeconds.Observe(time.Since(start).Seconds())
	metrics.CloudsGenerated.WithLabelValues(shape.Name).Inc()
	metrics.CloudPoints.Observe(float64(len(cloud.Points)))
	metrics.MalformedAnchors.Add(float64(cloud.MalformedAnchors))
	return cloud, nil
}

// Cache is a bounded, expiring cloud cache. Concurrent misses on one key share
// a single generation.
type Cache struct {
	entries *lru[Key, frontier.Cloud]
	gen     Generator
	group   singleflight.Group
	logger  *slog.Logger
}

func New(capacity int, ttl time.Duration, gen Generator, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		entries: newLRU[Key, frontier.Cloud](capacity, ttl),
		gen:     gen,
		logger:  logger,
	}
}

// Get returns the cached cloud for key, generating it on a miss. The bool
// reports whether the result came from the cache.
func (c *Cache) Get(key Key, points []frontier.Point) (frontier.Cloud, bool, error) {
	if cloud, ok := c.entries.get(key); ok {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return cloud, true, nil
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	v, err, shared := c.group.Do(key.String(), func() (interface{}, error) {
		if cloud, ok := c.entries.get(key); ok {
			return cloud, nil
		}
		cloud, err := c.gen.Generate(key, points)
		if err != nil {
			return nil, err
		}
		c.entries.put(key, cloud)
		return cloud, nil
	})
	if err != nil {
		return frontier.Cloud{}, false, fmt.Errorf("generate cloud %s: %w", key, err)
	}
	if shared {
		c.logger.Debug("shared in-flight cloud generation", "key", key.String())
	}
	return v.(frontier.Cloud), false, nil
}

// Len returns the number of cached clouds, expired ones included until touched.
func (c *Cache) Len() int { return c.entries.len() }

// Purge drops every entry.
func (c *Cache) Purge() { c.entries.purge() }
