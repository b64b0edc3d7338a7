// Package cache stores raw API responses compressed in an external key value
// store.
package cache

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"time"

	"github.com/mdzio/go-logging"
	"github.com/redis/go-redis/v9"
)

var log = logging.Get("ebay-cache")

// Engine is the storage backend of a Cacher. Fetch returns nil without error
// for a missing key.
type Engine interface {
	Store(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Cacher compresses entries with deflate. It implements xmlapi.Cache.
type Cacher struct {
	engine Engine
}

// New creates a Cacher backed by redis.
func New(redisClient *redis.Client) *Cacher {
	return NewCacher(&redisEngine{redis: redisClient})
}

// NewCacher creates a Cacher for an arbitrary engine.
func NewCacher(engine Engine) *Cacher {
	return &Cacher{engine: engine}
}

// Store saves value under key for the duration ttl.
func (c *Cacher) Store(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	compressed, err := deflate(value)
	if err != nil {
		return fmt.Errorf("Compressing of cache entry %s failed: %w", key, err)
	}
	if err := c.engine.Store(ctx, key, compressed, ttl); err != nil {
		return fmt.Errorf("Storing of cache entry %s failed: %w", key, err)
	}
	log.Tracef("Stored cache entry %s (%d bytes, TTL %s)", key, len(compressed), ttl)
	return nil
}

// Fetch returns the entry for key. Backend errors and corrupted entries are
// reported as misses.
func (c *Cacher) Fetch(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.engine.Fetch(ctx, key)
	if err != nil {
		log.Warningf("Fetching of cache entry %s failed: %v", key, err)
		return nil, false
	}
	if value == nil {
		return nil, false
	}
	uncompressed, err := inflate(value)
	if err != nil {
		log.Warningf("Decompressing of cache entry %s failed: %v", key, err)
		return nil, false
	}
	return uncompressed, true
}

func deflate(uncompressed []byte) ([]byte, error) {
	var buffer bytes.Buffer
	// error only on invalid level
	writer, _ := flate.NewWriter(&buffer, flate.BestSpeed)
	if _, err := writer.Write(uncompressed); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(compressed))
	defer reader.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(reader); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
