// Package pipeline coordinates cache lookups and image generation so a
// burst of identical requests costs one render.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"platzhalter/internal/cache"
	"platzhalter/internal/request"
)

// Renderer produces the encoded image for a request. Implementations must
// be safe for concurrent use across different requests.
type Renderer interface {
	Render(ctx context.Context, img request.Image) (bytes []byte, contentType string, err error)
}

// Result is the outcome of resolving one image request.
type Result struct {
	Bytes       []byte
	ContentType string
	ETag        string
	Hit         bool
}

// Resolver resolves requests against the store, deduplicating concurrent
// misses per key: at most one render runs for a key at a time, and every
// concurrent caller for that key receives the identical result or the
// identical error. Render errors are never cached; the next request for
// the key starts a fresh attempt.
type Resolver struct {
	store    cache.Store
	renderer Renderer
	group    singleflight.Group
	logger   *zap.Logger
}

func New(store cache.Store, renderer Renderer, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// Resolve returns the cached entry for the request's canonical key, or
// renders, persists and returns it on a miss. Store faults never fail the
// request: read errors degrade to a miss, write errors to an uncached
// response. If ctx is cancelled while waiting on another caller's render,
// Resolve returns early but the render itself keeps running for the
// remaining waiters.
func (r *Resolver) Resolve(ctx context.Context, img request.Image) (*Result, error) {
	key := cache.Normalize(img)

	if e, ok := r.lookup(ctx, key); ok {
		return result(key, e, true), nil
	}

	// The render must not die with the caller that happened to start it,
	// so it runs detached from this request's cancellation.
	genCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.generate(genCtx, key, img)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return result(key, res.Val.(cache.Entry), false), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) generate(ctx context.Context, key string, img request.Image) (cache.Entry, error) {
	// Another episode may have finished between this caller's miss and
	// winning the flight.
	if e, ok := r.lookup(ctx, key); ok {
		return e, nil
	}

	start := time.Now()
	bytes, contentType, err := r.renderer.Render(ctx, img)
	if err != nil {
		return cache.Entry{}, err
	}

	e := cache.Entry{
		Bytes:       bytes,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.store.Put(ctx, key, e); err != nil {
		// Serving the fresh bytes takes priority over caching them.
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	r.logger.Debug("rendered",
		zap.String("key", key),
		zap.Int("bytes", len(bytes)),
		zap.Duration("duration", time.Since(start)),
	)
	return e, nil
}

func (r *Resolver) lookup(ctx context.Context, key string) (cache.Entry, bool) {
	e, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return cache.Entry{}, false
	}
	return e, ok
}

func result(key string, e cache.Entry, hit bool) *Result {
	return &Result{
		Bytes:       e.Bytes,
		ContentType: e.ContentType,
		ETag:        etag(key),
		Hit:         hit,
	}
}

// etag derives a short strong validator from the canonical key; entries
// are immutable per key, so the key identifies the bytes.
func etag(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}
