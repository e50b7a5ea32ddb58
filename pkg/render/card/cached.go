package card

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/matzehuels/cardsheet/pkg/cache"
	"github.com/matzehuels/cardsheet/pkg/observability"
)

// CachedRasterizer stores rendered cards as PNG in a cache.
type CachedRasterizer struct {
	inner Rasterizer
	cache cache.Cache
	keyer cache.Keyer

	// OnLookup, when set, is called with the outcome of every cache lookup.
	OnLookup func(ctx context.Context, key string, hit bool)
}

// NewCached wraps inner with c. A nil keyer uses the default.
func NewCached(inner Rasterizer, c cache.Cache, k cache.Keyer) *CachedRasterizer {
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &CachedRasterizer{inner: inner, cache: c, keyer: k}
}

// Rasterize returns the cached card or draws and caches it. Cache errors
// fall back to drawing.
func (r *CachedRasterizer) Rasterize(ctx context.Context, c Card, scale float64) (image.Image, error) {
	key := r.keyer.CardKey(c.ID, cache.CardKeyOpts{
		ContentHash: c.Fingerprint(),
		Background:  c.BackgroundURL,
		Scale:       scale,
	})

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		if img, err := png.Decode(bytes.NewReader(data)); err == nil {
			r.lookup(ctx, key, true)
			return img, nil
		}
	}
	r.lookup(ctx, key, false)

	img, err := r.inner.Rasterize(ctx, c, scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err == nil {
		if r.cache.Set(ctx, key, buf.Bytes(), cache.CardTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "card", buf.Len())
		}
	}
	return img, nil
}

func (r *CachedRasterizer) lookup(ctx context.Context, key string, hit bool) {
	if hit {
		observability.Cache().OnCacheHit(ctx, "card")
	} else {
		observability.Cache().OnCacheMiss(ctx, "card")
	}
	if r.OnLookup != nil {
		r.OnLookup(ctx, key, hit)
	}
}

var _ Rasterizer = (*CachedRasterizer)(nil)
