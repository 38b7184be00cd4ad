package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// CachedStore fronts another Store with an LRU of encoded envelopes.
// Hits are decoded on every Load, so callers never share a *Model.
type CachedStore struct {
	inner Store
	codec Codec
	cache *lru.Cache[Handle, []byte]
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore caches up to size models loaded from or saved to inner.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[Handle, []byte](size)
	if err != nil {
		return nil, perrors.NewValidationError("size", err.Error(), size)
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// Save stores m in inner and caches it under the returned handle.
func (s *CachedStore) Save(ctx context.Context, m *liblinear.Model) (Handle, error) {
	h, err := s.inner.Save(ctx, m)
	if err != nil {
		return "", err
	}
	if payload, err := s.codec.Encode(m); err == nil {
		s.cache.Add(h, payload)
	}
	return h, nil
}

// Load serves h from the cache, falling back to inner.
func (s *CachedStore) Load(ctx context.Context, h Handle) (*liblinear.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("load", h, perrors.WithStack(err))
	}
	if payload, ok := s.cache.Get(h); ok {
		m, err := s.codec.Decode(payload)
		if err == nil {
			return m, nil
		}
		s.cache.Remove(h)
	}

	m, err := s.inner.Load(ctx, h)
	if err != nil {
		return nil, err
	}
	if payload, err := s.codec.Encode(m); err == nil {
		s.cache.Add(h, payload)
	}
	return m, nil
}

// Delete removes h from inner and from the cache.
func (s *CachedStore) Delete(ctx context.Context, h Handle) error {
	s.cache.Remove(h)
	return s.inner.Delete(ctx, h)
}

// Len returns the number of cached models.
func (s *CachedStore) Len() int {
	return s.cache.Len()
}
