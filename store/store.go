package store

import (
	"context"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// ErrNotFound is wrapped by Load and Delete when no model has the handle.
var ErrNotFound = perrors.New("store: model not found")

// ErrExists is wrapped by Save when the generated handle is already taken.
var ErrExists = perrors.New("store: handle already exists")

// Store saves and restores models. Implementations are safe for
// concurrent use. Every error is marked errors.ErrPersistence.
type Store interface {
	// Save persists m under a new unique handle.
	Save(ctx context.Context, m *liblinear.Model) (Handle, error)
	// Load returns a freshly decoded model; callers own it.
	Load(ctx context.Context, h Handle) (*liblinear.Model, error)
	// Delete removes the model.
	Delete(ctx context.Context, h Handle) error
}

type options struct {
	codec     Codec
	generator *HandleGenerator
}

// Option configures a backend.
type Option func(*options)

// WithCompression sets the payload compression for new envelopes.
// Loading accepts every compression regardless of this setting.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.codec.Compression = c
	}
}

// WithHandleGenerator replaces the process-wide handle generator.
func WithHandleGenerator(g *HandleGenerator) Option {
	return func(o *options) {
		o.generator = g
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{generator: defaultGenerator}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := compressorFor(o.codec.Compression); !ok {
		return o, perrors.NewValidationError("compression", "unknown compression", o.codec.Compression.String())
	}
	return o, nil
}

func persistenceError(op string, h Handle, err error) error {
	return perrors.NewPersistenceError(op, string(h), err)
}
