package store

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"sync/atomic"
	"time"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// Handle names one saved model.
type Handle string

// Validate accepts non-empty handles of at most 128 characters drawn from
// [0-9a-z-], which keeps them safe as file names.
func (h Handle) Validate() error {
	if h == "" || len(h) > 128 {
		return perrors.NewValidationError("handle", "must be 1-128 characters", string(h))
	}
	for _, r := range h {
		if (r < '0' || r > '9') && (r < 'a' || r > 'z') && r != '-' {
			return perrors.NewValidationError("handle", "may only contain [0-9a-z-]", string(h))
		}
	}
	return nil
}

// HandleGenerator produces handles of the form
// <unix-nanos>-<process tag>-<counter>, all base 36. The counter makes
// handles from one generator distinct; the random tag separates processes
// sharing a backend.
type HandleGenerator struct {
	tag     string
	counter atomic.Uint64
	now     func() time.Time
}

// NewHandleGenerator creates a generator with a fresh random tag.
func NewHandleGenerator() *HandleGenerator {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		binary.BigEndian.PutUint64(b[:], uint64(time.Now().UnixNano()))
	}
	return &HandleGenerator{
		tag: strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36),
		now: time.Now,
	}
}

// Next returns a handle never returned before by g.
func (g *HandleGenerator) Next() Handle {
	n := g.counter.Add(1)
	return Handle(strconv.FormatInt(g.now().UnixNano(), 36) + "-" + g.tag + "-" + strconv.FormatUint(n, 36))
}

var defaultGenerator = NewHandleGenerator()
