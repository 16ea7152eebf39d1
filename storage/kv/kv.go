// Package kv defines the durable key-value medium the gradebook persists to.
package kv

import (
	"context"

	"github.com/pkg/errors"
)

// ErrUnavailable is returned by a Medium that cannot persist anything.
// Stores treat it as "no persistence": reads are empty and writes are dropped.
var ErrUnavailable = errors.New("persistence unavailable")

// Medium is a durable key-value store of raw JSON documents.
// Implementations must be safe for concurrent use.
type Medium interface {
	// Get returns the values of keys. Missing keys are absent from the map.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Put writes all entries atomically: either every entry is stored or none is.
	Put(ctx context.Context, entries map[string][]byte) error
	Close() error
}

type unavailable struct{}

var _ Medium = unavailable{}

// Unavailable returns a Medium that fails every operation with ErrUnavailable.
func Unavailable() Medium { return unavailable{} }

func (unavailable) Get(context.Context, ...string) (map[string][]byte, error) {
	return nil, ErrUnavailable
}

func (unavailable) Put(context.Context, map[string][]byte) error { return ErrUnavailable }

func (unavailable) Close() error { return nil }

// IsUnavailable reports whether the cause of err is ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Cause(err) == ErrUnavailable
}

// copyBytes returns a copy of b, so callers never share buffers with a Medium.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// Clone deep-copies entries.
func Clone(entries map[string][]byte) map[string][]byte {
	res := make(map[string][]byte, len(entries))
	for k, v := range entries {
		res[k] = copyBytes(v)
	}
	return res
}
