package cache

import (
	"context"
	"time"
)

// NullCache backs --no-cache: every lookup misses, so each diagram goes to
// the rendering service. It is also the Renderer's default when no cache
// is configured.
type NullCache struct{}

func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data, so the next Get still misses.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
