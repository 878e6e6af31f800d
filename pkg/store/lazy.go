package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrUnavailable marks failures to reach the backing store.
var ErrUnavailable = errors.New("store unavailable")

// Gateway is a handle on a remote store whose connection may be established lazily.
type Gateway interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
}

// ConnectFunc dials the remote store and returns a ready handle.
type ConnectFunc[T any] func(ctx context.Context) (T, error)

// DiscardFunc releases a handle that lost the race to be published.
type DiscardFunc[T any] func(T)

// Lazy caches a single connection handle for the life of the process.
//
// Concurrent first callers share one dial through singleflight. The handle is
// published with compare-and-swap, so it is written at most once and only read
// afterwards. Failed dials are not cached.
type Lazy[T any] struct {
	connect ConnectFunc[T]
	discard DiscardFunc[T]
	timeout time.Duration

	group  singleflight.Group
	handle atomic.Pointer[T]
}

func NewLazy[T any](connect ConnectFunc[T], discard DiscardFunc[T], timeout time.Duration) *Lazy[T] {
	return &Lazy[T]{
		connect: connect,
		discard: discard,
		timeout: timeout,
	}
}

// Get returns the cached handle, dialing on first use.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if h := l.handle.Load(); h != nil {
		return *h, nil
	}

	// The dial outlives the request that triggered it: other callers may be waiting on it.
	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	v, err, _ := l.group.Do("connect", func() (interface{}, error) {
		if h := l.handle.Load(); h != nil {
			return *h, nil
		}
		conn, err := l.connect(dialCtx)
		if err != nil {
			return nil, err
		}
		if !l.handle.CompareAndSwap(nil, &conn) {
			if l.discard != nil {
				l.discard(conn)
			}
			return *l.handle.Load(), nil
		}
		return conn, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v.(T), nil
}

// Loaded returns the cached handle without dialing.
func (l *Lazy[T]) Loaded() (T, bool) {
	if h := l.handle.Load(); h != nil {
		return *h, true
	}
	var zero T
	return zero, false
}
