package database

import (
	"context"
	"sync"
)

// Transactor runs fn so that every repository call made with the ctx passed to fn
// commits or rolls back together. fn's error aborts the transaction and is returned.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LockTransactor serializes all units of work behind one mutex. It is used by the
// in-memory store, which has no rollback.
type LockTransactor struct {
	mu sync.Mutex
}

func NewLockTransactor() *LockTransactor {
	return &LockTransactor{}
}

func (t *LockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
