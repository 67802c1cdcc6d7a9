// Package queue defines the shared FIFO the orchestrator pushes jobs onto
// and workers block-pop from. The interface is deliberately narrow — four
// operations, no per-job state — so a Redis-backed implementation and an
// in-memory test fake can sit behind the same contract.
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrEmpty is returned by BlockingPopLeft when timeout elapses with no job
// available. Callers should treat it as "nothing to do yet", not a failure.
var ErrEmpty = errors.New("queue: empty after timeout")

// ErrUnavailable is returned when the queue connection is unhealthy.
var ErrUnavailable = errors.New("queue: unavailable")

// Queue is the collaborator the orchestrator (producer) and worker loop
// (consumer) share. Implementations must make PushRight and
// BlockingPopLeft atomic with respect to each other.
type Queue interface {
	// PushRight atomically appends value to the tail of the queue.
	PushRight(ctx context.Context, value []byte) error

	// BlockingPopLeft atomically removes and returns the head of the
	// queue, blocking up to timeout if it is currently empty. Returns
	// ErrEmpty (not an error the caller should log loudly) when timeout
	// elapses with nothing popped.
	BlockingPopLeft(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Length reports the current number of queued values. May be stale
	// the instant it returns — no locking is implied.
	Length(ctx context.Context) (int64, error)

	// Close releases the underlying connection. Safe to call once;
	// implementations should make repeat calls a no-op.
	Close() error
}
