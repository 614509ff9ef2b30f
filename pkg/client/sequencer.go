package client

import (
	"context"
	"fmt"
	"sync"
)

// nonceSequencer hands out strictly increasing nonces for one account
// context. All reservations go through one mutex, so two in-flight
// transactions can never share or invert nonce order. A reserved nonce is
// burned even when the send later fails: the venue tolerates gaps, not
// reordering.
type nonceSequencer struct {
	mu     sync.Mutex
	synced bool
	next   int64
}

// reserve returns the next nonce, syncing from the venue on first use.
// fetch is only consulted while holding the lock, so concurrent first calls
// cannot double-sync.
func (s *nonceSequencer) reserve(ctx context.Context, fetch func(ctx context.Context) (int64, error)) (int64, error) {
	ns, err := s.reserveN(ctx, 1, fetch)
	if err != nil {
		return 0, err
	}
	return ns[0], nil
}

// reserveN reserves count consecutive nonces in one critical section, used
// for group members so no unrelated submission can interleave between legs.
func (s *nonceSequencer) reserveN(ctx context.Context, count int, fetch func(ctx context.Context) (int64, error)) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.synced {
		n, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to sync nonce: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("venue returned negative nonce %d", n)
		}
		s.next = n
		s.synced = true
	}

	out := make([]int64, count)
	for i := range out {
		out[i] = s.next
		s.next++
	}
	return out, nil
}
