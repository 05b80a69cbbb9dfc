// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"sync"
)

// votingLocks hands out one exclusive slot per voting ID. Votes on
// different votings never contend; votes on the same voting serialize.
//
// Semaphores are never removed from the map - the set of votings is small
// and admin-created, so the map stays bounded.
type votingLocks struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func newVotingLocks() *votingLocks {
	return &votingLocks{sems: make(map[string]chan struct{})}
}

// Acquire blocks until the voting's slot is free or the context expires.
func (l *votingLocks) Acquire(ctx context.Context, votingID string) error {
	l.mu.Lock()
	sem, ok := l.sems[votingID]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[votingID] = sem
	}
	l.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the voting's slot. Must follow a successful Acquire.
func (l *votingLocks) Release(votingID string) {
	l.mu.Lock()
	sem := l.sems[votingID]
	l.mu.Unlock()
	<-sem
}
