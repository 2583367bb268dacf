package ledger

import (
	"context"
	"slices"
	"sync"
)

// lockSet hands out per-account exclusive locks inside this process. Ids are
// always taken in ascending order so two multi-account callers cannot
// deadlock. Waiting honours ctx.
type lockSet struct {
	mu    sync.Mutex
	slots map[uint]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{slots: make(map[uint]*slot)}
}

func (l *lockSet) acquire(id uint) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	return s
}

func (l *lockSet) release(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[id]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}

// lock blocks until every id is held or ctx ends. The returned func releases
// all of them.
func (l *lockSet) lock(ctx context.Context, ids ...uint) (func(), error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	type heldSlot struct {
		id uint
		s  *slot
	}
	held := make([]heldSlot, 0, len(ids))
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].s.ch
			l.release(held[i].id)
		}
	}

	for _, id := range ids {
		s := l.acquire(id)
		select {
		case s.ch <- struct{}{}:
			held = append(held, heldSlot{id: id, s: s})
		case <-ctx.Done():
			l.release(id)
			unlock()
			return nil, ctx.Err()
		}
	}
	return unlock, nil
}
