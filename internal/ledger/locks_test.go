package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockSetExcludes(t *testing.T) {
	l := newLockSet()
	unlock, err := l.lock(context.Background(), 1, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.lock(ctx, 2)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	unlock()
	unlock2, err := l.lock(context.Background(), 2, 3)
	require.NoError(t, err)
	unlock2()

	assert.Empty(t, l.slots)
}

func TestLockSetDedupesIDs(t *testing.T) {
	l := newLockSet()
	unlock, err := l.lock(context.Background(), 5, 5, 5)
	require.NoError(t, err)
	unlock()
	assert.Empty(t, l.slots)
}

func TestLockSetReleasesPartialOnCancel(t *testing.T) {
	l := newLockSet()
	hold, err := l.lock(context.Background(), 9)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.lock(ctx, 1, 9)
	require.Error(t, err)

	// 1 must be free again after the failed attempt
	unlock, err := l.lock(context.Background(), 1)
	require.NoError(t, err)
	unlock()
	hold()
	assert.Empty(t, l.slots)
}

func TestLockSetSerializesCounter(t *testing.T) {
	l := newLockSet()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			// opposite orders would deadlock without sorting
			ids := []uint{1, 2}
			if i%2 == 0 {
				ids = []uint{2, 1}
			}
			unlock, err := l.lock(context.Background(), ids...)
			if err != nil {
				return
			}
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
