package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireConflict(t *testing.T, err error, held string) {
	t.Helper()
	require.ErrorIs(t, err, ErrLockConflict)
	var lc *LockConflictError
	require.True(t, errors.As(err, &lc))
	require.Equal(t, held, lc.Held)
}

func TestLockIsIdempotentForSameID(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)

	require.NoError(t, m.Lock("f", "L1"))
	require.NoError(t, m.Lock("f", "L1"))
	require.Equal(t, "L1", m.GetLock("f"))
}

func TestLockConflictEchoesHolder(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)

	require.NoError(t, m.Lock("f", "L1"))
	requireConflict(t, m.Lock("f", "L2"), "L1")
	require.Equal(t, "L1", m.GetLock("f"))
}

func TestUnlock(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)

	t.Run("wrong id conflicts and leaves state", func(t *testing.T) {
		require.NoError(t, m.Lock("a", "L1"))
		requireConflict(t, m.Unlock("a", "L2"), "L1")
		require.Equal(t, "L1", m.GetLock("a"))
	})

	t.Run("matching id unlocks", func(t *testing.T) {
		require.NoError(t, m.Lock("b", "L1"))
		require.NoError(t, m.Unlock("b", "L1"))
		require.Equal(t, "", m.GetLock("b"))
	})

	t.Run("unlocked file conflicts with empty holder", func(t *testing.T) {
		requireConflict(t, m.Unlock("c", "L1"), "")
	})

	t.Run("missing id is invalid", func(t *testing.T) {
		require.ErrorIs(t, m.Unlock("c", ""), ErrLockIDRequired)
		require.ErrorIs(t, m.Lock("c", ""), ErrLockIDRequired)
	})
}

func TestRefreshLockExtendsExpiry(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	m := NewLockManager(30*time.Minute, clock.Now)

	require.NoError(t, m.Lock("f", "L1"))
	clock.Advance(20 * time.Minute)
	require.NoError(t, m.RefreshLock("f", "L1"))
	clock.Advance(20 * time.Minute)
	require.Equal(t, "L1", m.GetLock("f"), "refresh must restart the TTL")

	requireConflict(t, m.RefreshLock("f", "L2"), "L1")
}

func TestExpiredLockBehavesAsUnlocked(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	m := NewLockManager(30*time.Minute, clock.Now)

	require.NoError(t, m.Lock("f", "L1"))
	clock.Advance(30 * time.Minute)

	require.Equal(t, "", m.GetLock("f"))
	require.False(t, m.Held("f"))
	requireConflict(t, m.Unlock("f", "L1"), "")
	require.NoError(t, m.Lock("f", "L2"))
	require.Equal(t, "L2", m.GetLock("f"))
}

func TestUnlockAndRelock(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)

	require.NoError(t, m.Lock("f", "old"))
	require.NoError(t, m.UnlockAndRelock("f", "old", "new"))
	require.Equal(t, "new", m.GetLock("f"))

	requireConflict(t, m.UnlockAndRelock("f", "old", "newer"), "new")
	requireConflict(t, m.UnlockAndRelock("g", "old", "new"), "")
	require.ErrorIs(t, m.UnlockAndRelock("f", "", "x"), ErrLockIDRequired)
}

func TestGuardSeesHeldLock(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)
	require.NoError(t, m.Lock("f", "L1"))

	var seen string
	require.NoError(t, m.Guard("f", func(held string) error {
		seen = held
		return nil
	}))
	require.Equal(t, "L1", seen)

	sentinel := errors.New("boom")
	require.ErrorIs(t, m.Guard("f", func(string) error { return sentinel }), sentinel)
}

func TestSweepAndRelease(t *testing.T) {
	t.Parallel()
	clock := newTestClock()
	m := NewLockManager(time.Minute, clock.Now)

	require.NoError(t, m.Lock("a", "L"))
	require.NoError(t, m.Lock("b", "L"))
	require.Equal(t, 2, m.Len())

	m.Release("b")
	require.Equal(t, "", m.GetLock("b"))
	require.Equal(t, 1, m.Len())

	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 0, m.Len())
}

func TestConcurrentLockHasSingleWinner(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)

	var (
		wins atomic.Int32
		wg   sync.WaitGroup
	)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Lock("f", fmt.Sprintf("L%d", i)) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
	require.NotEmpty(t, m.GetLock("f"))
}

func TestDifferentFilesDoNotBlock(t *testing.T) {
	t.Parallel()
	m := NewLockManager(time.Minute, newTestClock().Now)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.Guard("slow", func(string) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered
	defer close(release)

	done := make(chan error, 1)
	go func() { done <- m.Lock("other", "L1") }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("lock on an unrelated file blocked behind a guarded file")
	}
}
