package service

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
)

// DefaultLockTTL is how long a WOPI lock lives without a refresh.
const DefaultLockTTL = 30 * time.Minute

const lockShardCount = 32

var (
	ErrLockConflict   = errors.New("lock_conflict")
	ErrLockIDRequired = errors.New("lock_id_required")
)

// LockConflictError reports the lock currently held on a file. Held is
// empty when the file is unlocked.
type LockConflictError struct {
	FileID string
	Held   string
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf("lock conflict on %s (held %q)", e.FileID, e.Held)
}

func (e *LockConflictError) Is(target error) bool { return target == ErrLockConflict }

func conflict(fileID, held string) error {
	return &LockConflictError{FileID: fileID, Held: held}
}

// LockManager arbitrates exclusive-edit locks per file. Each file has its
// own mutex, found through a sharded index, so operations on different
// files only contend for the brief index lookup. Expired locks read as
// unlocked everywhere; Sweep reclaims their memory.
type LockManager struct {
	TTL time.Duration
	Now func() time.Time

	shards [lockShardCount]lockShard
}

type lockShard struct {
	mu      sync.Mutex
	entries map[string]*fileLock
}

type fileLock struct {
	mu   sync.Mutex
	refs int // guarded by the shard mutex
	lock domain.Lock
}

func NewLockManager(ttl time.Duration, now func() time.Time) *LockManager {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if now == nil {
		now = time.Now
	}
	m := &LockManager{TTL: ttl, Now: now}
	for i := range m.shards {
		m.shards[i].entries = make(map[string]*fileLock)
	}
	return m
}

// Lock takes the lock, or refreshes it when lockID already holds it.
func (m *LockManager) Lock(fileID, lockID string) error {
	if lockID == "" {
		return ErrLockIDRequired
	}
	return m.with(fileID, func(e *fileLock, now time.Time) error {
		if held := e.held(now); held != "" && held != lockID {
			return conflict(fileID, held)
		}
		e.lock = domain.Lock{FileID: fileID, LockID: lockID, ExpiresAt: now.Add(m.TTL)}
		return nil
	})
}

// RefreshLock behaves exactly like Lock.
func (m *LockManager) RefreshLock(fileID, lockID string) error {
	return m.Lock(fileID, lockID)
}

// Unlock releases the lock when lockID holds it.
func (m *LockManager) Unlock(fileID, lockID string) error {
	if lockID == "" {
		return ErrLockIDRequired
	}
	return m.with(fileID, func(e *fileLock, now time.Time) error {
		held := e.held(now)
		if held == "" || held != lockID {
			return conflict(fileID, held)
		}
		e.lock = domain.Lock{}
		return nil
	})
}

// UnlockAndRelock swaps oldLockID for newLockID in one step. It fails
// unless oldLockID currently holds the lock.
func (m *LockManager) UnlockAndRelock(fileID, oldLockID, newLockID string) error {
	if oldLockID == "" || newLockID == "" {
		return ErrLockIDRequired
	}
	return m.with(fileID, func(e *fileLock, now time.Time) error {
		held := e.held(now)
		if held == "" || held != oldLockID {
			return conflict(fileID, held)
		}
		e.lock = domain.Lock{FileID: fileID, LockID: newLockID, ExpiresAt: now.Add(m.TTL)}
		return nil
	})
}

// GetLock returns the active lock id, or "" when unlocked.
func (m *LockManager) GetLock(fileID string) string {
	var held string
	_ = m.with(fileID, func(e *fileLock, now time.Time) error {
		held = e.held(now)
		return nil
	})
	return held
}

// Held reports whether fileID has an active lock.
func (m *LockManager) Held(fileID string) bool {
	return m.GetLock(fileID) != ""
}

// Guard runs fn while holding fileID's mutex, passing the active lock id.
// Lock operations on the same file wait until fn returns, which makes a
// lock check and the write that depends on it atomic.
func (m *LockManager) Guard(fileID string, fn func(held string) error) error {
	return m.with(fileID, func(e *fileLock, now time.Time) error {
		return fn(e.held(now))
	})
}

// Release drops any lock on fileID regardless of who holds it.
func (m *LockManager) Release(fileID string) {
	_ = m.with(fileID, func(e *fileLock, now time.Time) error {
		e.lock = domain.Lock{}
		return nil
	})
}

// Sweep removes idle entries whose lock has expired and returns how many
// were removed.
func (m *LockManager) Sweep() int {
	now := m.Now()
	removed := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		for id, e := range sh.entries {
			// refs == 0 means no goroutine is between acquire and release,
			// so e.lock is safe to read under the shard mutex alone.
			if e.refs == 0 && !e.lock.Active(now) {
				delete(sh.entries, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len reports the number of tracked entries, active or not yet swept.
func (m *LockManager) Len() int {
	n := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

func (m *LockManager) shard(fileID string) *lockShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fileID))
	return &m.shards[h.Sum32()%lockShardCount]
}

func (m *LockManager) with(fileID string, fn func(e *fileLock, now time.Time) error) error {
	sh := m.shard(fileID)

	sh.mu.Lock()
	e, ok := sh.entries[fileID]
	if !ok {
		e = &fileLock{}
		sh.entries[fileID] = e
	}
	e.refs++
	sh.mu.Unlock()

	e.mu.Lock()
	defer func() {
		sh.mu.Lock()
		e.refs--
		if e.refs == 0 && !e.lock.Active(m.Now()) {
			delete(sh.entries, fileID)
		}
		sh.mu.Unlock()
		e.mu.Unlock()
	}()

	return fn(e, m.Now())
}

func (e *fileLock) held(now time.Time) string {
	if e.lock.Active(now) {
		return e.lock.LockID
	}
	return ""
}
