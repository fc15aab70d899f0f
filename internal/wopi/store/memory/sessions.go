// Package memory holds WOPI working copies in process memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/cryptox"
	"github.com/immor75/MeetingsDecisions/pkg/idx"
)

// DefaultMaxSessions bounds the number of live working copies.
const DefaultMaxSessions = 1000

// Options configures a SessionStore. Zero values pick defaults.
type Options struct {
	MaxSessions int
	Now         func() time.Time
	NewID       func() string
}

// SessionStore is the in-memory store.Sessions. The map is guarded by one
// RWMutex and each session carries its own, so writes to one file never
// block reads of another. Content slices are never mutated after being
// stored; Write swaps in a fresh copy.
type SessionStore struct {
	source      store.ArtifactSource
	maxSessions int
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*session
	closed   bool
}

type session struct {
	mu      sync.RWMutex
	meta    domain.Session
	content []byte
	version uint64

	lastAccess atomic.Int64 // unix nanos
}

var _ store.Sessions = (*SessionStore)(nil)

// NewSessionStore creates a store that copies new sessions from source.
func NewSessionStore(source store.ArtifactSource, opts Options) *SessionStore {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return idx.New().String() }
	}
	return &SessionStore{
		source:      source,
		maxSessions: opts.MaxSessions,
		now:         opts.Now,
		newID:       opts.NewID,
		sessions:    make(map[string]*session),
	}
}

func (s *SessionStore) Create(
	ctx context.Context,
	sourceArtifactID, fileName, ownerID string,
) (domain.Session, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Session{}, err
	}

	artifact, content, err := s.source.GetArtifact(ctx, sourceArtifactID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load artifact %q: %w", sourceArtifactID, err)
	}
	if fileName == "" {
		fileName = artifact.FileName
	}
	if ownerID == "" {
		ownerID = artifact.OwnerID
	}

	// The working copy owns its bytes; the source is never written through.
	buf := append([]byte(nil), content...)
	now := s.now().UTC()

	sess := &session{
		version: 1,
		content: buf,
		meta: domain.Session{
			SourceArtifactID: sourceArtifactID,
			FileName:         fileName,
			OwnerID:          ownerID,
			Size:             int64(len(buf)),
			SHA256:           cryptox.FingerprintContent(buf),
			CreatedAt:        now,
			LastModified:     now,
		},
	}
	sess.lastAccess.Store(now.UnixNano())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Session{}, store.ErrClosed
	}
	if len(s.sessions) >= s.maxSessions {
		return domain.Session{}, store.ErrCapacity
	}

	id := s.newID()
	for attempt := 0; ; attempt++ {
		if _, taken := s.sessions[id]; !taken {
			break
		}
		if attempt >= 8 {
			return domain.Session{}, store.ErrAlreadyExists
		}
		id = s.newID()
	}

	sess.meta.FileID = id
	s.sessions[id] = sess
	return sess.snapshot(), nil
}

func (s *SessionStore) GetMetadata(ctx context.Context, fileID string) (domain.Session, error) {
	sess, err := s.lookup(fileID)
	if err != nil {
		return domain.Session{}, err
	}
	sess.touch(s.now())

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.snapshot(), nil
}

func (s *SessionStore) Read(ctx context.Context, fileID string) ([]byte, domain.Session, error) {
	sess, err := s.lookup(fileID)
	if err != nil {
		return nil, domain.Session{}, err
	}
	sess.touch(s.now())

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.content, sess.snapshot(), nil
}

func (s *SessionStore) Write(ctx context.Context, fileID string, content []byte) (domain.Session, error) {
	sess, err := s.lookup(fileID)
	if err != nil {
		return domain.Session{}, err
	}

	// Copy and hash before taking the lock; readers keep seeing the old
	// slice until the swap below.
	buf := append([]byte(nil), content...)
	sum := cryptox.FingerprintContent(buf)
	now := s.now().UTC()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.content = buf
	sess.version++
	sess.meta.Size = int64(len(buf))
	sess.meta.SHA256 = sum
	sess.meta.LastModified = now
	sess.meta.Written = true
	sess.lastAccess.Store(now.UnixNano())

	return sess.snapshot(), nil
}

func (s *SessionStore) Delete(ctx context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if _, ok := s.sessions[fileID]; !ok {
		return store.ErrNotFound
	}
	delete(s.sessions, fileID)
	return nil
}

func (s *SessionStore) List(ctx context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, store.ErrClosed
	}
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	out := make([]domain.Session, 0, len(all))
	for _, sess := range all {
		sess.mu.RLock()
		out = append(out, sess.snapshot())
		sess.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out, nil
}

func (s *SessionStore) EvictIdle(
	ctx context.Context,
	cutoff time.Time,
	keep func(fileID string) bool,
) ([]string, error) {
	limit := cutoff.UnixNano()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, store.ErrClosed
	}
	var candidates []string
	for id, sess := range s.sessions {
		if sess.lastAccess.Load() < limit {
			candidates = append(candidates, id)
		}
	}
	s.mu.RUnlock()

	// keep may take other locks, so it runs without s.mu held.
	drop := candidates[:0]
	for _, id := range candidates {
		if keep != nil && keep(id) {
			continue
		}
		drop = append(drop, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for _, id := range drop {
		sess, ok := s.sessions[id]
		if !ok || sess.lastAccess.Load() >= limit {
			continue
		}
		delete(s.sessions, id)
		evicted = append(evicted, id)
	}
	sort.Strings(evicted)
	return evicted, nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.sessions = make(map[string]*session)
	return nil
}

func (s *SessionStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

func (s *SessionStore) lookup(fileID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	sess, ok := s.sessions[fileID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return sess, nil
}

func (sess *session) touch(now time.Time) {
	sess.lastAccess.Store(now.UnixNano())
}

// snapshot must be called with sess.mu held.
func (sess *session) snapshot() domain.Session {
	meta := sess.meta
	meta.Version = strconv.FormatUint(sess.version, 10)
	meta.LastAccessed = time.Unix(0, sess.lastAccess.Load()).UTC()
	return meta
}
