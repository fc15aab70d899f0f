package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/memory"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var testSecret = bytes.Repeat([]byte{0x5a}, 32)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type artifactMap map[string][]byte

func (m artifactMap) GetArtifact(ctx context.Context, id string) (domain.Artifact, []byte, error) {
	b, ok := m[id]
	if !ok {
		return domain.Artifact{}, nil, store.ErrNotFound
	}
	return domain.Artifact{ID: id, FileName: id + ".docx", Size: int64(len(b))}, b, nil
}

type fixture struct {
	clock      *testClock
	tokens     *AccessTokenService
	locks      *LockManager
	sessions   *memory.SessionStore
	dispatcher *Dispatcher
}

func newFixture(t *testing.T, policy UnlockedWritePolicy) *fixture {
	t.Helper()

	clock := newTestClock()
	tokens, err := NewAccessTokenService(testSecret, "wopihost", 30*time.Minute, clock.Now)
	require.NoError(t, err)

	sessions := memory.NewSessionStore(artifactMap{"doc123": []byte("generated decision")}, memory.Options{Now: clock.Now})
	t.Cleanup(func() { _ = sessions.Close() })

	locks := NewLockManager(30*time.Minute, clock.Now)

	return &fixture{
		clock:    clock,
		tokens:   tokens,
		locks:    locks,
		sessions: sessions,
		dispatcher: &Dispatcher{
			Tokens:            tokens,
			Sessions:          sessions,
			Locks:             locks,
			UnlockedWrites:    policy,
			PostMessageOrigin: "https://meetings.example.org",
		},
	}
}

func (f *fixture) createSession(t *testing.T) domain.Session {
	t.Helper()
	sess, err := f.sessions.Create(context.Background(), "doc123", "Report.docx", "u1")
	require.NoError(t, err)
	return sess
}

func (f *fixture) token(t *testing.T, fileID string, role domain.Role) string {
	t.Helper()
	tok, err := f.tokens.Issue("u-"+role.String(), "User "+role.String(), fileID, role)
	require.NoError(t, err)
	return tok.Token
}

func testContext() context.Context {
	return slogx.WithContext(context.Background(), slogx.Discard())
}
