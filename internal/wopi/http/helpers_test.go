package http_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	wopihttp "github.com/immor75/MeetingsDecisions/internal/wopi/http"
	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/drivers/fsdir"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/memory"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

var docBytes = []byte("PK\x03\x04 generated decision")

type testEnv struct {
	srv      *httptest.Server
	client   *wopisdk.Client
	tokens   *service.AccessTokenService
	locks    *service.LockManager
	sessions *memory.SessionStore
}

type envOptions struct {
	maxFileSize int64
	maxSessions int
	policy      service.UnlockedWritePolicy
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	artifacts, err := fsdir.NewStore(t.TempDir())
	require.NoError(t, err)

	sessions := memory.NewSessionStore(artifacts, memory.Options{MaxSessions: opts.maxSessions})
	t.Cleanup(func() { _ = sessions.Close() })

	tokens, err := service.NewAccessTokenService(bytes.Repeat([]byte{0x42}, 32), "wopihost", 30*time.Minute, nil)
	require.NoError(t, err)

	locks := service.NewLockManager(service.DefaultLockTTL, nil)

	factory := &service.SessionFactory{
		Sessions:     sessions,
		Locks:        locks,
		Tokens:       tokens,
		CollaboraURL: "https://office.example.org",
	}

	router := wopihttp.NewRouter(artifacts, sessions, testAPIKey, "test", opts.maxFileSize, slogx.Discard())
	router.Dispatcher = &service.Dispatcher{
		Tokens:            tokens,
		Sessions:          sessions,
		Locks:             locks,
		UnlockedWrites:    opts.policy,
		PostMessageOrigin: "https://meetings.example.org",
	}
	router.SessionFactory = factory
	router.Locks = locks
	router.MaxSessions = opts.maxSessions
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	factory.WopiHostURL = srv.URL

	return &testEnv{
		srv:      srv,
		client:   wopisdk.NewClient(srv.URL, testAPIKey),
		tokens:   tokens,
		locks:    locks,
		sessions: sessions,
	}
}

// openSession stores doc123 and opens a session on it for u1.
func (e *testEnv) openSession(t *testing.T, role string) *wopisdk.SessionResponse {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.PutArtifact(ctx, "doc123", "", "", docBytes)
	require.NoError(t, err)

	sess, err := e.client.CreateSession(ctx, wopisdk.CreateSessionRequest{
		ArtifactID:  "doc123",
		UserID:      "u1",
		DisplayName: "Maria Papadopoulou",
		Role:        role,
	})
	require.NoError(t, err)
	return sess
}
