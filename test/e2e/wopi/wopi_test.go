package wopi_test

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	client := setupContainer(t, nil)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Artifacts)
}

func TestEditingRoundTrip(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()

	_, f := openSession(t, client, "editor")

	info, err := f.CheckFileInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "Decision.docx", info.BaseFileName)
	require.True(t, info.UserCanWrite)

	require.NoError(t, f.Lock(ctx, "e2e-lock"))
	version, err := f.PutFile(ctx, "e2e-lock", []byte("saved by the editor"))
	require.NoError(t, err)
	require.Equal(t, "2", version)

	content, _, err := f.GetFile(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("saved by the editor"), content)

	require.NoError(t, f.Unlock(ctx, "e2e-lock"))
}

func TestConcurrentLockHasOneWinner(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()

	_, f := openSession(t, client, "editor")

	const contenders = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := range contenders {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := f.Lock(ctx, id)
			if err == nil {
				mu.Lock()
				winners = append(winners, id)
				mu.Unlock()
				return
			}
			var lc *wopisdk.LockConflictError
			if !errors.As(err, &lc) {
				t.Errorf("lock %s: unexpected error %v", id, err)
			}
		}(fmt.Sprintf("lock-%d", i))
	}
	wg.Wait()

	require.Len(t, winners, 1)

	held, err := f.GetLock(ctx)
	require.NoError(t, err)
	require.Equal(t, winners[0], held)
}

func TestRejectsForeignTokens(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()

	sess, _ := openSession(t, client, "editor")

	forged := client.FileAt(sess.FileID, "eyJhbGciOiJIUzI1NiJ9.e30.forged")
	_, err := forged.CheckFileInfo(ctx)
	require.True(t, wopisdk.IsStatus(err, http.StatusUnauthorized))

	anon := wopisdk.NewClient(client.BaseURL, "")
	_, err = anon.ListSessions(ctx)
	require.ErrorIs(t, err, wopisdk.ErrInvalidToken)
}
