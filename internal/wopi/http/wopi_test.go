package http_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/pkg/httpx"
	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
	"github.com/stretchr/testify/require"
)

func TestWopiEditingFlow(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()

	sess := env.openSession(t, "editor")
	f := env.client.File(sess)

	info, err := f.CheckFileInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "doc123.docx", info.BaseFileName)
	require.Equal(t, "u1", info.UserId)
	require.Equal(t, "Maria Papadopoulou", info.UserFriendlyName)
	require.Equal(t, int64(len(docBytes)), info.Size)
	require.True(t, info.UserCanWrite)
	require.False(t, info.ReadOnly)
	require.True(t, info.SupportsLocks)
	require.True(t, info.SupportsGetLock)
	require.True(t, info.UserCanNotWriteRelative)
	require.Equal(t, "https://meetings.example.org", info.PostMessageOrigin)

	content, version, err := f.GetFile(ctx)
	require.NoError(t, err)
	require.Equal(t, docBytes, content)
	require.Equal(t, "1", version)

	require.NoError(t, f.Lock(ctx, "L1"))

	held, err := f.GetLock(ctx)
	require.NoError(t, err)
	require.Equal(t, "L1", held)

	newVersion, err := f.PutFile(ctx, "L1", []byte("edited"))
	require.NoError(t, err)
	require.Equal(t, "2", newVersion)

	content, version, err = f.GetFile(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("edited"), content)
	require.Equal(t, "2", version)

	require.NoError(t, f.RefreshLock(ctx, "L1"))
	require.NoError(t, f.UnlockAndRelock(ctx, "L1", "L2"))

	held, err = f.GetLock(ctx)
	require.NoError(t, err)
	require.Equal(t, "L2", held)

	require.NoError(t, f.Unlock(ctx, "L2"))

	held, err = f.GetLock(ctx)
	require.NoError(t, err)
	require.Empty(t, held)
}

func TestWopiLockConflicts(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()

	f := env.client.File(env.openSession(t, "editor"))
	require.NoError(t, f.Lock(ctx, "L1"))

	t.Run("lock with another id echoes the held lock", func(t *testing.T) {
		err := f.Lock(ctx, "L9")
		var lc *wopisdk.LockConflictError
		require.ErrorAs(t, err, &lc)
		require.Equal(t, "L1", lc.Held)
	})

	t.Run("put with wrong lock is rejected and leaves content", func(t *testing.T) {
		_, err := f.PutFile(ctx, "L9", []byte("lost"))
		var lc *wopisdk.LockConflictError
		require.ErrorAs(t, err, &lc)
		require.Equal(t, "L1", lc.Held)

		content, _, err := f.GetFile(ctx)
		require.NoError(t, err)
		require.Equal(t, docBytes, content)
	})

	t.Run("unlock with wrong id", func(t *testing.T) {
		err := f.Unlock(ctx, "L9")
		var lc *wopisdk.LockConflictError
		require.ErrorAs(t, err, &lc)
		require.Equal(t, "L1", lc.Held)
	})

	t.Run("unlock of unlocked file echoes empty lock", func(t *testing.T) {
		require.NoError(t, f.Unlock(ctx, "L1"))

		req, err := http.NewRequest(http.MethodPost, f.WopiSrc+"?access_token="+f.AccessToken, nil)
		require.NoError(t, err)
		req.Header.Set(wopisdk.HeaderOverride, "UNLOCK")
		req.Header.Set(wopisdk.HeaderLock, "L1")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusConflict, resp.StatusCode)
		values, ok := resp.Header[http.CanonicalHeaderKey(wopisdk.HeaderLock)]
		require.True(t, ok)
		require.Equal(t, []string{""}, values)
	})
}

func TestWopiUnlockedWrites(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()

	f := env.client.File(env.openSession(t, "editor"))

	version, err := f.PutFile(ctx, "", []byte("first save"))
	require.NoError(t, err)
	require.Equal(t, "2", version)

	_, err = f.PutFile(ctx, "", []byte("second save"))
	var lc *wopisdk.LockConflictError
	require.ErrorAs(t, err, &lc)
	require.Empty(t, lc.Held)
}

func TestWopiViewerCannotWrite(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()

	f := env.client.File(env.openSession(t, "member"))

	info, err := f.CheckFileInfo(ctx)
	require.NoError(t, err)
	require.False(t, info.UserCanWrite)
	require.True(t, info.ReadOnly)

	_, err = f.PutFile(ctx, "", []byte("nope"))
	var lc *wopisdk.LockConflictError
	require.ErrorAs(t, err, &lc)
}

func TestWopiAuthentication(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()

	sess := env.openSession(t, "editor")

	t.Run("missing token", func(t *testing.T) {
		_, err := env.client.FileAt(sess.FileID, "").CheckFileInfo(ctx)
		require.True(t, wopisdk.IsStatus(err, http.StatusUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.client.FileAt(sess.FileID, "not-a-jwt").CheckFileInfo(ctx)
		require.True(t, wopisdk.IsStatus(err, http.StatusUnauthorized))
	})

	t.Run("token for another file", func(t *testing.T) {
		other, err := env.tokens.Issue("u1", "", "other-file", domain.RoleEditor)
		require.NoError(t, err)

		_, _, err = env.client.FileAt(sess.FileID, other.Token).GetFile(ctx)
		require.True(t, wopisdk.IsStatus(err, http.StatusUnauthorized))
	})

	t.Run("bearer header is accepted", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, sess.WopiSrc, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown file with a valid token", func(t *testing.T) {
		tok, err := env.tokens.Issue("u1", "", "missing", domain.RoleEditor)
		require.NoError(t, err)

		_, err = env.client.FileAt("missing", tok.Token).CheckFileInfo(ctx)
		require.True(t, wopisdk.IsStatus(err, http.StatusNotFound))
	})
}

func TestWopiOverrides(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	sess := env.openSession(t, "editor")

	post := func(t *testing.T, override string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, sess.WopiSrc+"?access_token="+sess.AccessToken, nil)
		require.NoError(t, err)
		if override != "" {
			req.Header.Set(wopisdk.HeaderOverride, override)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	t.Run("missing override", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, post(t, "").StatusCode)
	})

	t.Run("unknown override", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, post(t, "FROBNICATE").StatusCode)
	})

	for _, ov := range []string{"PUT_RELATIVE", "RENAME_FILE", "DELETE", "PUT_USER_INFO", "GET_SHARE_URL"} {
		t.Run(ov+" is not implemented", func(t *testing.T) {
			require.Equal(t, http.StatusNotImplemented, post(t, ov).StatusCode)
		})
	}

	t.Run("lock without lock id", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, post(t, "LOCK").StatusCode)
	})
}

func TestWopiPutFileLimits(t *testing.T) {
	env := newTestEnv(t, envOptions{maxFileSize: 64})
	ctx := context.Background()

	f := env.client.File(env.openSession(t, "editor"))
	require.NoError(t, f.Lock(ctx, "L1"))

	t.Run("oversized body", func(t *testing.T) {
		_, err := f.PutFile(ctx, "L1", bytes.Repeat([]byte("x"), 65))
		require.True(t, wopisdk.IsStatus(err, http.StatusRequestEntityTooLarge))
	})

	t.Run("oversized chunked body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, f.WopiSrc+"/contents?access_token="+f.AccessToken,
			struct{ *strings.Reader }{strings.NewReader(strings.Repeat("x", 200))})
		require.NoError(t, err)
		req.Header.Set(wopisdk.HeaderOverride, "PUT")
		req.Header.Set(wopisdk.HeaderLock, "L1")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("wrong override on contents", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, f.WopiSrc+"/contents?access_token="+f.AccessToken, strings.NewReader("x"))
		require.NoError(t, err)
		req.Header.Set(wopisdk.HeaderOverride, "LOCK")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("body at the limit", func(t *testing.T) {
		_, err := f.PutFile(ctx, "L1", bytes.Repeat([]byte("x"), 64))
		require.NoError(t, err)
	})
}

func TestWopiTokenCheckedFirst(t *testing.T) {
	env := newTestEnv(t, envOptions{maxFileSize: 64})
	sess := env.openSession(t, "editor")

	forged := "?access_token=forged"

	cases := []struct {
		name     string
		url      string
		override string
		body     string
	}{
		{name: "unknown override", url: sess.WopiSrc + forged, override: "BOGUS"},
		{name: "missing override", url: sess.WopiSrc + forged},
		{name: "unsupported override", url: sess.WopiSrc + forged, override: "PUT_RELATIVE"},
		{name: "oversized put", url: sess.WopiSrc + "/contents" + forged, override: "PUT", body: strings.Repeat("x", 4096)},
		{name: "wrong override on contents", url: sess.WopiSrc + "/contents" + forged, override: "LOCK", body: "x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, tc.url, strings.NewReader(tc.body))
			require.NoError(t, err)
			if tc.override != "" {
				req.Header.Set(wopisdk.HeaderOverride, tc.override)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestWopiClientLimitSpansFiles(t *testing.T) {
	prev := httpx.WopiClientLimit
	httpx.WopiClientLimit = httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	t.Cleanup(func() { httpx.WopiClientLimit = prev })

	env := newTestEnv(t, envOptions{})

	var codes []int
	for i := range 5 {
		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/wopi/files/file-%d?access_token=x", env.srv.URL, i), nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	require.Equal(t, []int{
		http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}
