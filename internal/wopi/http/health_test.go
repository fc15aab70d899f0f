package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{maxSessions: 10})
	ctx := context.Background()

	live, err := env.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)
	require.Nil(t, live.Checks)

	env.openSession(t, "editor")

	ready, err := env.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Artifacts)
	require.Equal(t, "ok", ready.Checks.Signer)
	require.Equal(t, "1/10", ready.Checks.Sessions)
}

func TestSwaggerIsServed(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	resp, err := http.Get(env.srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
