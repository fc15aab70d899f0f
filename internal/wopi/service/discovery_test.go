package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const discoveryXML = `<?xml version="1.0" encoding="utf-8"?>
<wopi-discovery>
  <net-zone name="external-http">
    <app name="writer">
      <action default="true" ext="docx" name="edit" urlsrc="http://collabora:9980/browser/b1/cool.html?"/>
      <action ext="docx" name="view" urlsrc="http://collabora:9980/browser/b1/cool.html?view=1&amp;"/>
      <action ext="odt" name="edit" urlsrc="http://collabora:9980/browser/b1/cool.html?"/>
    </app>
    <app name="calc">
      <action ext="xlsx" name="edit" urlsrc="http://collabora:9980/browser/b1/cool.html?"/>
    </app>
  </net-zone>
</wopi-discovery>`

func TestParseDiscovery(t *testing.T) {
	t.Parallel()

	actions, err := ParseDiscovery(strings.NewReader(discoveryXML))
	require.NoError(t, err)
	require.Len(t, actions, 4)
	require.Equal(t, "http://collabora:9980/browser/b1/cool.html?view=1&", actions["docx/view"])

	_, err = ParseDiscovery(strings.NewReader("<not-closed"))
	require.Error(t, err)
}

func TestDiscoveryResolverCachesAndCollapsesFetches(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hosting/discovery", r.URL.Path)
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(discoveryXML))
	}))
	t.Cleanup(srv.Close)

	clock := newTestClock()
	r := NewDiscoveryResolver(srv.URL+"/", time.Hour)
	r.Now = clock.Now

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := r.EditorURL(context.Background(), "DOCX", "edit")
			require.NoError(t, err)
			require.Equal(t, "http://collabora:9980/browser/b1/cool.html?", u)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), hits.Load())

	_, err := r.EditorURL(context.Background(), "pdf", "edit")
	require.ErrorIs(t, err, ErrNoDiscoveryAction)
	require.Equal(t, int32(1), hits.Load())

	clock.Advance(61 * time.Minute)
	_, err = r.EditorURL(context.Background(), "xlsx", "edit")
	require.NoError(t, err)
	require.Equal(t, int32(2), hits.Load())

	r.Invalidate()
	_, err = r.EditorURL(context.Background(), "odt", "edit")
	require.NoError(t, err)
	require.Equal(t, int32(3), hits.Load())
}

func TestDiscoveryResolverFetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	r := NewDiscoveryResolver(srv.URL, 0)
	_, err := r.EditorURL(context.Background(), "docx", "edit")
	require.ErrorIs(t, err, ErrDiscoveryFetch)
}

func TestBuildEditorURL(t *testing.T) {
	t.Parallel()

	got := BuildEditorURL("https://c/cool.html?", "http://host/wopi/files/F1", "a+b/c", 1700000000000, "edit")
	require.Equal(t,
		"https://c/cool.html?WOPISrc=http%3A%2F%2Fhost%2Fwopi%2Ffiles%2FF1&access_token=a%2Bb%2Fc&access_token_ttl=1700000000000&permission=edit&closebutton=1",
		got)

	got = BuildEditorURL("https://c/we/wordeditorframe.aspx?<ui=UI_LLCC&><rs=DC_LLCC&>", "w", "t", 0, "")
	require.Equal(t, "https://c/we/wordeditorframe.aspx?WOPISrc=w&access_token=t&closebutton=1", got)

	got = BuildEditorURL("https://c/cool.html", "w", "t", 0, "")
	require.Equal(t, "https://c/cool.html?WOPISrc=w&access_token=t&closebutton=1", got)

	got = BuildEditorURL("https://c/cool.html?lang=el", "w", "t", 0, "")
	require.Equal(t, "https://c/cool.html?lang=el&WOPISrc=w&access_token=t&closebutton=1", got)
}
