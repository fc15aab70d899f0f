package service

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultDiscoveryTTL is how long a fetched discovery document is reused.
const DefaultDiscoveryTTL = time.Hour

const maxDiscoveryBytes = 4 << 20

var (
	ErrNoDiscoveryAction = errors.New("no discovery action for extension")
	ErrDiscoveryFetch    = errors.New("discovery fetch failed")
)

// EditorURLResolver maps a file extension and action ("edit", "view") to
// the editor launch URL prefix (the discovery urlsrc).
type EditorURLResolver interface {
	EditorURL(ctx context.Context, ext, action string) (string, error)
}

// DiscoveryResolver reads the editor's /hosting/discovery document and
// caches the action table for TTL. Concurrent misses share one fetch.
type DiscoveryResolver struct {
	BaseURL string
	Client  *http.Client
	TTL     time.Duration
	Now     func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	actions   map[string]string
	fetchedAt time.Time
}

func NewDiscoveryResolver(baseURL string, ttl time.Duration) *DiscoveryResolver {
	if ttl <= 0 {
		ttl = DefaultDiscoveryTTL
	}
	return &DiscoveryResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
		TTL:     ttl,
		Now:     time.Now,
	}
}

type discoveryDoc struct {
	NetZones []struct {
		Apps []struct {
			Actions []struct {
				Ext    string `xml:"ext,attr"`
				Name   string `xml:"name,attr"`
				URLSrc string `xml:"urlsrc,attr"`
			} `xml:"action"`
		} `xml:"app"`
	} `xml:"net-zone"`
}

func actionKey(ext, action string) string {
	return strings.ToLower(ext) + "/" + strings.ToLower(action)
}

// ParseDiscovery returns the ext/action → urlsrc table of a discovery
// document. The first entry wins when a pair is listed twice.
func ParseDiscovery(r io.Reader) (map[string]string, error) {
	var doc discoveryDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse discovery: %w", err)
	}

	actions := make(map[string]string)
	for _, zone := range doc.NetZones {
		for _, app := range zone.Apps {
			for _, a := range app.Actions {
				if a.Ext == "" || a.Name == "" || a.URLSrc == "" {
					continue
				}
				key := actionKey(a.Ext, a.Name)
				if _, dup := actions[key]; !dup {
					actions[key] = a.URLSrc
				}
			}
		}
	}
	return actions, nil
}

func (r *DiscoveryResolver) EditorURL(ctx context.Context, ext, action string) (string, error) {
	actions, err := r.table(ctx)
	if err != nil {
		return "", err
	}
	src, ok := actions[actionKey(ext, action)]
	if !ok {
		return "", fmt.Errorf("%w: .%s (%s)", ErrNoDiscoveryAction, ext, action)
	}
	return src, nil
}

// Invalidate forces the next lookup to refetch.
func (r *DiscoveryResolver) Invalidate() {
	r.mu.Lock()
	r.actions = nil
	r.mu.Unlock()
}

func (r *DiscoveryResolver) table(ctx context.Context) (map[string]string, error) {
	r.mu.RLock()
	actions, fetchedAt := r.actions, r.fetchedAt
	r.mu.RUnlock()

	if actions != nil && r.Now().Sub(fetchedAt) < r.TTL {
		return actions, nil
	}

	// The fetch is shared by every waiting caller, so it must not die with
	// the first caller's request.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do("discovery", func() (any, error) {
		fresh, err := r.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.actions = fresh
		r.fetchedAt = r.Now()
		r.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

func (r *DiscoveryResolver) fetch(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/hosting/discovery", nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscoveryFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDiscoveryFetch, resp.StatusCode)
	}

	return ParseDiscovery(io.LimitReader(resp.Body, maxDiscoveryBytes))
}

var urlsrcPlaceholder = regexp.MustCompile(`<[^>]*>`)

// BuildEditorURL appends the WOPI launch parameters to a discovery urlsrc.
// Optional <name=VALUE&> placeholders used by some editors are dropped.
func BuildEditorURL(urlsrc, wopiSrc, accessToken string, ttlMillis int64, permission string) string {
	base := urlsrcPlaceholder.ReplaceAllString(urlsrc, "")
	switch {
	case !strings.Contains(base, "?"):
		base += "?"
	case !strings.HasSuffix(base, "?") && !strings.HasSuffix(base, "&"):
		base += "&"
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("WOPISrc=")
	b.WriteString(url.QueryEscape(wopiSrc))
	b.WriteString("&access_token=")
	b.WriteString(url.QueryEscape(accessToken))
	if ttlMillis > 0 {
		fmt.Fprintf(&b, "&access_token_ttl=%d", ttlMillis)
	}
	if permission != "" {
		b.WriteString("&permission=")
		b.WriteString(url.QueryEscape(permission))
	}
	b.WriteString("&closebutton=1")
	return b.String()
}
