package wopisdk

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a WOPI host.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// APIKey authenticates management API calls. It is never sent on WOPI
	// file requests, which carry their own access token.
	APIKey string
}

// NewClient creates a client for the host at baseURL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		APIKey: apiKey,
	}
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// PutArtifact uploads (or replaces) a generated document.
func (c *Client) PutArtifact(ctx context.Context, id, fileName, ownerID string, content []byte) (*ArtifactResponse, error) {
	q := url.Values{}
	if fileName != "" {
		q.Set("fileName", fileName)
	}
	if ownerID != "" {
		q.Set("ownerId", ownerID)
	}
	path := "/v1/artifacts/" + url.PathEscape(id)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodPut, path, bytes.NewReader(content), map[string]string{
		"Content-Type": "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}

	var out ArtifactResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListArtifacts lists the artifact catalogue.
func (c *Client) ListArtifacts(ctx context.Context) ([]ArtifactResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/artifacts", nil, nil)
	if err != nil {
		return nil, err
	}

	var out ArtifactListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Artifacts, nil
}

// DeleteArtifact removes an artifact. Open sessions keep their copy.
func (c *Client) DeleteArtifact(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/artifacts/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// CreateSession opens a new editing session.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error) {
	return c.postSession(ctx, "/v1/sessions", req, http.StatusCreated)
}

// JoinSession issues a token for a user on an existing session.
func (c *Client) JoinSession(ctx context.Context, fileID string, req JoinSessionRequest) (*SessionResponse, error) {
	return c.postSession(ctx, "/v1/sessions/"+url.PathEscape(fileID)+"/tokens", req, http.StatusOK)
}

func (c *Client) postSession(ctx context.Context, path string, body any, expected int) (*SessionResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(payload), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, expected); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions lists live sessions.
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/sessions", nil, nil)
	if err != nil {
		return nil, err
	}

	var out SessionListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// CloseSession drops a session and its lock.
func (c *Client) CloseSession(ctx context.Context, fileID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(fileID), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
