package wopisdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// File speaks the WOPI file protocol for one file id and access token,
// the way an editor does.
type File struct {
	HTTPClient *http.Client

	// WopiSrc is the file URL, e.g. http://host/wopi/files/{fileId}.
	WopiSrc     string
	AccessToken string
}

// File returns a WOPI client for a session created through this host.
func (c *Client) File(sess *SessionResponse) *File {
	return &File{HTTPClient: c.HTTPClient, WopiSrc: sess.WopiSrc, AccessToken: sess.AccessToken}
}

// FileAt returns a WOPI client for a file id on this host, bypassing the
// public WopiSrc.
func (c *Client) FileAt(fileID, accessToken string) *File {
	return &File{
		HTTPClient:  c.HTTPClient,
		WopiSrc:     c.BaseURL + "/wopi/files/" + url.PathEscape(fileID),
		AccessToken: accessToken,
	}
}

func (f *File) url(suffix string) string {
	return strings.TrimSuffix(f.WopiSrc, "/") + suffix + "?access_token=" + url.QueryEscape(f.AccessToken)
}

func (f *File) do(ctx context.Context, method, suffix string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, f.url(suffix), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func wopiError(resp *http.Response) error {
	if resp.StatusCode == http.StatusConflict {
		return &LockConflictError{
			Held:   resp.Header.Get(HeaderLock),
			Reason: resp.Header.Get(HeaderLockFailureReason),
		}
	}
	return &StatusError{StatusCode: resp.StatusCode}
}

// CheckFileInfo fetches the file descriptor.
func (f *File) CheckFileInfo(ctx context.Context) (*FileInfo, error) {
	resp, err := f.do(ctx, http.MethodGet, "", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wopiError(resp)
	}

	var info FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &info, nil
}

// GetFile downloads the content and returns it with its item version.
func (f *File) GetFile(ctx context.Context) ([]byte, string, error) {
	resp, err := f.do(ctx, http.MethodGet, "/contents", nil, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", wopiError(resp)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return b, resp.Header.Get(HeaderItemVersion), nil
}

// PutFile uploads new content under lockID (empty for an unlocked write)
// and returns the new item version.
func (f *File) PutFile(ctx context.Context, lockID string, content []byte) (string, error) {
	headers := map[string]string{
		HeaderOverride: "PUT",
		"Content-Type": "application/octet-stream",
	}
	if lockID != "" {
		headers[HeaderLock] = lockID
	}

	resp, err := f.do(ctx, http.MethodPost, "/contents", bytes.NewReader(content), headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", wopiError(resp)
	}
	return resp.Header.Get(HeaderItemVersion), nil
}

func (f *File) override(ctx context.Context, op string, headers map[string]string) (*http.Response, error) {
	if headers == nil {
		headers = map[string]string{}
	}
	headers[HeaderOverride] = op

	resp, err := f.do(ctx, http.MethodPost, "", nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, wopiError(resp)
	}
	return resp, nil
}

// Lock takes or refreshes the lock.
func (f *File) Lock(ctx context.Context, lockID string) error {
	_, err := f.override(ctx, "LOCK", map[string]string{HeaderLock: lockID})
	return err
}

// RefreshLock extends the lock.
func (f *File) RefreshLock(ctx context.Context, lockID string) error {
	_, err := f.override(ctx, "REFRESH_LOCK", map[string]string{HeaderLock: lockID})
	return err
}

// Unlock releases the lock.
func (f *File) Unlock(ctx context.Context, lockID string) error {
	_, err := f.override(ctx, "UNLOCK", map[string]string{HeaderLock: lockID})
	return err
}

// UnlockAndRelock swaps oldLockID for lockID.
func (f *File) UnlockAndRelock(ctx context.Context, oldLockID, lockID string) error {
	_, err := f.override(ctx, "LOCK", map[string]string{HeaderLock: lockID, HeaderOldLock: oldLockID})
	return err
}

// GetLock returns the current lock id, empty when unlocked.
func (f *File) GetLock(ctx context.Context) (string, error) {
	resp, err := f.override(ctx, "GET_LOCK", nil)
	if err != nil {
		return "", err
	}
	return resp.Header.Get(HeaderLock), nil
}
