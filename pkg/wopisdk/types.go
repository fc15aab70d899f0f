package wopisdk

import "time"

// WOPI protocol headers.
const (
	HeaderOverride          = "X-WOPI-Override"
	HeaderLock              = "X-WOPI-Lock"
	HeaderOldLock           = "X-WOPI-OldLock"
	HeaderItemVersion       = "X-WOPI-ItemVersion"
	HeaderLockFailureReason = "X-WOPI-LockFailureReason"
)

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of the host's dependencies on /readyz.
type HealthChecks struct {
	// Artifacts is the artifact catalogue status
	Artifacts string `json:"artifacts"`

	// Signer indicates the access token signing capability status
	Signer string `json:"signer"`

	// Sessions is the number of live sessions over the configured maximum
	Sessions string `json:"sessions"`
}

// CreateSessionRequest opens a new editing session on an artifact.
type CreateSessionRequest struct {
	// ArtifactID names the generated document to copy.
	ArtifactID string `json:"artifactId"`

	// FileName overrides the artifact's file name shown in the editor.
	FileName string `json:"fileName,omitempty"`

	// OwnerID defaults to UserID.
	OwnerID string `json:"ownerId,omitempty"`

	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`

	// Role is "editor" or "viewer" ("secretary"/"member" are accepted too).
	Role string `json:"role"`
}

// JoinSessionRequest issues a token on an existing session.
type JoinSessionRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"`
}

// SessionResponse is returned when a session is created or joined.
type SessionResponse struct {
	FileID         string    `json:"fileId"`
	FileName       string    `json:"fileName"`
	WopiSrc        string    `json:"wopiSrc"`
	AccessToken    string    `json:"accessToken"`
	AccessTokenTTL int64     `json:"accessTokenTtl"`
	ExpiresAt      time.Time `json:"expiresAt"`
	EditorURL      string    `json:"editorUrl"`
}

// SessionInfo describes a live session.
type SessionInfo struct {
	FileID           string    `json:"fileId"`
	SourceArtifactID string    `json:"sourceArtifactId"`
	FileName         string    `json:"fileName"`
	OwnerID          string    `json:"ownerId"`
	Size             int64     `json:"size"`
	Version          string    `json:"version"`
	LockID           string    `json:"lockId,omitempty"`
	LastModified     time.Time `json:"lastModified"`
	LastAccessed     time.Time `json:"lastAccessed"`
}

// SessionListResponse is returned by GET /v1/sessions.
type SessionListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// ArtifactResponse describes a stored artifact.
type ArtifactResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	OwnerID   string    `json:"ownerId,omitempty"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArtifactListResponse is returned by GET /v1/artifacts.
type ArtifactListResponse struct {
	Artifacts []ArtifactResponse `json:"artifacts"`
}

// FileInfo is the CheckFileInfo body as sent by the host.
type FileInfo struct {
	BaseFileName               string `json:"BaseFileName"`
	OwnerId                    string `json:"OwnerId"`
	Size                       int64  `json:"Size"`
	UserId                     string `json:"UserId"`
	UserFriendlyName           string `json:"UserFriendlyName"`
	Version                    string `json:"Version"`
	SHA256                     string `json:"SHA256"`
	LastModifiedTime           string `json:"LastModifiedTime"`
	UserCanWrite               bool   `json:"UserCanWrite"`
	ReadOnly                   bool   `json:"ReadOnly"`
	UserCanNotWriteRelative    bool   `json:"UserCanNotWriteRelative"`
	SupportsUpdate             bool   `json:"SupportsUpdate"`
	SupportsLocks              bool   `json:"SupportsLocks"`
	SupportsGetLock            bool   `json:"SupportsGetLock"`
	SupportsExtendedLockLength bool   `json:"SupportsExtendedLockLength"`
	PostMessageOrigin          string `json:"PostMessageOrigin"`
}
