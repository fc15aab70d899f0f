package domain

import (
	"path"
	"strings"
	"time"
)

// Session is the metadata of a WOPI working copy. Content is held by the
// session store and read separately.
type Session struct {
	FileID           string
	SourceArtifactID string
	FileName         string
	OwnerID          string
	Size             int64
	Version          string
	SHA256           string
	CreatedAt        time.Time
	LastModified     time.Time
	LastAccessed     time.Time

	// Written is false until the first successful PutFile.
	Written bool
}

// Extension returns the lower-case file extension without the dot.
func (s Session) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(s.FileName), "."))
}
