package domain

import (
	"errors"
	"time"
)

// Artifact is a generated document handed to the host for editing. Sessions
// copy its bytes and never write back to it.
type Artifact struct {
	ID        string
	FileName  string
	OwnerID   string
	Size      int64
	SHA256    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const maxArtifactIDLen = 128

var ErrInvalidArtifactID = errors.New("invalid artifact id")

// ValidateArtifactID accepts ids made of letters, digits, '-', '_' and '.'
// that are safe to use as a file name.
func ValidateArtifactID(id string) error {
	if id == "" || len(id) > maxArtifactIDLen || id == "." || id == ".." {
		return ErrInvalidArtifactID
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return ErrInvalidArtifactID
		}
	}
	return nil
}
