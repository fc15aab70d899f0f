package store

import (
	"context"
	"errors"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrCapacity      = errors.New("store: session capacity reached")
	ErrClosed        = errors.New("store: closed")
	ErrInvalidID     = errors.New("store: invalid id")
)

// ArtifactSource supplies the bytes a new session is copied from.
type ArtifactSource interface {
	// GetArtifact returns the artifact descriptor and its full content.
	GetArtifact(ctx context.Context, id string) (domain.Artifact, []byte, error)
}

// Artifacts is the catalogue of generated documents. Drivers: sqlite, fsdir.
type Artifacts interface {
	ArtifactSource

	// PutArtifact inserts or replaces an artifact. ID, FileName and OwnerID
	// come from the caller; size, hash and timestamps are computed.
	PutArtifact(ctx context.Context, a domain.Artifact, content []byte) (domain.Artifact, error)

	// ListArtifacts returns descriptors (no content), newest first.
	ListArtifacts(ctx context.Context) ([]domain.Artifact, error)

	// DeleteArtifact removes an artifact. Existing sessions keep their copy.
	DeleteArtifact(ctx context.Context, id string) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Sessions holds WOPI working copies. Implementations guard each session
// independently so that requests for different files never wait on each
// other, and replace content atomically.
type Sessions interface {
	// Create copies the source artifact into a new session with a fresh,
	// collision-free file id. Empty fileName/ownerID fall back to the
	// artifact's own values.
	Create(ctx context.Context, sourceArtifactID, fileName, ownerID string) (domain.Session, error)

	// GetMetadata returns the session descriptor.
	GetMetadata(ctx context.Context, fileID string) (domain.Session, error)

	// Read returns the current content and the descriptor it belongs to.
	// The returned slice must not be modified.
	Read(ctx context.Context, fileID string) ([]byte, domain.Session, error)

	// Write replaces the content and bumps the version.
	Write(ctx context.Context, fileID string, content []byte) (domain.Session, error)

	// Delete drops a session.
	Delete(ctx context.Context, fileID string) error

	// List returns all session descriptors.
	List(ctx context.Context) ([]domain.Session, error)

	// EvictIdle drops sessions not accessed since cutoff, except those for
	// which keep returns true. It returns the evicted file ids.
	EvictIdle(ctx context.Context, cutoff time.Time, keep func(fileID string) bool) ([]string, error)

	// Len reports the number of live sessions.
	Len() int

	// Close drops every session. Further calls return ErrClosed.
	Close() error
}
