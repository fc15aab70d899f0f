// Package fsdir serves artifacts from a directory of generated documents,
// one file per artifact named {id}{ext}.
package fsdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/cryptox"
)

// DefaultExt is the extension of generated documents.
const DefaultExt = ".docx"

type Store struct {
	Dir string

	// Ext is appended to the artifact id to form the file name.
	Ext string

	// OwnerID is reported for every artifact; a plain directory has no
	// notion of ownership.
	OwnerID string
}

var _ store.Artifacts = (*Store)(nil)

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{Dir: dir, Ext: DefaultExt}, nil
}

func (s *Store) ext() string {
	if s.Ext == "" {
		return DefaultExt
	}
	return s.Ext
}

func (s *Store) path(id string) (string, error) {
	if err := domain.ValidateArtifactID(id); err != nil {
		return "", store.ErrInvalidID
	}
	return filepath.Join(s.Dir, id+s.ext()), nil
}

func (s *Store) GetArtifact(ctx context.Context, id string) (domain.Artifact, []byte, error) {
	p, err := s.path(id)
	if err != nil {
		return domain.Artifact{}, nil, store.ErrNotFound
	}

	content, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Artifact{}, nil, store.ErrNotFound
	}
	if err != nil {
		return domain.Artifact{}, nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return domain.Artifact{}, nil, err
	}

	a := s.describe(id, info)
	a.SHA256 = cryptox.FingerprintContent(content)
	return a, content, nil
}

func (s *Store) ListArtifacts(ctx context.Context) ([]domain.Artifact, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	var out []domain.Artifact
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext()) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), s.ext())
		if domain.ValidateArtifactID(id) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, s.describe(id, info))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PutArtifact writes content via a temp file and rename so readers never
// see a half-written document. FileName is derived from the id.
func (s *Store) PutArtifact(ctx context.Context, a domain.Artifact, content []byte) (domain.Artifact, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	p, err := s.path(a.ID)
	if err != nil {
		return domain.Artifact{}, err
	}

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return domain.Artifact{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return domain.Artifact{}, err
	}
	if err := tmp.Close(); err != nil {
		return domain.Artifact{}, err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return domain.Artifact{}, err
	}

	info, err := os.Stat(p)
	if err != nil {
		return domain.Artifact{}, err
	}
	out := s.describe(a.ID, info)
	out.SHA256 = cryptox.FingerprintContent(content)
	return out, nil
}

func (s *Store) DeleteArtifact(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return store.ErrNotFound
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.Dir)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) describe(id string, info fs.FileInfo) domain.Artifact {
	mod := info.ModTime().UTC()
	return domain.Artifact{
		ID:        id,
		FileName:  id + s.ext(),
		OwnerID:   s.OwnerID,
		Size:      info.Size(),
		CreatedAt: mod,
		UpdatedAt: mod,
	}
}
