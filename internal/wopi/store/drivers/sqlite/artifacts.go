package sqlite

import (
	"context"

	"github.com/google/uuid"
	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/cryptox"
)

func (s *Store) GetArtifact(ctx context.Context, id string) (domain.Artifact, []byte, error) {
	row, err := s.q.GetArtifact(ctx, id)
	if err != nil {
		return domain.Artifact{}, nil, mapNotFound(err)
	}
	return mapArtifact(row), row.Content, nil
}

func (s *Store) ListArtifacts(ctx context.Context) ([]domain.Artifact, error) {
	rows, err := s.q.ListArtifacts(ctx)
	if err != nil {
		return nil, err
	}

	artifacts := make([]domain.Artifact, len(rows))
	for i, row := range rows {
		artifacts[i] = mapArtifact(row)
	}
	return artifacts, nil
}

// PutArtifact stores content under a.ID, or under a new UUID when a.ID is
// empty.
func (s *Store) PutArtifact(ctx context.Context, a domain.Artifact, content []byte) (domain.Artifact, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := domain.ValidateArtifactID(a.ID); err != nil {
		return domain.Artifact{}, store.ErrInvalidID
	}
	if a.FileName == "" {
		a.FileName = a.ID + ".docx"
	}

	now := s.now().UTC().UnixMilli()
	row := artifactRow{
		ID:        a.ID,
		FileName:  a.FileName,
		OwnerID:   a.OwnerID,
		Size:      int64(len(content)),
		Sha256:    cryptox.FingerprintContent(content),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	createdAt, err := s.q.UpsertArtifact(ctx, row)
	if err != nil {
		return domain.Artifact{}, err
	}
	row.CreatedAt = createdAt

	return mapArtifact(row), nil
}

func (s *Store) DeleteArtifact(ctx context.Context, id string) error {
	n, err := s.q.DeleteArtifact(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapArtifact(row artifactRow) domain.Artifact {
	return domain.Artifact{
		ID:        row.ID,
		FileName:  row.FileName,
		OwnerID:   row.OwnerID,
		Size:      row.Size,
		SHA256:    row.Sha256,
		CreatedAt: fromMillis(row.CreatedAt),
		UpdatedAt: fromMillis(row.UpdatedAt),
	}
}
