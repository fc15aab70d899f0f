package fsdir_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store/drivers/fsdir"
	"github.com/stretchr/testify/require"
)

func TestGetArtifactFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc123.docx"), []byte("generated"), 0o600))

	s, err := fsdir.NewStore(dir)
	require.NoError(t, err)
	s.OwnerID = "pipeline"

	a, content, err := s.GetArtifact(context.Background(), "doc123")
	require.NoError(t, err)
	require.Equal(t, []byte("generated"), content)
	require.Equal(t, "doc123.docx", a.FileName)
	require.Equal(t, "pipeline", a.OwnerID)
	require.Equal(t, int64(9), a.Size)
	require.NotEmpty(t, a.SHA256)
}

func TestGetArtifactMissingOrUnsafe(t *testing.T) {
	s, err := fsdir.NewStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"missing", "../../etc/passwd", ""} {
		_, _, err := s.GetArtifact(context.Background(), id)
		require.ErrorIs(t, err, store.ErrNotFound, id)
	}
}

func TestPutListDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "Documents", "Temp")
	s, err := fsdir.NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	a, err := s.PutArtifact(ctx, domain.Artifact{ID: "minutes"}, []byte("v1"))
	require.NoError(t, err)
	require.Equal(t, "minutes.docx", a.FileName)

	_, err = s.PutArtifact(ctx, domain.Artifact{ID: "minutes"}, []byte("v2"))
	require.NoError(t, err)
	_, content, err := s.GetArtifact(ctx, "minutes")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), content)

	// non-matching files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	list, err := s.ListArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "minutes", list[0].ID)

	require.NoError(t, s.DeleteArtifact(ctx, "minutes"))
	require.ErrorIs(t, s.DeleteArtifact(ctx, "minutes"), store.ErrNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestPutRejectsUnsafeID(t *testing.T) {
	s, err := fsdir.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.PutArtifact(context.Background(), domain.Artifact{ID: "../escape"}, []byte("x"))
	require.ErrorIs(t, err, store.ErrInvalidID)
}
