package domain_test

import (
	"testing"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]domain.Role{
		"editor":    domain.RoleEditor,
		"Editor":    domain.RoleEditor,
		"secretary": domain.RoleEditor,
		"viewer":    domain.RoleViewer,
		" member ":  domain.RoleViewer,
	}
	for in, want := range cases {
		got, err := domain.ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := domain.ParseRole("admin")
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestRolePermission(t *testing.T) {
	require.True(t, domain.RoleEditor.CanWrite())
	require.False(t, domain.RoleViewer.CanWrite())
	require.Equal(t, "edit", domain.RoleEditor.Permission())
	require.Equal(t, "readonly", domain.RoleViewer.Permission())
}

func TestSessionExtension(t *testing.T) {
	require.Equal(t, "docx", domain.Session{FileName: "Report.DOCX"}.Extension())
	require.Equal(t, "odt", domain.Session{FileName: "a.b.odt"}.Extension())
	require.Equal(t, "", domain.Session{FileName: "README"}.Extension())
	require.Equal(t, "", domain.Session{FileName: "dir.v2/README"}.Extension())
}

func TestValidateArtifactID(t *testing.T) {
	for _, ok := range []string{"doc123", "3f2a9c1e-8d7b-4a1f-9a43-0c6a1f0e2b11", "minutes_2024.v2"} {
		require.NoError(t, domain.ValidateArtifactID(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", "../etc/passwd", "a/b", "a b", string(make([]byte, 129))} {
		require.ErrorIs(t, domain.ValidateArtifactID(bad), domain.ErrInvalidArtifactID, bad)
	}
}
