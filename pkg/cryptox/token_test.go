package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestMustGenerateToken_Panics(t *testing.T) {
	require.Panics(t, func() {
		MustGenerateToken(0)
	})
}

func TestFingerprintContent(t *testing.T) {
	content := []byte("PK\x03\x04 docx bytes")
	sum := sha256.Sum256(content)

	require.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), FingerprintContent(content))
	require.NotEqual(t, FingerprintContent(content), FingerprintContent([]byte("other")))
}

func TestEqualSecret(t *testing.T) {
	require.True(t, EqualSecret("s3cret", "s3cret"))
	require.False(t, EqualSecret("s3cret", "s3creT"))
	require.False(t, EqualSecret("s3cret", ""))
}
