package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSanitizeAgentSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become underscores", "Acme Pty Ltd", "acme_pty_ltd"},
		{"punctuation becomes underscores", "Support-Bot!", "support_bot"},
		{"digits survive", "123 Go", "123_go"},
		{"surrounding noise is trimmed", "  --Acme--  ", "acme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeAgentSlug(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("names with no usable characters are rejected", func(t *testing.T) {
		for _, in := range []string{"", "   ", "!!!", "---"} {
			_, err := SanitizeAgentSlug(in)
			require.ErrorIs(t, err, ErrInvalidAgentName)
		}
	})
}

func TestClientAccountDeleted(t *testing.T) {
	t.Parallel()

	require.False(t, ClientAccount{}.Deleted())

	now := time.Now()
	require.True(t, ClientAccount{DeletionScheduledAt: &now}.Deleted())
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Acme", ClientAccount{Name: "Acme"}.DisplayName())
	require.Equal(t, "Your Company", ClientAccount{Name: "  "}.DisplayName())
}
