package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivityValidate(t *testing.T) {
	t.Parallel()

	t.Run("client lifecycle kinds reject source metadata", func(t *testing.T) {
		require.NoError(t, Activity{Kind: ActivityClientCreated}.Validate())
		require.NoError(t, Activity{Kind: ActivityClientRecovered}.Validate())

		err := Activity{
			Kind:     ActivityClientUpdated,
			Metadata: ActivityMetadata{SourceURL: "https://acme.example"},
		}.Validate()
		require.Error(t, err)
	})

	t.Run("source kinds require a source url", func(t *testing.T) {
		require.Error(t, Activity{Kind: ActivitySourceAdded}.Validate())
		require.NoError(t, Activity{
			Kind:     ActivitySourceRemoved,
			Metadata: ActivityMetadata{SourceURL: "https://acme.example", SourceKind: SourceKindWebsite},
		}.Validate())
	})

	t.Run("invitation kind requires an email", func(t *testing.T) {
		require.Error(t, Activity{Kind: ActivityInvitationSent}.Validate())
		require.NoError(t, Activity{
			Kind:     ActivityInvitationSent,
			Metadata: ActivityMetadata{Email: "owner@acme.example"},
		}.Validate())
	})

	t.Run("unknown kinds rejected", func(t *testing.T) {
		require.Error(t, Activity{Kind: "client_exploded"}.Validate())
		require.Error(t, Activity{}.Validate())
	})
}
