package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriveFileID(t *testing.T) {
	t.Parallel()

	t.Run("extracts the id from common link shapes", func(t *testing.T) {
		for _, link := range []string{
			"https://drive.google.com/file/d/1a2B3c4D5e6F7g8H9i0JkLmNoPqRsTuVw/view?usp=sharing",
			"https://drive.google.com/open?id=1a2B3c4D5e6F7g8H9i0JkLmNoPqRsTuVw",
			"https://docs.google.com/document/d/1a2B3c4D5e6F7g8H9i0JkLmNoPqRsTuVw/edit",
		} {
			id, err := DriveFileID(link)
			require.NoError(t, err)
			require.Equal(t, "1a2B3c4D5e6F7g8H9i0JkLmNoPqRsTuVw", id)
		}
	})

	t.Run("rejects links without an id", func(t *testing.T) {
		for _, link := range []string{
			"",
			"https://drive.google.com/",
			"https://example.com/not/drive",
		} {
			_, err := DriveFileID(link)
			require.ErrorIs(t, err, ErrInvalidDriveLink)
		}
	})
}
