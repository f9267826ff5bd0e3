package idx

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, New().String())
	}

	t.Run("ids are canonical ulids", func(t *testing.T) {
		for _, s := range ids {
			require.Len(t, s, 26)
			_, err := Parse(s)
			require.NoError(t, err)
		}
	})

	t.Run("ids generated in order sort in order", func(t *testing.T) {
		require.True(t, sort.StringsAreSorted(ids))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse("  " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	for _, s := range []string{"", "not-a-ulid", "0000"} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC().Truncate(time.Millisecond)
	id := New()
	after := time.Now().UTC()

	embedded := id.Time()
	require.False(t, embedded.Before(before))
	require.False(t, embedded.After(after.Add(time.Millisecond)))

	require.True(t, Zero.Time().IsZero())
}
