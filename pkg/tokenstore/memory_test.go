package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemory()

	_, err := st.Load(ctx)
	require.ErrorIs(t, err, ErrNoCredentials)

	pair := Pair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 60}
	require.NoError(t, st.Save(ctx, pair))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, pair, got)

	require.NoError(t, st.Clear(ctx))
	_, err = st.Load(ctx)
	require.ErrorIs(t, err, ErrNoCredentials)
	require.NoError(t, st.Clear(ctx))
}
