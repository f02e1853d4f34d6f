package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

func TestPruneIndex(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	docs, err := s.CreateMany(ctx, "things", []Document{{"name": "a"}, {"name": "b"}, {"name": "c"}})
	require.NoError(t, err)

	gone := docs[1]["id"].(string)
	mr.Del("test:things:doc:" + gone)

	n, err := s.PruneIndex(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.Count(ctx, "things")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	n, err = s.PruneIndex(ctx, "things")
	require.NoError(t, err)
	assert.Zero(t, n, "second pass finds nothing")
}

func TestPruneIndexEmptyAndDisabled(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	n, err := s.PruneIndex(ctx, "nothing")
	require.NoError(t, err)
	assert.Zero(t, n)

	s.DisableNetwork()
	_, err = s.PruneIndex(ctx, "nothing")
	assert.ErrorIs(t, err, domain.ErrNetworkDisabled)
}
