package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Plaza/internal/domain"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.PutSpace(domain.Space{ID: "plaza", Width: 800, Height: 600})
	m.PutAvatar("alice", "Explorer")

	s, err := m.Space(ctx, "plaza")
	require.NoError(t, err)
	assert.Equal(t, 800, s.Width)
	assert.Equal(t, 600, s.Height)

	_, err = m.Space(ctx, "nowhere")
	assert.ErrorIs(t, err, domain.ErrSpaceNotFound)

	avatar, err := m.AvatarOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Explorer", avatar)

	_, err = m.AvatarOf(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
