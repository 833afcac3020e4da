package bruteforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/rgb"
)

func TestIndex_Nearest(t *testing.T) {
	idx := &Index{}
	_, err := idx.Nearest(rgb.New(0, 0, 0))
	assert.ErrorIs(t, err, index.ErrEmpty)
	assert.ErrorIs(t, idx.Build(nil), index.ErrEmpty)

	require.NoError(t, idx.Build([]rgb.Point{rgb.New(0, 0, 0), rgb.New(10, 10, 10), rgb.New(255, 255, 255)}))
	p, d, err := idx.Search(rgb.New(1, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, rgb.New(0, 0, 0), p)
	assert.Equal(t, 3, d)
}

func TestIndex_TieGoesToLast(t *testing.T) {
	idx := &Index{}
	require.NoError(t, idx.Build([]rgb.Point{rgb.New(0, 0, 0), rgb.New(2, 0, 0)}))
	p, err := idx.Nearest(rgb.New(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, rgb.New(2, 0, 0), p)
}
