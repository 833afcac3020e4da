package kd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/sqlite-mosaic/index"
	"github.com/viant/sqlite-mosaic/index/bruteforce"
	"github.com/viant/sqlite-mosaic/rgb"
)

func TestIndex_Unbuilt(t *testing.T) {
	idx := New()
	assert.Equal(t, 0, idx.Len())
	_, err := idx.Nearest(rgb.New(1, 2, 3))
	assert.ErrorIs(t, err, index.ErrEmpty)
	assert.ErrorIs(t, idx.Build(nil), index.ErrEmpty)
	assert.ErrorIs(t, idx.Check(), index.ErrEmpty)
}

func TestIndex_MatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	palette := map[rgb.Point]string{}
	for len(palette) < 750 {
		p := rgb.New(uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)))
		palette[p] = p.String() + ".png"
	}
	brute := &bruteforce.Index{}
	require.NoError(t, index.Build(brute, palette))

	for _, mode := range []SearchMode{SearchRecursive, SearchStack} {
		idx := New(WithSearch(mode))
		require.NoError(t, index.Build(idx, palette))
		require.NoError(t, idx.Check())
		assert.Equal(t, len(palette), idx.Len())
		assert.Equal(t, mode, idx.Mode())

		for i := 0; i < 500; i++ {
			q := rgb.New(uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)))
			got, err := idx.Search(q)
			require.NoError(t, err)
			_, want, err := brute.Search(q)
			require.NoError(t, err)
			require.Equal(t, want, got.Dist2, "mode=%s q=%s", mode, q)
			_, ok := palette[got.Point]
			require.True(t, ok)
		}
	}
}

func TestParseSearchMode(t *testing.T) {
	m, err := ParseSearchMode("")
	require.NoError(t, err)
	assert.Equal(t, SearchRecursive, m)
	m, err = ParseSearchMode("Stack")
	require.NoError(t, err)
	assert.Equal(t, SearchStack, m)
	_, err = ParseSearchMode("bfs")
	assert.Error(t, err)
}
