package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestSourcesStayInRange(t *testing.T) {
	for _, src := range []Source{Global(), NewSeeded(7), FromSeed(0), FromSeed(3)} {
		for i := 0; i < 500; i++ {
			v := src.IntN(3)
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, 3)
		}
	}
}

func TestNewSeed(t *testing.T) {
	s1, err := NewSeed()
	require.NoError(t, err)
	s2, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}
