package wchoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keurnel/gramfuzz/internal/rnd"
)

func TestChoiceOnEmptyBagErrors(t *testing.T) {
	w := New()
	_, err := w.Choice(rnd.NewSeeded(1, 1))
	require.Error(t, err)
}

func TestChoiceRespectsWeights(t *testing.T) {
	w := New()
	w.Append("a", 1.0)
	w.Append("b", 0.0)

	source := rnd.NewSeeded(1, 1)
	for i := 0; i < 100; i++ {
		got, err := w.Choice(source)
		require.NoError(t, err)
		assert.Equal(t, "a", got)
	}
}

func TestChoiceDistribution(t *testing.T) {
	w := New()
	w.Append("x", 1.0)
	w.Append("y", 3.0)

	source := rnd.NewSeeded(7, 9)
	counts := map[string]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		got, err := w.Choice(source)
		require.NoError(t, err)
		counts[got.(string)]++
	}

	ratio := float64(counts["y"]) / float64(n)
	assert.InDelta(t, 0.75, ratio, 0.03)
}

func TestLenAndTotal(t *testing.T) {
	w := New()
	assert.Equal(t, 0, w.Len())
	w.Append("a", 2.5)
	w.Append("b", 1.5)
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, 4.0, w.Total())
}
