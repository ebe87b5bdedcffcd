package rnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keurnel/gramfuzz/internal/gentrace"
)

func TestNewSeededIsReproducible(t *testing.T) {
	a := NewSeeded(1, 2)
	b := NewSeeded(1, 2)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Rnd(1000), b.Rnd(1000))
	}
}

func TestRndIsWithinBounds(t *testing.T) {
	s := NewSeeded(42, 7)
	for i := 0; i < 1000; i++ {
		v := s.Rnd(10)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}
}

func TestRndlIsWithinBounds(t *testing.T) {
	s := NewSeeded(42, 7)
	for i := 0; i < 1000; i++ {
		v := s.Rndl(5.0)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 5.0)
	}
}

func TestRndlIncIsWithinInclusiveBounds(t *testing.T) {
	s := NewSeeded(42, 7)
	for i := 0; i < 1000; i++ {
		v := s.RndlInc(5.0)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 5.0)
	}
}

func TestChanceDistribution(t *testing.T) {
	s := NewSeeded(1, 1)
	hits := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if s.Chance(0.25) {
			hits++
		}
	}
	ratio := float64(hits) / n
	assert.InDelta(t, 0.25, ratio, 0.03)
}

func TestFingerprintRecordsTenDigits(t *testing.T) {
	s := NewSeeded(1, 1)
	tr := gentrace.New(gentrace.Gen)

	s.Fingerprint(tr)

	// Fingerprint is logged outside any category, so it is visible as
	// soon as any tracing is enabled.
	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Message(), 10)
}

func TestNewProducesUsableSource(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.GreaterOrEqual(t, s.Rnd(100), 0)
}
