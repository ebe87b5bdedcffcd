package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keurnel/gramfuzz/internal/rnd"
)

func TestMarkupGrammarPassesSanityCheck(t *testing.T) {
	g := buildMarkupGrammar()
	require.NoError(t, g.SanityCheck())
}

func TestArithmeticGrammarPassesSanityCheck(t *testing.T) {
	peer := buildMarkupGrammar()
	g := buildArithmeticGrammar(peer)
	require.NoError(t, g.SanityCheck())
}

func TestMarkupGrammarGeneratesWellFormedOutput(t *testing.T) {
	g := buildMarkupGrammar().WithRand(rnd.NewSeeded(7, 13))

	out, err := g.Generate(context.Background(), "root")
	require.NoError(t, err)

	assert.Contains(t, string(out), `<tag id="`)
	assert.Contains(t, string(out), "</tag>")
	assert.Contains(t, string(out), " ref=")
}

func TestArithmeticGrammarDelegatesIntoMarkup(t *testing.T) {
	peer := buildMarkupGrammar().WithRand(rnd.NewSeeded(1, 2))
	g := buildArithmeticGrammar(peer).WithRand(rnd.NewSeeded(3, 4))

	out, err := g.Generate(context.Background(), "root")
	require.NoError(t, err)

	assert.Contains(t, string(out), "HELLO")
	assert.Contains(t, string(out), `<tag id="`)
}

func TestUppercaseCallableRejectsWrongArgCount(t *testing.T) {
	_, err := uppercase([][]byte{[]byte("a"), []byte("b")})
	require.Error(t, err)
}

func TestUppercaseCallable(t *testing.T) {
	out, err := uppercase([][]byte{[]byte("shout")})
	require.NoError(t, err)
	assert.True(t, bytes.Equal(out, []byte("SHOUT")))
}

func TestNewSourceNegativeSeedDrawsFromOS(t *testing.T) {
	s, err := newSource(-1)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNewSourceExplicitSeedIsReproducible(t *testing.T) {
	s1, err := newSource(42)
	require.NoError(t, err)
	s2, err := newSource(42)
	require.NoError(t, err)
	assert.Equal(t, s1.Rnd(1000), s2.Rnd(1000))
}
