package grammar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackedInstanceSizeMismatchErrors(t *testing.T) {
	g := NewGrammar()
	s := g.NewSymbol("bad", 1)
	must(t, s.DefineText([]byte("abc")))
	s.SetTracked(2) // declared width disagrees with the 3-byte literal

	_, err := g.Generate(context.Background(), s)
	require.ErrorIs(t, err, ErrTrackedSizeMismatch)
}

// A tracked symbol whose content space has exactly one possible value can
// never produce a second unique instance; generating it twice exhausts the
// retry budget.
func TestTrackedInstanceExhaustsRetryBudgetWithoutUniqueValues(t *testing.T) {
	g := NewGrammar()
	tracked := g.NewSymbol("singleton", 1)
	must(t, tracked.DefineRegex())
	must(t, tracked.AddRegexPart([]byte("a"), 1, 1))
	tracked.SetTracked(1)

	root := g.NameToSymbol("root", 2)
	must(t, root.DefineConcat())
	must(t, root.AddConcat(tracked))
	must(t, root.AddConcat(tracked))

	_, err := g.Generate(context.Background(), root)
	require.ErrorIs(t, err, ErrTrackingExhausted)
}

func TestScopedRefWithoutAnyInstanceErrors(t *testing.T) {
	g := NewGrammar()
	tracked := g.NewSymbol("id", 1)
	must(t, tracked.DefineText([]byte("Q")))
	tracked.SetTracked(1)

	scopedRef := g.NewSymbol("scopedref", 2)
	must(t, scopedRef.DefineScopedReference(tracked))

	_, err := g.Generate(context.Background(), scopedRef)
	require.ErrorIs(t, err, ErrUnscopedReference)
}

// A ScopedRef resolves a live in-scope instance before the enclosing scope
// closes; a plain Reference later resolves the same instance after it has
// been descoped, via the pool expandReferences back-patches from.
func TestScopeDisciplineScopedRefLiveThenReferenceAfterClose(t *testing.T) {
	g := NewGrammar()
	open, err := g.Get("{")
	require.NoError(t, err)
	closeSym, err := g.Get("}")
	require.NoError(t, err)

	tracked := g.NewSymbol("id", 1)
	must(t, tracked.DefineText([]byte("Q")))
	tracked.SetTracked(1)

	scopedRef := g.NewSymbol("scopedref", 2)
	must(t, scopedRef.DefineScopedReference(tracked))

	ref := g.NewSymbol("ref", 3)
	must(t, ref.DefineReference(tracked))

	root := g.NameToSymbol("root", 4)
	must(t, root.DefineConcat())
	must(t, root.AddConcat(open))
	must(t, root.AddConcat(tracked))
	must(t, root.AddConcat(scopedRef))
	must(t, root.AddConcat(closeSym))
	must(t, root.AddConcat(ref))

	out, err := g.Generate(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "QQQ", string(out))
}

// Once a scope holding a tracked instance's only occurrence closes, a
// ScopedRef can no longer see it (only a Reference can, via the descoped
// pool resolved at expand time).
func TestScopeDisciplineScopedRefUnavailableAfterClose(t *testing.T) {
	g := NewGrammar()
	open, err := g.Get("{")
	require.NoError(t, err)
	closeSym, err := g.Get("}")
	require.NoError(t, err)

	tracked := g.NewSymbol("id", 1)
	must(t, tracked.DefineText([]byte("Q")))
	tracked.SetTracked(1)

	scopedRef := g.NewSymbol("scopedref", 2)
	must(t, scopedRef.DefineScopedReference(tracked))

	root := g.NameToSymbol("root", 3)
	must(t, root.DefineConcat())
	must(t, root.AddConcat(open))
	must(t, root.AddConcat(tracked))
	must(t, root.AddConcat(closeSym))
	must(t, root.AddConcat(scopedRef))

	_, err = g.Generate(context.Background(), root)
	require.ErrorIs(t, err, ErrUnscopedReference)
}

// A tracked symbol whose own production recurses into itself reopens a
// tracking span that is already open, which is a hard error: tracked spans
// cannot nest.
func TestNestedTrackingIsRejected(t *testing.T) {
	g := NewGrammar()
	self := g.NewSymbol("self", 1)
	must(t, self.DefineConcat())
	must(t, self.AddConcat(self))
	self.SetTracked(1)

	_, err := g.Generate(context.Background(), self)
	require.ErrorIs(t, err, ErrNestedTracking)
}
