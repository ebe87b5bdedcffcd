// Package grammar implements a grammar-driven test-case generator: a
// symbol algebra of typed productions, a recursive generator threading
// probabilistic mutations, and a post-processing expand pass that resolves
// back-references and duplicates chosen slices to simulate deep recursion.
package grammar

import (
	"context"
	"fmt"

	"github.com/keurnel/gramfuzz/internal/gentrace"
	"github.com/keurnel/gramfuzz/internal/rnd"
)

// RecursionTimes is the number of times the slice-duplication pass repeats
// a chosen inner span to synthesize deeper nesting than the grammar would
// normally produce.
const RecursionTimes = 7

// HardDepthLimit is the absolute recursion ceiling; exceeding it fails the
// generation regardless of MaxDepth.
const HardDepthLimit = 10000

// initialBufferSize and bufferGrowChunk mirror the original's 1 MiB
// initial allocation growing in 0.5 MiB increments.
const (
	initialBufferSize = 1024 * 1024
	bufferGrowChunk   = 512 * 1024
)

// Grammar is a symbol registry: it assigns dense integer ids, interns
// symbols by name and by literal text, and holds the top-level generation
// parameters. Generation does not change the symbol registry, but every
// Generate call records LastDepthWatermark on the Grammar and draws from the
// source attached with WithRand, so concurrent Generate calls on one Grammar
// are not synchronized with each other.
type Grammar struct {
	symbols []*Symbol
	byName  map[string]*Symbol
	byText  map[string]*Symbol

	// StarDepth is vestigial: the star-repetition formula no longer reads
	// it, but it is kept as a documented no-op for compatibility with
	// hosts that still set it.
	StarDepth int
	MaxDepth  int
	MaxSize   int

	LastDepthWatermark int

	tracer *gentrace.Tracer
	source rnd.Randomizer

	braceOpen  *Symbol
	braceClose *Symbol
}

// NewGrammar constructs an empty Grammar with the original defaults
// (StarDepth=5, MaxDepth unlimited, MaxSize unlimited) and pre-registers
// the "{" / "}" pseudo-symbols that drive scope push/pop.
func NewGrammar() *Grammar {
	g := &Grammar{
		byName:    make(map[string]*Symbol),
		byText:    make(map[string]*Symbol),
		StarDepth: 5,
		MaxDepth:  0,
		MaxSize:   -1,
	}

	g.braceOpen = g.NameToSymbol("{", 0)
	g.braceOpen.defineIncScope()
	g.braceClose = g.NameToSymbol("}", 0)
	g.braceClose.defineDecScope()

	return g
}

// WithMaxSize sets the soft output-size budget (-1 = unlimited) and
// returns the receiver for chaining.
func (g *Grammar) WithMaxSize(n int) *Grammar {
	g.MaxSize = n
	return g
}

// WithMaxDepth sets the soft recursion-depth budget (0 = unlimited) and
// returns the receiver for chaining.
func (g *Grammar) WithMaxDepth(n int) *Grammar {
	g.MaxDepth = n
	return g
}

// WithTracer attaches a category-filtered trace log and returns the
// receiver for chaining. A nil tracer disables tracing (the default).
func (g *Grammar) WithTracer(t *gentrace.Tracer) *Grammar {
	g.tracer = t
	return g
}

// WithRand attaches an explicit random source and returns the receiver for
// chaining. Tests use this to force reproducible (or fully scripted)
// generation; production callers typically let Generate lazily create a
// fresh OS-seeded *rnd.Source.
func (g *Grammar) WithRand(s rnd.Randomizer) *Grammar {
	g.source = s
	return g
}

func (g *Grammar) register(s *Symbol) {
	g.symbols = append(g.symbols, s)
}

// NameToSymbol interns a symbol by name: it reuses any symbol already
// registered under name, or creates and registers a new Abstract symbol.
func (g *Grammar) NameToSymbol(name string, lineNo int) *Symbol {
	if existing, ok := g.byName[name]; ok {
		return existing
	}
	s := newSymbol(len(g.symbols), name, lineNo)
	g.register(s)
	g.byName[name] = s
	return s
}

// TextToSymbol interns a symbol by exact literal byte content: it reuses
// any Text symbol already registered for this exact content, or creates
// and registers a new one.
func (g *Grammar) TextToSymbol(data []byte, lineNo int) *Symbol {
	key := string(data)
	if existing, ok := g.byText[key]; ok {
		return existing
	}
	s := newSymbol(len(g.symbols), "", lineNo)
	if err := s.DefineText(data); err != nil {
		// DefineText cannot fail on a fresh Abstract symbol.
		panic(err)
	}
	g.register(s)
	g.byText[key] = s
	return s
}

// NewSymbol creates an unregistered (not name-interned) Abstract symbol —
// for inline, unnamed grammar nodes — that still receives a fresh,
// grammar-unique id.
func (g *Grammar) NewSymbol(name string, lineNo int) *Symbol {
	s := newSymbol(len(g.symbols), name, lineNo)
	g.register(s)
	return s
}

// Get looks up a registered symbol by name.
func (g *Grammar) Get(name string) (*Symbol, error) {
	s, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedSymbol, name)
	}
	return s, nil
}

// At returns the symbol with the given dense id.
func (g *Grammar) At(id int) (*Symbol, error) {
	if id < 0 || id >= len(g.symbols) {
		return nil, fmt.Errorf("grammar: symbol id %d out of range [0,%d)", id, len(g.symbols))
	}
	return g.symbols[id], nil
}

// Len returns the number of registered symbols.
func (g *Grammar) Len() int {
	return len(g.symbols)
}

func (g *Grammar) randomNonTrackedNonCleanSymbol(source rnd.Randomizer) *Symbol {
	if len(g.symbols) == 0 {
		return nil
	}
	const maxAttempts = 64
	for i := 0; i < maxAttempts; i++ {
		s := g.symbols[source.Rnd(len(g.symbols))]
		if s.kind == KindAbstract || s.clean || s.recursiveClean || s.tracked > 0 {
			continue
		}
		return s
	}
	return nil
}

// Generate produces a byte sequence in the grammar's language by invoking
// generation on root, which may be either a *Symbol belonging to this
// grammar or the name of a registered symbol. ctx is checked at every
// recursive descent so a caller can bound an otherwise-unbounded recursive
// generation with a deadline.
func (g *Grammar) Generate(ctx context.Context, root any) ([]byte, error) {
	var rootSym *Symbol
	switch r := root.(type) {
	case *Symbol:
		rootSym = r
	case string:
		s, err := g.Get(r)
		if err != nil {
			return nil, err
		}
		rootSym = s
	default:
		return nil, fmt.Errorf("grammar: root must be *Symbol or string, got %T", root)
	}

	return g.generateReal(ctx, rootSym)
}

func (g *Grammar) generateReal(ctx context.Context, root *Symbol) ([]byte, error) {
	source := g.source
	if source == nil {
		s, err := rnd.New()
		if err != nil {
			return nil, fmt.Errorf("grammar: acquiring random source: %w", err)
		}
		source = s
	}

	gs := newGenState(g, source, g.tracer, initialBufferSize)

	if err := generateSymbol(ctx, gs, root); err != nil {
		return nil, err
	}

	g.LastDepthWatermark = gs.depthWatermark

	out, err := gs.expand()
	if err != nil {
		return nil, err
	}

	return out, nil
}
