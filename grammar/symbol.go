package grammar

import (
	"fmt"

	"github.com/keurnel/gramfuzz/internal/wchoice"
)

// Kind identifies a Symbol's production variant. A Symbol is a closed sum
// type: exactly one Kind-specific payload is populated, and generation
// dispatches on Kind rather than through a polymorphic interface tree, so
// the engine can answer "is this terminal", "is this tracked", and
// "sanity-check this" without a type assertion per call site.
type Kind uint8

const (
	KindAbstract Kind = iota
	KindText
	KindConcat
	KindChoice
	KindStar
	KindRegex
	KindForeign
	KindReference
	KindScopedRef
	KindRndInt
	KindRndFlt
	KindIncScope
	KindDecScope
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindAbstract:
		return "Abstract"
	case KindText:
		return "Text"
	case KindConcat:
		return "Concat"
	case KindChoice:
		return "Choice"
	case KindStar:
		return "Star"
	case KindRegex:
		return "Regex"
	case KindForeign:
		return "Foreign"
	case KindReference:
		return "Reference"
	case KindScopedRef:
		return "ScopedRef"
	case KindRndInt:
		return "RndInt"
	case KindRndFlt:
		return "RndFlt"
	case KindIncScope:
		return "IncScope"
	case KindDecScope:
		return "DecScope"
	case KindFunction:
		return "Function"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Terminal is the symbol's tri-state terminal flag: Unknown until set,
// then No or Yes. Non-terminal symbols honor the generator's size/depth
// budgets before recursing; terminal symbols always emit.
type Terminal int8

const (
	TerminalUnknown Terminal = iota
	TerminalNo
	TerminalYes
)

// RegexPart is one ordered segment of a Regex production: emit a byte
// count in [Min,Max] drawn uniformly from Charset.
type RegexPart struct {
	Charset []byte
	Min     int
	Max     int
}

// Callable is a user-supplied function backing a Function symbol. It
// receives the generated bytes of each argument symbol in order and
// returns the bytes that replace the argument span in the output.
type Callable func(args [][]byte) ([]byte, error)

// Symbol is one production node in a grammar: shared metadata common to
// every variant, plus exactly one variant-specific payload selected by
// Kind. A zero Symbol obtained via newSymbol is Abstract; a Define* method
// transitions it to its final Kind exactly once.
type Symbol struct {
	id     int
	name   string
	lineNo int
	kind   Kind

	tracked        int
	clean          bool
	recursiveClean bool
	terminal       Terminal

	// Text
	text []byte

	// Concat
	concatChildren []*Symbol

	// Choice
	choiceBag *wchoice.WeightedChoice

	// Star
	starChild          *Symbol
	starRecommendCount int

	// Regex
	regexParts []RegexPart

	// Foreign
	foreignGrammar *Grammar
	foreignRoot    string

	// Reference / ScopedRef
	refTarget *Symbol

	// RndInt
	rndIntA    int
	rndIntSpan int

	// RndFlt
	rndFltA    float64
	rndFltSpan float64

	// Function
	fn     Callable
	fnArgs []*Symbol
}

// newSymbol constructs an Abstract symbol with the given identity. Callers
// register it into a Grammar's arena; it is not usable as a generation
// root until a Define* method has set its variant.
func newSymbol(id int, name string, lineNo int) *Symbol {
	return &Symbol{id: id, name: name, lineNo: lineNo, kind: KindAbstract}
}

// ID returns the symbol's dense, grammar-unique identifier.
func (s *Symbol) ID() int { return s.id }

// Name returns the name the symbol was created with: the registered name
// for Grammar.NameToSymbol, the given name for Grammar.NewSymbol, and ""
// for Text symbols interned via Grammar.TextToSymbol.
func (s *Symbol) Name() string { return s.name }

// LineNo returns the source line the symbol was declared on, if known.
func (s *Symbol) LineNo() int { return s.lineNo }

// Kind returns the symbol's production variant.
func (s *Symbol) Kind() Kind { return s.kind }

// Tracked returns the fixed byte width reserved for back-references to
// this symbol, or 0 if the symbol is untracked.
func (s *Symbol) Tracked() int { return s.tracked }

// SetTracked marks the symbol as tracked with the given fixed byte width.
// Pass 0 to clear tracking.
func (s *Symbol) SetTracked(width int) { s.tracked = width }

// Clean reports whether mutation/forced-recursion probabilities are
// suppressed for this symbol.
func (s *Symbol) Clean() bool { return s.clean }

// SetClean sets the clean suppression flag.
func (s *Symbol) SetClean(v bool) { s.clean = v }

// RecursiveClean reports whether mutation/forced-recursion probabilities
// are suppressed for this symbol and everything it recursively generates.
func (s *Symbol) RecursiveClean() bool { return s.recursiveClean }

// SetRecursiveClean sets the recursive-clean suppression flag.
func (s *Symbol) SetRecursiveClean(v bool) { s.recursiveClean = v }

// Terminal returns the symbol's tri-state terminal classification.
func (s *Symbol) Terminal() Terminal { return s.terminal }

// SetTerminal overrides the terminal classification explicitly. Define*
// already sets this correctly for the variants the original source
// classifies as terminal; this exists for hosts that need to override it.
func (s *Symbol) SetTerminal(t Terminal) { s.terminal = t }

// isTerminal answers the generator's internal "does this variant honor
// size/depth limits" question.
func (s *Symbol) isTerminal() bool {
	switch s.kind {
	case KindText, KindRegex, KindReference, KindScopedRef, KindRndInt, KindRndFlt:
		return true
	default:
		return s.terminal == TerminalYes
	}
}

func (s *Symbol) requireAbstract() error {
	if s.kind != KindAbstract {
		return fmt.Errorf("%w: symbol %q (id %d) is already %s, cannot redefine", ErrAlreadyDefined, s.name, s.id, s.kind)
	}
	return nil
}

// DefineText sets the symbol's variant to Text with the given literal
// bytes. Define* methods may only be called once per symbol.
func (s *Symbol) DefineText(data []byte) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindText
	s.text = append([]byte(nil), data...)
	s.terminal = TerminalYes
	return nil
}

// DefineConcat sets the symbol's variant to an (initially empty) Concat.
// Use AddConcat to append children.
func (s *Symbol) DefineConcat() error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindConcat
	s.concatChildren = nil
	return nil
}

// AddConcat appends a child to a Concat symbol, in generation order.
func (s *Symbol) AddConcat(child *Symbol) error {
	if s.kind != KindConcat {
		return fmt.Errorf("%w: AddConcat on non-Concat symbol %q", ErrInternal, s.name)
	}
	s.concatChildren = append(s.concatChildren, child)
	return nil
}

// DefineChoice sets the symbol's variant to an (initially empty) Choice.
// Use AddChoice to append weighted children.
func (s *Symbol) DefineChoice() error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindChoice
	s.choiceBag = wchoice.New()
	return nil
}

// AddChoice appends a weighted child to a Choice symbol. weight of nil
// means: if child is itself a Choice, adopt its own total weight; for any
// other child, adopt 1.0. An Abstract child is a hard error — it must be
// defined before it can be joined into a Choice.
func (s *Symbol) AddChoice(child *Symbol, weight *float64) error {
	if s.kind != KindChoice {
		return fmt.Errorf("%w: AddChoice on non-Choice symbol %q", ErrInternal, s.name)
	}
	if child.kind == KindAbstract {
		return fmt.Errorf("%w: %q must be defined prior to use with choice", ErrAbstractSymbol, child.name)
	}

	w := 1.0
	if weight != nil {
		w = *weight
	} else if child.kind == KindChoice {
		w = child.choiceBag.Total()
	}

	s.choiceBag.Append(child, w)
	return nil
}

// DefineStar sets the symbol's variant to Star: child repeated roughly
// recommendedCount times (subject to the generator's tapering formula).
func (s *Symbol) DefineStar(child *Symbol, recommendedCount int) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindStar
	s.starChild = child
	s.starRecommendCount = recommendedCount
	return nil
}

// DefineRegex sets the symbol's variant to an (initially empty) Regex.
// Use AddRegexPart to append parts.
func (s *Symbol) DefineRegex() error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindRegex
	s.regexParts = nil
	s.terminal = TerminalYes
	return nil
}

// AddRegexPart appends a character-class part to a Regex symbol.
func (s *Symbol) AddRegexPart(charset []byte, min, max int) error {
	if s.kind != KindRegex {
		return fmt.Errorf("%w: AddRegexPart on non-Regex symbol %q", ErrInternal, s.name)
	}
	s.regexParts = append(s.regexParts, RegexPart{Charset: append([]byte(nil), charset...), Min: min, Max: max})
	return nil
}

// DefineForeign sets the symbol's variant to Foreign: delegate generation
// to peerRoot within peer.
func (s *Symbol) DefineForeign(peer *Grammar, peerRoot string) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	if peer == nil || peerRoot == "" {
		return ErrForeignIncomplete
	}
	s.kind = KindForeign
	s.foreignGrammar = peer
	s.foreignRoot = peerRoot
	return nil
}

// DefineReference sets the symbol's variant to Reference: target must be
// tracked. Generating this symbol emits a Tracked()-wide placeholder that
// the expand pass later back-patches with one of target's instances.
func (s *Symbol) DefineReference(target *Symbol) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	if target.Tracked() <= 0 {
		return fmt.Errorf("%w: %q targets non-tracked symbol %q", ErrNotTracked, s.name, target.name)
	}
	s.kind = KindReference
	s.refTarget = target
	s.terminal = TerminalYes
	return nil
}

// DefineScopedReference sets the symbol's variant to ScopedRef: target
// must be tracked. Generating this symbol emits an already-generated,
// currently in-scope instance of target chosen uniformly.
func (s *Symbol) DefineScopedReference(target *Symbol) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	if target.Tracked() <= 0 {
		return fmt.Errorf("%w: %q targets non-tracked symbol %q", ErrNotTracked, s.name, target.name)
	}
	s.kind = KindScopedRef
	s.refTarget = target
	s.terminal = TerminalYes
	return nil
}

// DefineRndInt sets the symbol's variant to RndInt: emits the decimal of
// rnd(span)+a.
func (s *Symbol) DefineRndInt(a, span int) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindRndInt
	s.rndIntA = a
	s.rndIntSpan = span
	s.terminal = TerminalYes
	return nil
}

// DefineRndFlt sets the symbol's variant to RndFlt: emits the decimal of
// rndlInc(span)+a formatted with C's "%lf" semantics (6 digits).
func (s *Symbol) DefineRndFlt(a, span float64) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	s.kind = KindRndFlt
	s.rndFltA = a
	s.rndFltSpan = span
	s.terminal = TerminalYes
	return nil
}

// DefineFunction sets the symbol's variant to Function: generate each of
// args in order, then replace the spanning slice with fn's return value.
func (s *Symbol) DefineFunction(fn Callable, args []*Symbol) error {
	if err := s.requireAbstract(); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: Function %q has no callable", ErrEmptyProduction, s.name)
	}
	s.kind = KindFunction
	s.fn = fn
	s.fnArgs = append([]*Symbol(nil), args...)
	return nil
}

// defineIncScope / defineDecScope set up the two pseudo-symbols every
// Grammar pre-registers for "{" and "}". They are not exported: hosts
// reach scope control exclusively through those literal productions.
func (s *Symbol) defineIncScope() {
	s.kind = KindIncScope
}

func (s *Symbol) defineDecScope() {
	s.kind = KindDecScope
}

// Len reports the number of children a defined symbol carries: Concat's
// children, Choice's children, Regex's parts, Function's arguments, or 1
// for Star/Foreign/Reference/ScopedRef's single child/target. Variants
// with no children (Text, RndInt, RndFlt, IncScope, DecScope, Abstract)
// report 0.
func (s *Symbol) Len() int {
	switch s.kind {
	case KindConcat:
		return len(s.concatChildren)
	case KindChoice:
		return s.choiceBag.Len()
	case KindRegex:
		return len(s.regexParts)
	case KindFunction:
		return len(s.fnArgs)
	case KindStar, KindForeign, KindReference, KindScopedRef:
		return 1
	default:
		return 0
	}
}
