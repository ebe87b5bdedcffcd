package grammar

import (
	"sort"

	"github.com/keurnel/gramfuzz/internal/gentrace"
	"github.com/keurnel/gramfuzz/internal/rnd"
)

// symState is the per-symbol-id bookkeeping a generation state lazily
// allocates the first time a tracked or starred symbol is touched.
type symState struct {
	starDepth int

	trackingStart     int // -1 when no tracked instance is currently open
	trackedReferences []int

	scopes            []map[string]struct{}
	descopedInstances map[string]struct{}
	nScopedInstances  int
}

func newSymState() *symState {
	return &symState{trackingStart: -1}
}

// deferredFunc records a Function call whose execution was postponed
// because a Reference was marked somewhere inside its argument span.
type deferredFunc struct {
	sym  *Symbol
	args []int // nargs+1 offsets: [arg0start, arg0end=arg1start, ..., argNend]
}

// functionFrame is the explicit (prev_in_function, prev_has_reference)
// pair pushed around a Function symbol's argument generation. This
// replaces the original's overloaded -1 sentinel return from
// enter_function with a plain value and a union-on-leave rule (see
// SPEC_FULL.md's REDESIGN FLAGS).
type functionFrame struct {
	prevInFunction   bool
	prevHasReference bool
}

// genState is the mutable context of one in-flight Generate call: the
// output buffer, depth counters, per-symbol tracking tables, scope stack,
// deferred-function queue, and the slice-duplication cursor. It is owned
// exclusively by one Generate call and discarded at its end.
type genState struct {
	grammar *Grammar
	source  rnd.Randomizer
	tracer  *gentrace.Tracer

	buf            []byte
	depth          int
	depthWatermark int

	rpoint  int
	rpoints [6]int
	rstate  int
	rsym    *Symbol

	symState map[int]*symState

	scope    int
	tracking int

	funcs []deferredFunc

	inFunction   bool
	hasReference bool

	cleanSym *Symbol

	printedLimit bool
	printedDepth bool
}

func newGenState(g *Grammar, source rnd.Randomizer, tracer *gentrace.Tracer, initialCap int) *genState {
	return &genState{
		grammar:  g,
		source:   source,
		tracer:   tracer,
		buf:      make([]byte, 0, initialCap),
		symState: make(map[int]*symState),
		scope:    0,
	}
}

func (gs *genState) stateFor(s *Symbol) *symState {
	st, ok := gs.symState[s.id]
	if !ok {
		st = newSymState()
		gs.symState[s.id] = st
	}
	return st
}

// symStateIDs returns the set of symbol ids with allocated tracking state,
// in ascending order. symState is keyed by a Go map for O(1) lookup, but
// map iteration order is randomized per process; any pass that draws random
// numbers while walking it (expandReferences) must walk ids in a fixed
// order instead, or identical seeds would stop producing identical output.
func (gs *genState) symStateIDs() []int {
	ids := make([]int, 0, len(gs.symState))
	for id := range gs.symState {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// tell returns the current write offset, the length of the buffer so far.
func (gs *genState) tell() int {
	return len(gs.buf)
}

// write appends data to the output buffer, growing it in
// bufferGrowChunk-sized increments from its initial allocation exactly as
// the original's gen_state_resize_buf policy did.
func (gs *genState) write(data []byte) {
	if need := len(gs.buf) + len(data); need > cap(gs.buf) {
		newCap := cap(gs.buf)
		for newCap < need {
			newCap += bufferGrowChunk
		}
		grown := make([]byte, len(gs.buf), newCap)
		copy(grown, gs.buf)
		gs.buf = grown
	}
	gs.buf = append(gs.buf, data...)
}

// writeByte appends a single byte.
func (gs *genState) writeByte(b byte) {
	gs.write([]byte{b})
}

// backtrack truncates the buffer back to pos, used to roll back a
// duplicate tracked instance or a rewound immediate function call.
func (gs *genState) backtrack(pos int) {
	gs.buf = gs.buf[:pos]
}

// slice returns a copy of buf[from:to].
func (gs *genState) slice(from, to int) []byte {
	out := make([]byte, to-from)
	copy(out, gs.buf[from:to])
	return out
}

// hitDepth reports whether the soft recursion-depth budget has been
// reached. When MaxDepth is above 100 it traces the first hit, once per
// generation.
func (gs *genState) hitDepth() bool {
	if gs.grammar.MaxDepth <= 0 || gs.depth < gs.grammar.MaxDepth {
		return false
	}
	if !gs.printedDepth && gs.grammar.MaxDepth > 100 {
		gs.tracer.Limits(gs.depth, "depth limit %d reached", gs.grammar.MaxDepth)
		gs.printedDepth = true
	}
	return true
}

// hitLimit reports whether the soft output-size budget has been reached.
func (gs *genState) hitLimit() bool {
	if gs.grammar.MaxSize < 0 || gs.tell() < gs.grammar.MaxSize {
		return false
	}
	if !gs.printedLimit && gs.grammar.MaxSize > 100 {
		gs.tracer.Limits(gs.depth, "size limit %d reached", gs.grammar.MaxSize)
		gs.printedLimit = true
	}
	return true
}

func (gs *genState) incStarDepth(s *Symbol) {
	gs.stateFor(s).starDepth++
}

func (gs *genState) starDepthOf(s *Symbol) int {
	return gs.stateFor(s).starDepth
}

func (gs *genState) decStarDepth(s *Symbol) error {
	st := gs.stateFor(s)
	st.starDepth--
	if st.starDepth < 0 {
		return ErrInternal
	}
	return nil
}
