package grammar

import (
	"fmt"
	"sort"
)

// incScope pushes a new, empty instance set onto every tracked symbol's
// scope stack and advances the current scope depth.
func (gs *genState) incScope() {
	for _, st := range gs.symState {
		st.scopes = append(st.scopes, make(map[string]struct{}))
	}
	gs.scope++
}

// decScope retires the top scope: every tracked symbol's top instance set
// is unioned into descopedInstances (so Reference back-patching can still
// draw from it), then dropped — unless this is scope 0, the outermost
// scope, which is only cleared, never truly popped.
func (gs *genState) decScope() {
	for _, st := range gs.symState {
		if len(st.scopes) == 0 {
			continue
		}
		top := st.scopes[len(st.scopes)-1]
		if st.descopedInstances == nil {
			st.descopedInstances = make(map[string]struct{})
		}
		for inst := range top {
			st.descopedInstances[inst] = struct{}{}
		}
		st.nScopedInstances -= len(top)

		if gs.scope > 0 {
			st.scopes = st.scopes[:len(st.scopes)-1]
		} else {
			st.scopes[len(st.scopes)-1] = make(map[string]struct{})
		}
	}
	if gs.scope > 0 {
		gs.scope--
	}
}

// sortedKeys returns a set's keys in a fixed, seed-independent order. Go's
// map iteration order is randomized per-process regardless of the random
// source's seed; sampling straight off a map range would make otherwise
// seeded generation non-reproducible across runs, so every instance pool is
// linearized before an index drawn from the seeded source picks into it.
func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (gs *genState) instanceUnique(s *Symbol, data string) bool {
	st := gs.stateFor(s)
	if st.descopedInstances != nil {
		if _, ok := st.descopedInstances[data]; ok {
			return false
		}
	}
	for depth := 0; depth <= gs.scope && depth < len(st.scopes); depth++ {
		if _, ok := st.scopes[depth][data]; ok {
			return false
		}
	}
	return true
}

// startTrackingInstance opens a tracked-instance span at the current
// write offset. Re-entering a tracked symbol while its own instance span is
// still open is a hard error; a different tracked symbol may open its span
// inside it.
func (gs *genState) startTrackingInstance(s *Symbol) error {
	st := gs.stateFor(s)
	if st.trackingStart >= 0 {
		return fmt.Errorf("%w: %q", ErrNestedTracking, s.name)
	}
	st.trackingStart = gs.tell()
	gs.tracking++
	return nil
}

// endTrackingInstance closes a tracked-instance span. It reports
// duplicate=true (and rolls the buffer back to the span's start) when the
// just-generated bytes collide with a previously recorded instance of s,
// asking the caller to retry generation for this symbol.
func (gs *genState) endTrackingInstance(s *Symbol) (duplicate bool, err error) {
	st := gs.stateFor(s)
	start := st.trackingStart
	end := gs.tell()

	if end-start != s.tracked {
		return false, fmt.Errorf("%w: expecting %d, got %d for %q", ErrTrackedSizeMismatch, s.tracked, end-start, s.name)
	}

	data := string(gs.buf[start:end])
	if !gs.instanceUnique(s, data) {
		gs.backtrack(start)
		return true, nil
	}

	for len(st.scopes) <= gs.scope {
		st.scopes = append(st.scopes, make(map[string]struct{}))
	}
	st.scopes[gs.scope][data] = struct{}{}
	st.nScopedInstances++
	st.trackingStart = -1
	gs.tracking--
	return false, nil
}

// generateScopedInstance uniformly samples an instance of s across all
// currently live scopes, weighted by each scope's instance count, and
// writes it to the buffer.
func (gs *genState) generateScopedInstance(s *Symbol) error {
	st := gs.stateFor(s)
	if st.nScopedInstances <= 0 {
		return fmt.Errorf("%w: symbol %q", ErrUnscopedReference, s.name)
	}

	target := gs.source.Rnd(st.nScopedInstances)
	for depth := 0; depth <= gs.scope && depth < len(st.scopes); depth++ {
		n := len(st.scopes[depth])
		if target < n {
			gs.write([]byte(sortedKeys(st.scopes[depth])[target]))
			return nil
		}
		target -= n
	}

	return fmt.Errorf("%w: out of scopes, instances=%d scope=%d for %q", ErrUnscopedReference, st.nScopedInstances, gs.scope, s.name)
}

// markTrackingReference records a Reference placeholder's offset against
// its target symbol, to be back-patched during expand. If this happens
// while inside a Function's argument span, it flags hasReference so the
// enclosing call is deferred rather than executed immediately.
func (gs *genState) markTrackingReference(target *Symbol) {
	st := gs.stateFor(target)
	st.trackedReferences = append(st.trackedReferences, gs.tell())
	if gs.inFunction {
		gs.hasReference = true
	}
}

// expandReferences is the first step of the expand pass: pop every open
// scope (including a final pop-at-zero, retiring the outermost set too),
// then back-patch every tracked symbol's recorded reference offsets with a
// uniformly chosen descoped instance.
func (gs *genState) expandReferences() error {
	for gs.scope > 0 {
		gs.decScope()
	}
	gs.decScope() // final pop-at-zero

	for _, id := range gs.symStateIDs() {
		st := gs.symState[id]
		if len(st.trackedReferences) == 0 || len(st.descopedInstances) == 0 {
			continue
		}

		instances := sortedKeys(st.descopedInstances)

		for _, offset := range st.trackedReferences {
			pick := instances[gs.source.Rnd(len(instances))]
			copy(gs.buf[offset:offset+len(pick)], pick)
			if gs.tracer != nil {
				gs.tracer.Refs(0, "back-patched offset %d with %d-byte instance", offset, len(pick))
			}
		}
	}

	return nil
}
