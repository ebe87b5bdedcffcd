package grammar

import (
	"context"
	"fmt"
)

// enterFunction opens a new function-call frame: it remembers the
// enclosing (in_function, has_reference) pair and resets has_reference so
// this call's own argument generation is observed in isolation. This is
// the REDESIGN-flagged replacement for the original's overloaded -1
// sentinel return from gen_state_enter_function — see DESIGN.md.
func (gs *genState) enterFunction() functionFrame {
	frame := functionFrame{prevInFunction: gs.inFunction, prevHasReference: gs.hasReference}
	gs.inFunction = true
	gs.hasReference = false
	return frame
}

// leaveFunction restores the enclosing frame and unions this call's
// observed has_reference into the parent's, so a Reference nested two
// Function calls deep still forces the outer call to defer. It reports
// whether a Reference was marked strictly within this call's own
// argument span.
func (gs *genState) leaveFunction(frame functionFrame) (hadReference bool) {
	hadReference = gs.hasReference
	gs.inFunction = frame.prevInFunction
	gs.hasReference = frame.prevHasReference || hadReference
	return hadReference
}

// generateFunction implements the Function variant: generate each
// argument symbol in order, then either call the callable immediately (no
// reference was marked inside the arguments) or defer the call until the
// expand pass, inserted so that nested function calls execute before their
// enclosing call.
func (gs *genState) generateFunction(ctx context.Context, s *Symbol) error {
	deferDepth := len(gs.funcs)
	frame := gs.enterFunction()

	offsets := make([]int, 0, len(s.fnArgs)+1)
	offsets = append(offsets, gs.tell())
	for _, arg := range s.fnArgs {
		if err := generateSymbol(ctx, gs, arg); err != nil {
			return err
		}
		offsets = append(offsets, gs.tell())
	}

	hadReference := gs.leaveFunction(frame)

	if hadReference {
		rec := deferredFunc{sym: s, args: offsets}
		gs.funcs = append(gs.funcs, deferredFunc{})
		copy(gs.funcs[deferDepth+1:], gs.funcs[deferDepth:])
		gs.funcs[deferDepth] = rec
		return nil
	}

	argStart := offsets[0]
	args := make([][]byte, len(s.fnArgs))
	for i := 0; i < len(s.fnArgs); i++ {
		args[i] = gs.slice(offsets[i], offsets[i+1])
	}

	result, err := s.fn(args)
	if err != nil {
		return fmt.Errorf("grammar: function %q: %w", s.name, err)
	}

	gs.backtrack(argStart)
	gs.write(result)
	return nil
}

// callDeferredFunctions is step 2 of the expand pass: execute every
// deferred call in last-array-position-first order (inner calls occupy
// later array positions than the outer calls that contain them, by
// construction of generateFunction's insert-at-defer_depth rule), each
// time replacing its argument range with the callable's return value and
// shifting every later offset — both the slice-duplication cursor and the
// still-unprocessed deferred calls' own argument offsets — by the
// resulting length delta.
//
// A reference placeholder whose offset falls inside a replaced range is
// not adjusted, matching the original; SanityCheck rejects grammars that
// could produce that shape (see DESIGN.md).
func (gs *genState) callDeferredFunctions() error {
	for i := len(gs.funcs) - 1; i >= 0; i-- {
		df := gs.funcs[i]
		nargs := len(df.args) - 1
		argStart := df.args[0]
		argEnd := df.args[nargs]

		args := make([][]byte, nargs)
		for j := 0; j < nargs; j++ {
			args[j] = gs.slice(df.args[j], df.args[j+1])
		}

		result, err := df.sym.fn(args)
		if err != nil {
			return fmt.Errorf("grammar: deferred function %q: %w", df.sym.name, err)
		}

		diff := len(result) - (argEnd - argStart)

		newBuf := make([]byte, len(gs.buf)+diff)
		copy(newBuf[:argStart], gs.buf[:argStart])
		copy(newBuf[argStart:argStart+len(result)], result)
		copy(newBuf[argStart+len(result):], gs.buf[argEnd:])
		gs.buf = newBuf

		for k := 0; k < gs.rpoint; k++ {
			if gs.rpoints[k] >= argEnd {
				gs.rpoints[k] += diff
			}
		}

		for j := 0; j < i; j++ {
			for k := range gs.funcs[j].args {
				if gs.funcs[j].args[k] >= argEnd {
					gs.funcs[j].args[k] += diff
				}
			}
		}
	}

	gs.funcs = nil
	return nil
}
