package grammar

import "fmt"

// SanityCheck walks every registered symbol and rejects a grammar that
// cannot possibly generate: an Abstract symbol with no definition, a
// Choice/Concat/Regex with no children, a Foreign missing its peer, a
// Function missing its callable, or a Reference/ScopedRef to a
// non-tracked target. It also enforces the REDESIGN-flagged rule that a
// Function's argument subtree may not contain a Reference, whose
// placeholder the expand pass could not safely repair if that Function is
// later deferred and its argument range rewritten (see DESIGN.md). A
// ScopedRef inside a Function argument is allowed.
func (g *Grammar) SanityCheck() error {
	for _, s := range g.symbols {
		if err := sanityCheckSymbol(s); err != nil {
			return err
		}
	}
	return nil
}

func sanityCheckSymbol(s *Symbol) error {
	switch s.kind {
	case KindAbstract:
		return fmt.Errorf("%w: %q (id %d, line %d)", ErrAbstractSymbol, s.name, s.id, s.lineNo)

	case KindChoice:
		if s.choiceBag.Len() == 0 {
			return fmt.Errorf("%w: empty Choice %q (id %d)", ErrEmptyProduction, s.name, s.id)
		}

	case KindConcat:
		if len(s.concatChildren) == 0 {
			return fmt.Errorf("%w: empty Concat %q (id %d)", ErrEmptyProduction, s.name, s.id)
		}

	case KindRegex:
		if len(s.regexParts) == 0 {
			return fmt.Errorf("%w: empty Regex %q (id %d)", ErrEmptyProduction, s.name, s.id)
		}

	case KindForeign:
		if s.foreignGrammar == nil || s.foreignRoot == "" {
			return fmt.Errorf("%w: %q (id %d)", ErrForeignIncomplete, s.name, s.id)
		}

	case KindFunction:
		if s.fn == nil {
			return fmt.Errorf("%w: Function %q (id %d) has no callable", ErrEmptyProduction, s.name, s.id)
		}
		if err := checkFunctionArgsRepairable(s); err != nil {
			return err
		}

	case KindReference, KindScopedRef:
		if s.refTarget == nil || s.refTarget.Tracked() <= 0 {
			return fmt.Errorf("%w: %q (id %d)", ErrNotTracked, s.name, s.id)
		}

	case KindText, KindRndInt, KindRndFlt, KindStar, KindIncScope, KindDecScope:
		// No further structural requirement beyond what Define* enforced.

	default:
		return fmt.Errorf("%w: unhandled symbol kind %s for %q (id %d)", ErrInternal, s.kind, s.name, s.id)
	}

	return nil
}

// checkFunctionArgsRepairable rejects a Function whose argument subtree
// contains a Reference: a function's own argument bytes are always
// subject to a possible later rewrite by the expand pass's deferred call
// step, and a Reference placeholder that lived inside that exact span
// could never be safely back-patched once its offsets were already folded
// into a replaced range (see the REDESIGN note in DESIGN.md). A ScopedRef
// is not a placeholder at all — it writes its chosen instance's bytes
// immediately during generation (scope.go's generateScopedInstance) and
// never registers anything for expand to repair, so it does not force a
// Function to defer and is not rejected here.
// Foreign recursion is not inspected here — a peer grammar's own sanity
// check covers its own tree.
func checkFunctionArgsRepairable(fn *Symbol) error {
	seen := make(map[int]bool)
	for _, arg := range fn.fnArgs {
		if containsReference(arg, seen) {
			return fmt.Errorf("%w: Function %q (id %d) has an argument containing a Reference", ErrUnrepairedReference, fn.name, fn.id)
		}
	}
	return nil
}

func containsReference(s *Symbol, seen map[int]bool) bool {
	if s == nil || seen[s.id] {
		return false
	}
	seen[s.id] = true

	switch s.kind {
	case KindReference:
		return true
	case KindConcat:
		for _, c := range s.concatChildren {
			if containsReference(c, seen) {
				return true
			}
		}
	case KindChoice:
		for _, c := range s.choiceBag.Entries() {
			if containsReference(c.(*Symbol), seen) {
				return true
			}
		}
	case KindStar:
		return containsReference(s.starChild, seen)
	case KindFunction:
		for _, a := range s.fnArgs {
			if containsReference(a, seen) {
				return true
			}
		}
	}
	return false
}
