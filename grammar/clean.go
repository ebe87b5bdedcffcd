package grammar

// startClean marks the generation as having entered a suppressed-mutation
// subtree, if s itself demands recursive suppression and no ancestor call
// already has. It reports whether this call is the owner — the one
// responsible for clearing the suppression again in endClean. A plain
// clean symbol (not recursive_clean) only ever suppresses its own
// mutation phase, handled by the caller routing it through this branch at
// all; it never sets gs.cleanSym, so its descendants are unaffected.
// Symbols nested under an already-active suppression see gs.cleanSym != nil
// and correctly decline to take ownership themselves.
func (gs *genState) startClean(s *Symbol) (owns bool) {
	if gs.cleanSym != nil {
		return false
	}
	if s.recursiveClean {
		gs.cleanSym = s
		return true
	}
	return false
}

// endClean clears the suppression this call owns. A no-op for every
// nested call that merely observed an ancestor's suppression.
func (gs *genState) endClean(owns bool) {
	if owns {
		gs.cleanSym = nil
	}
}
