package grammar

// expand runs the post-generation pass in its fixed order: resolve every
// Reference/ScopedRef placeholder against the pool of instances seen during
// generation, execute every function call that was deferred because a
// reference lived inside its arguments, then apply the chosen slice
// duplication. The result is the final, frozen output. No truncation step
// follows: the original engine's "chop" mutation was compiled out there and
// is not implemented here.
func (gs *genState) expand() ([]byte, error) {
	if err := gs.expandReferences(); err != nil {
		return nil, err
	}
	if err := gs.callDeferredFunctions(); err != nil {
		return nil, err
	}
	if err := gs.duplicateSlices(); err != nil {
		return nil, err
	}
	return gs.buf, nil
}
