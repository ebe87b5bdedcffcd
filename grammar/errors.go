package grammar

import "errors"

// Sentinel errors identify the taxonomy of failures a generation or a
// sanity check can produce. Wrap these with fmt.Errorf's %w so callers can
// still errors.Is/errors.As against the taxonomy after context is attached.
var (
	// ErrAbstractSymbol is returned when an Abstract (forward-declared but
	// never defined) symbol is generated or survives a sanity check.
	ErrAbstractSymbol = errors.New("grammar: abstract symbol has no definition")

	// ErrAlreadyDefined is returned by a Define* call on a symbol whose
	// variant has already been set.
	ErrAlreadyDefined = errors.New("grammar: symbol already defined")

	// ErrEmptyProduction is returned for a Choice, Concat, or Regex with no
	// children/parts.
	ErrEmptyProduction = errors.New("grammar: empty production")

	// ErrUndefinedSymbol is returned when generate is asked for a root name
	// that was never registered.
	ErrUndefinedSymbol = errors.New("grammar: start symbol not defined")

	// ErrNotTracked is returned when a Reference or ScopedRef targets a
	// symbol whose Tracked width is zero.
	ErrNotTracked = errors.New("grammar: reference to non-tracked symbol")

	// ErrForeignIncomplete is returned when a Foreign symbol is missing its
	// peer grammar or peer root name.
	ErrForeignIncomplete = errors.New("grammar: foreign symbol missing grammar or root")

	// ErrDepthExceeded is the hard recursion-depth failure (>10000 frames).
	ErrDepthExceeded = errors.New("grammar: recursion depth exceeded")

	// ErrTrackingExhausted is returned when a tracked symbol cannot produce
	// a unique instance within the retry budget.
	ErrTrackingExhausted = errors.New("grammar: could not generate a unique tracked instance")

	// ErrUnscopedReference is returned when a ScopedRef is generated with
	// zero live instances across all open scopes.
	ErrUnscopedReference = errors.New("grammar: no instances in scope to generate")

	// ErrTrackedSizeMismatch is returned when a tracked instance's emitted
	// byte length does not equal the symbol's declared Tracked width.
	ErrTrackedSizeMismatch = errors.New("grammar: tracked instance is the wrong size")

	// ErrNestedTracking is returned when a tracked symbol's generation
	// recurses into the same symbol while its instance span is still open.
	ErrNestedTracking = errors.New("grammar: cannot nest tracked symbols")

	// ErrUnrepairedReference is the REDESIGN-flagged rejection of a
	// Reference whose placeholder would fall inside a deferred
	// function argument span the expand pass cannot safely patch.
	ErrUnrepairedReference = errors.New("grammar: reference inside a deferred function argument cannot be repaired")

	// ErrInternal covers invariant violations: rpoints overflow, negative
	// star depth, and unrecognized symbol kinds.
	ErrInternal = errors.New("grammar: internal invariant violated")
)
