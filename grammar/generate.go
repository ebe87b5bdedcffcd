package grammar

import (
	"context"
	"fmt"
)

// Mutation probabilities, threaded through _generate's pre- and
// post-mutation phases and the slice-duplication cursor. These match the
// original engine's tuning exactly; a test build can zero them all out via
// a Grammar configured with WithRand(aSourceThatNeverFires) — see
// testutil_test.go's scriptedSource helper — to get the deterministic,
// mutation-free generation the testable properties require.
const (
	pSkipEntirely        = 0.001
	pSelfBefore          = 0.001
	pRandomSymbolBefore  = 0.001
	pRandomByte          = 0.001
	pArmDuplication      = 0.03
	pMatchDuplication    = 0.3
	pSyntheticEmptyInner = 0.01
	pRandomSymbolAfter   = 0.001
	pConcatSkipSuffix    = 0.001
	pStarSelfBefore      = 0.10
	pStarSelfAfter       = 0.09
)

// generateSymbol is the single entry point for generating a symbol: it
// performs the orchestration common to every variant (pre-mutation
// phase, slice-duplication cursor marking, the depth-guarded core
// descent, tracked-instance/clean closing, and the post-mutation phase)
// and dispatches to variant-specific logic in between.
func generateSymbol(ctx context.Context, gs *genState, s *Symbol) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if gs.tracer != nil {
		gs.tracer.Gen(gs.depth, "%s/%d (L%d)", s.name, s.id, s.lineNo)
	}

	localRstate := 0
	ownsClean := false
	inClean := false

	switch {
	case s.tracked > 0:
		if err := gs.startTrackingInstance(s); err != nil {
			return err
		}
	case s.clean || s.recursiveClean || gs.cleanSym != nil:
		ownsClean = gs.startClean(s)
		inClean = true
	case gs.tracking == 0 && !gs.hitDepth():
		if err := runPreMutations(ctx, gs, s); err != nil {
			if err == errSkipEntirely {
				return nil
			}
			return err
		}

		switch {
		case gs.rstate == 0 && gs.source.Chance(pArmDuplication):
			localRstate = 1
			gs.rstate = 1
			gs.rsym = s
			if err := gs.pushRPoint(); err != nil {
				return err
			}
		case gs.rstate == 1 && gs.rsym == s && gs.source.Chance(pMatchDuplication):
			gs.rstate = 2
			if err := gs.pushRPoint(); err != nil {
				return err
			}
			localRstate = 2
		}
	}

	referenceTries := 100
	for {
		gs.depth++
		if gs.depth > gs.depthWatermark {
			gs.depthWatermark = gs.depth
		}
		if gs.depth > HardDepthLimit {
			return fmt.Errorf("%w: hit hard recursion limit", ErrDepthExceeded)
		}

		if s.isTerminal() || !(gs.hitDepth() || gs.hitLimit()) {
			if err := dispatch(ctx, gs, s); err != nil {
				return err
			}
		}
		gs.depth--

		if gs.tracking > 0 || inClean {
			if s.tracked > 0 {
				duplicate, err := gs.endTrackingInstance(s)
				if err != nil {
					return err
				}
				if duplicate {
					referenceTries--
					if referenceTries == 0 {
						return fmt.Errorf("%w: %q (L%d)", ErrTrackingExhausted, s.name, s.lineNo)
					}
					continue
				}
			}
			gs.endClean(ownsClean)
			return nil
		}
		break
	}

	if gs.hitDepth() {
		return nil
	}

	switch localRstate {
	case 1:
		if gs.rstate == 1 {
			if gs.source.Chance(pSyntheticEmptyInner) {
				if err := gs.pushRPoint(); err != nil {
					return err
				}
				if err := gs.pushRPoint(); err != nil {
					return err
				}
				gs.rstate = 9
			}
		} else {
			if gs.rstate != 3 {
				return fmt.Errorf("%w: unexpected rstate %d closing duplication bracket", ErrInternal, gs.rstate)
			}
			gs.rstate = 4
		}
		if gs.rstate == 4 || gs.rstate == 9 {
			if err := gs.pushRPoint(); err != nil {
				return err
			}
		}
	case 2:
		gs.rstate = 3
		if err := gs.pushRPoint(); err != nil {
			return err
		}
	}

	if !gs.hitLimit() && !gs.hitDepth() && gs.source.Chance(pRandomSymbolAfter) {
		if sym := gs.grammar.randomNonTrackedNonCleanSymbol(gs.source); sym != nil {
			if err := generateSymbol(ctx, gs, sym); err != nil {
				return err
			}
		}
	}

	return nil
}

func runPreMutations(ctx context.Context, gs *genState, s *Symbol) error {
	if gs.source.Chance(pSkipEntirely) {
		return errSkipEntirely
	}

	if !gs.hitLimit() && !gs.hitDepth() {
		if gs.source.Chance(pSelfBefore) {
			if err := generateSymbol(ctx, gs, s); err != nil {
				return err
			}
		}
		if gs.source.Chance(pRandomSymbolBefore) {
			if sym := gs.grammar.randomNonTrackedNonCleanSymbol(gs.source); sym != nil {
				if err := generateSymbol(ctx, gs, sym); err != nil {
					return err
				}
			}
		}
		if gs.source.Chance(pRandomByte) {
			gs.writeByte(byte(gs.source.Rnd(128)))
		}
	}

	return nil
}

// errSkipEntirely is a private sentinel used only to unwind
// runPreMutations' "skip this symbol's output entirely" branch without
// treating it as a real failure.
var errSkipEntirely = fmt.Errorf("grammar: internal skip-entirely sentinel")

// dispatch runs the variant-specific generation handler.
func dispatch(ctx context.Context, gs *genState, s *Symbol) error {
	switch s.kind {
	case KindText:
		gs.write(s.text)
		return nil
	case KindConcat:
		return generateConcat(ctx, gs, s)
	case KindChoice:
		return generateChoice(ctx, gs, s)
	case KindStar:
		return generateStar(ctx, gs, s)
	case KindRegex:
		return generateRegex(gs, s)
	case KindForeign:
		return generateForeign(ctx, gs, s)
	case KindReference:
		gs.markTrackingReference(s.refTarget)
		placeholder := make([]byte, s.refTarget.tracked)
		for i := range placeholder {
			placeholder[i] = ' '
		}
		gs.write(placeholder)
		return nil
	case KindScopedRef:
		return gs.generateScopedInstance(s.refTarget)
	case KindRndInt:
		gs.write([]byte(fmt.Sprintf("%d", gs.source.Rnd(s.rndIntSpan)+s.rndIntA)))
		return nil
	case KindRndFlt:
		gs.write([]byte(fmt.Sprintf("%.6f", gs.source.RndlInc(s.rndFltSpan)+s.rndFltA)))
		return nil
	case KindIncScope:
		gs.incScope()
		return nil
	case KindDecScope:
		gs.decScope()
		return nil
	case KindFunction:
		return gs.generateFunction(ctx, s)
	case KindAbstract:
		return fmt.Errorf("%w: %q (id %d)", ErrAbstractSymbol, s.name, s.id)
	default:
		return fmt.Errorf("%w: unhandled symbol kind %s", ErrInternal, s.kind)
	}
}

func generateConcat(ctx context.Context, gs *genState, s *Symbol) error {
	n := len(s.concatChildren)
	if n == 0 {
		return fmt.Errorf("%w: empty Concat %q", ErrEmptyProduction, s.name)
	}
	for i := 0; i < n; i++ {
		if gs.tracking == 0 && !s.clean && gs.cleanSym == nil && gs.source.Chance(pConcatSkipSuffix) {
			i += gs.source.Rnd(n)
			continue
		}
		if err := generateSymbol(ctx, gs, s.concatChildren[i]); err != nil {
			return err
		}
	}
	return nil
}

func generateChoice(ctx context.Context, gs *genState, s *Symbol) error {
	if s.choiceBag.Len() == 0 {
		return fmt.Errorf("%w: empty Choice %q", ErrEmptyProduction, s.name)
	}
	picked, err := s.choiceBag.Choice(gs.source)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInternal, s.name, err)
	}
	return generateSymbol(ctx, gs, picked.(*Symbol))
}

func generateStar(ctx context.Context, gs *genState, s *Symbol) (err error) {
	if !s.clean && gs.cleanSym == nil && (gs.hitLimit() || gs.hitDepth()) {
		return nil
	}

	gs.incStarDepth(s)
	defer func() {
		if derr := gs.decStarDepth(s); derr != nil && err == nil {
			err = derr
		}
	}()

	clean := s.clean || gs.cleanSym != nil

	switch {
	case !clean && gs.source.Chance(pStarSelfBefore):
		if err := generateSymbol(ctx, gs, s); err != nil {
			return err
		}
		if err := generateSymbol(ctx, gs, s.starChild); err != nil {
			return err
		}
	case !clean && gs.source.Chance(pStarSelfAfter):
		if err := generateSymbol(ctx, gs, s.starChild); err != nil {
			return err
		}
		if err := generateSymbol(ctx, gs, s); err != nil {
			return err
		}
	default:
		count := gs.source.Rnd(s.starRecommendCount)
		for i := 1; i < gs.starDepthOf(s); i++ {
			count = gs.source.Rnd(count)
		}
		for i := 0; i < count; i++ {
			if !clean && (gs.hitLimit() || gs.hitDepth()) {
				break
			}
			if err := generateSymbol(ctx, gs, s.starChild); err != nil {
				return err
			}
		}
	}

	return nil
}

func generateRegex(gs *genState, s *Symbol) error {
	if len(s.regexParts) == 0 {
		return fmt.Errorf("%w: empty Regex %q", ErrEmptyProduction, s.name)
	}
	for _, part := range s.regexParts {
		count := part.Min
		if !gs.hitLimit() && !gs.hitDepth() {
			span := part.Max - part.Min + 1
			if span > 0 {
				count = gs.source.Rnd(gs.source.Rnd(span)) + part.Min
			}
		}
		for i := 0; i < count; i++ {
			gs.writeByte(part.Charset[gs.source.Rnd(len(part.Charset))])
		}
	}
	return nil
}

func generateForeign(ctx context.Context, gs *genState, s *Symbol) error {
	if s.foreignGrammar == nil || s.foreignRoot == "" {
		return ErrForeignIncomplete
	}
	out, err := s.foreignGrammar.Generate(ctx, s.foreignRoot)
	if err != nil {
		return fmt.Errorf("grammar: foreign %q: %w", s.name, err)
	}
	gs.write(out)
	return nil
}
