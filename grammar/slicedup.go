package grammar

import "fmt"

// pushRPoint records the current write offset as the next slice-duplication
// cursor point. A full arm-then-match cycle (rstate 0→1→2→3→4, or 0→1→9 on
// the synthetic-empty-inner path) pushes exactly four points, in order:
//
//	rpoints[0] — the armed symbol S's own entry offset ("outer start")
//	rpoints[1] — the matching inner recurrence of S's entry offset ("inner start")
//	rpoints[2] — the inner recurrence's exit offset ("inner end")
//	rpoints[3] — the armed symbol's own exit offset ("outer end")
//
// No generation can push a fifth or sixth point: rstate leaves 0 at most
// once (the arm transition is gated on rstate==0) and reaches 2 at most
// once per arm (the match transition is gated on rstate==1 && rsym==s), so
// the cursor is fully spent after one cycle. duplicateSlices replicates the
// span between points 0 and 1 and the span between points 2 and 3 — the
// armed symbol's output before and after its inner recurrence.
func (gs *genState) pushRPoint() error {
	if gs.rpoint >= len(gs.rpoints) {
		return fmt.Errorf("%w: slice-duplication cursor overflow", ErrInternal)
	}
	gs.rpoints[gs.rpoint] = gs.tell()
	gs.rpoint++
	return nil
}

// duplicateSlices is step 3 of the expand pass. When a full arm-then-match
// cycle completed (rstate 4) or a synthetic empty inner was recorded
// (rstate 9), the four cursor points cut the buffer into five spans: the
// output before the armed symbol, its output before the inner recurrence
// (rpoints[0:1], the left bracket), the inner recurrence itself
// (rpoints[1:2]), its output after the inner recurrence (rpoints[2:3], the
// right bracket), and the output after it. duplicateSlices writes
// RecursionTimes additional copies of each bracket directly after the
// original one, so the inner recurrence ends up nested RecursionTimes levels
// deeper than the grammar's own recursion reached; no original byte is
// dropped. For a synthetic inner (rstate 9) the inner span and right
// bracket are empty and the left bracket is the armed symbol's whole output.
//
// final length = original length + RecursionTimes * (len(left) + len(right))
func (gs *genState) duplicateSlices() error {
	if gs.rpoint < 4 || !(gs.rstate == 4 || gs.rstate == 9) {
		return nil
	}

	p := gs.rpoints
	if p[0] > p[1] || p[1] > p[2] || p[2] > p[3] || p[3] > gs.tell() {
		return fmt.Errorf("%w: slice-duplication cursor produced an invalid bracket span", ErrInternal)
	}

	left := append([]byte(nil), gs.buf[p[0]:p[1]]...)
	right := append([]byte(nil), gs.buf[p[2]:p[3]]...)

	newBuf := make([]byte, 0, gs.tell()+RecursionTimes*(len(left)+len(right)))
	newBuf = append(newBuf, gs.buf[:p[1]]...)
	for i := 0; i < RecursionTimes; i++ {
		newBuf = append(newBuf, left...)
	}
	newBuf = append(newBuf, gs.buf[p[1]:p[3]]...)
	for i := 0; i < RecursionTimes; i++ {
		newBuf = append(newBuf, right...)
	}
	newBuf = append(newBuf, gs.buf[p[3]:]...)

	gs.buf = newBuf
	return nil
}
