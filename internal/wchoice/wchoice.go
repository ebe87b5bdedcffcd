// Package wchoice implements an append-only weighted-choice bag: entries of
// (payload, weight) sampled by cumulative-threshold linear scan.
package wchoice

import (
	"fmt"

	"github.com/keurnel/gramfuzz/internal/rnd"
)

type entry struct {
	payload any
	weight  float64
}

// WeightedChoice is an append-only bag of weighted payloads. The zero value
// is ready to use.
type WeightedChoice struct {
	entries []entry
	total   float64
}

// New constructs an empty WeightedChoice.
func New() *WeightedChoice {
	return &WeightedChoice{}
}

// Append adds payload with the given weight. Weight accumulates into the
// running total used by Choice's sampling.
func (w *WeightedChoice) Append(payload any, weight float64) {
	w.entries = append(w.entries, entry{payload: payload, weight: weight})
	w.total += weight
}

// Choice draws a payload with probability proportional to its weight. It
// reports an error if the bag is empty or if the weighted scan runs off
// the end without finding a target (a sign the recorded total has drifted
// from the sum of individual weights).
func (w *WeightedChoice) Choice(source rnd.Randomizer) (any, error) {
	if len(w.entries) == 0 {
		return nil, fmt.Errorf("wchoice: choice on empty bag")
	}

	target := source.Rndl(w.total)
	for _, e := range w.entries {
		target -= e.weight
		if target < 0.0 {
			return e.payload, nil
		}
	}

	return nil, fmt.Errorf("wchoice: too much total weight? remainder is %0.2f from %0.2f total", target, w.total)
}

// Len returns the number of entries in the bag.
func (w *WeightedChoice) Len() int {
	return len(w.entries)
}

// Entries returns the bag's payloads in append order, for callers that need
// to walk every candidate rather than sample one (sanity checks, static
// analysis of what a Choice could produce).
func (w *WeightedChoice) Entries() []any {
	out := make([]any, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.payload
	}
	return out
}

// Total returns the current sum of all appended weights.
func (w *WeightedChoice) Total() float64 {
	return w.total
}
