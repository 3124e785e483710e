// Package classifier ranks dream blocks by their distance to a canonical
// block and decides whether the closest match is significant enough to call
// (§4.5).
package classifier

import (
	"fmt"
	"sort"
)

// SignificanceNumerator and SignificanceDenom define the ratio test: the
// second-closest node's distance must be at least numerator/denom times the
// closest node's distance for the call to be "significant". Kept as a
// separate numerator/denominator pair, rather than a pre-divided float, so
// callers can reason about the integer-division semantics without
// re-deriving the test.
const (
	SignificanceNumerator = 2
	SignificanceDenom     = 1
)

// VerdictKind identifies which of the three classifier outcomes fired.
type VerdictKind int

const (
	// MatchingLabels fires when the two closest nodes share a label,
	// regardless of the gap between their distances.
	MatchingLabels VerdictKind = iota
	// SignificantGap fires when the labels differ but the second-closest
	// distance clears the significance ratio.
	SignificantGap
	// TooCloseToCall fires otherwise.
	TooCloseToCall
)

// Candidate is one node's distance to the canonical block, with its label
// for tie handling.
type Candidate struct {
	Name     string
	Label    string
	Distance int
}

// Verdict is the outcome of classifying a slot's candidates.
type Verdict struct {
	Kind  VerdictKind
	First Candidate
	// Second is the runner-up. If fewer than two candidates were
	// supplied, First is duplicated into Second, so the ratio test
	// behaves as "equal to itself".
	Second Candidate
}

// Classify ranks candidates ascending by distance, ties broken
// lexicographically by name, and applies the significance rule.
//
// ClassifierInsufficientData is the caller's responsibility: Classify
// itself returns a deterministic (if degenerate) Verdict even for zero or
// one candidates, but callers should skip classification for slots lacking
// any candidates per §7.
func Classify(candidates []Candidate) Verdict {
	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Distance != sorted[j].Distance {
			return sorted[i].Distance < sorted[j].Distance
		}
		return sorted[i].Name < sorted[j].Name
	})

	var first Candidate
	if len(sorted) > 0 {
		first = sorted[0]
	}
	second := first
	if len(sorted) > 1 {
		second = sorted[1]
	}

	switch {
	case first.Label == second.Label:
		return Verdict{Kind: MatchingLabels, First: first, Second: second}
	case second.Distance >= first.Distance*SignificanceNumerator/SignificanceDenom:
		return Verdict{Kind: SignificantGap, First: first, Second: second}
	default:
		return Verdict{Kind: TooCloseToCall, First: first, Second: second}
	}
}

// String renders a verdict the way it is logged: "likely <label>@<dist>"
// for a confident call, or both candidates when too close to call.
func (v Verdict) String() string {
	switch v.Kind {
	case MatchingLabels:
		return fmt.Sprintf("likely %s@%d", v.First.Label, v.First.Distance)
	case SignificantGap:
		return fmt.Sprintf("likely %s (significantly closer @%d than %s@%d)",
			v.First.Label, v.First.Distance, v.Second.Label, v.Second.Distance)
	default:
		return fmt.Sprintf("too close to call: %s@%d vs %s@%d",
			v.First.Name, v.First.Distance, v.Second.Name, v.Second.Distance)
	}
}
