package distance

import (
	"sort"

	"github.com/blockprint-collective/blockdreamer/beacontypes"
	"github.com/blockprint-collective/blockdreamer/distance/munkres"
)

// DeltaKind identifies one of the three delta operations that transform an
// attestation list L into an attestation list R.
type DeltaKind int

const (
	// Modify replaces L[LeftIndex] with R[RightIndex]; both carry equal
	// AttestationData.
	Modify DeltaKind = iota
	// InsertLeft removes an attestation present only in L.
	InsertLeft
	// InsertRight adds an attestation present only in R.
	InsertRight
)

// Delta is one edit in the minimum-cost transformation of L into R.
type Delta struct {
	Kind DeltaKind

	LeftIndex  int // valid for Modify, InsertLeft
	RightIndex int // valid for Modify, InsertRight

	PosDistance int // Modify only: |LeftIndex - RightIndex|
	BitDistance int // Modify only: popcount(L[i].bits ^ R[j].bits)

	NumSetBits int // InsertLeft/InsertRight only
}

// Cost is the contribution of this delta to the total list distance.
func (d Delta) Cost() int {
	if d.Kind == Modify {
		return d.PosDistance + d.BitDistance
	}
	return d.NumSetBits + IndelCost
}

// handedness orders Modify/InsertLeft ahead of InsertRight at equal indices,
// giving the delta sequence a deterministic total order.
func (d Delta) handedness() int {
	if d.Kind == InsertRight {
		return 1
	}
	return 0
}

// Invert swaps the left/right roles of a delta, turning a L->R delta into
// the corresponding R->L delta. Re-sorting the inverted slice recovers the
// delta that ListDelta(right, left) would have produced directly.
func (d Delta) Invert() Delta {
	switch d.Kind {
	case Modify:
		return Delta{
			Kind:        Modify,
			LeftIndex:   d.RightIndex,
			RightIndex:  d.LeftIndex,
			PosDistance: d.PosDistance,
			BitDistance: d.BitDistance,
		}
	case InsertLeft:
		return Delta{Kind: InsertRight, RightIndex: d.LeftIndex, NumSetBits: d.NumSetBits}
	default: // InsertRight
		return Delta{Kind: InsertLeft, LeftIndex: d.RightIndex, NumSetBits: d.NumSetBits}
	}
}

// indexedAttestation pairs an attestation with its original position in its
// source list, since buckets are built by re-partitioning the lists.
type indexedAttestation struct {
	origIndex int
	att       beacontypes.Attestation
}

// ListDelta computes the minimum-cost edit sequence transforming attestation
// list left into attestation list right, per §4.4.2: bucket by
// AttestationData equality, solve each bucket's assignment with Kuhn-Munkres,
// concatenate, and sort by (LeftIndex, RightIndex, handedness).
func ListDelta(left, right []beacontypes.Attestation) []Delta {
	leftBuckets := make(map[string][]indexedAttestation)
	leftOrder := make([]string, 0)
	for i, a := range left {
		key := attestationDataKey(a.Data)
		if _, ok := leftBuckets[key]; !ok {
			leftOrder = append(leftOrder, key)
		}
		leftBuckets[key] = append(leftBuckets[key], indexedAttestation{i, a})
	}

	rightBuckets := make(map[string][]indexedAttestation)
	for i, a := range right {
		key := attestationDataKey(a.Data)
		if _, ok := leftBuckets[key]; !ok {
			if _, seen := rightBuckets[key]; !seen {
				leftOrder = append(leftOrder, key)
			}
		}
		rightBuckets[key] = append(rightBuckets[key], indexedAttestation{i, a})
	}

	var deltas []Delta
	for _, key := range leftOrder {
		deltas = append(deltas, bucketDelta(leftBuckets[key], rightBuckets[key])...)
	}

	SortDeltas(deltas)
	return deltas
}

// SortDeltas orders a delta sequence by (LeftIndex, RightIndex,
// handedness), the canonical order ListDelta returns its result in.
// Exported so callers that reconstruct a delta sequence (e.g. by
// inverting one direction's deltas) can recover the same order.
func SortDeltas(deltas []Delta) {
	sort.SliceStable(deltas, func(i, j int) bool {
		a, b := deltas[i], deltas[j]
		if a.LeftIndex != b.LeftIndex {
			return a.LeftIndex < b.LeftIndex
		}
		if a.RightIndex != b.RightIndex {
			return a.RightIndex < b.RightIndex
		}
		return a.handedness() < b.handedness()
	})
}

// bucketDelta solves the per-bucket optimal assignment between A (from left)
// and B (from right), both already restricted to attestations sharing one
// AttestationData.
func bucketDelta(a, b []indexedAttestation) []Delta {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return nil
	}

	cost := make([][]int, n)
	for i := range cost {
		cost[i] = make([]int, n)
		for j := range cost[i] {
			switch {
			case i < len(a) && j < len(b):
				pos := a[i].origIndex - b[j].origIndex
				if pos < 0 {
					pos = -pos
				}
				bits, _ := AttestationDistance(a[i].att, b[j].att)
				cost[i][j] = pos + bits
			case i < len(a):
				cost[i][j] = a[i].att.NumSetBits() + IndelCost
			default: // j < len(b), i out of range
				cost[i][j] = b[j].att.NumSetBits() + IndelCost
			}
		}
	}

	assignment := munkres.Solve(cost)

	deltas := make([]Delta, 0, n)
	for i, j := range assignment {
		leftReal := i < len(a)
		rightReal := j < len(b)
		switch {
		case leftReal && rightReal:
			pos := a[i].origIndex - b[j].origIndex
			if pos < 0 {
				pos = -pos
			}
			bits, _ := AttestationDistance(a[i].att, b[j].att)
			deltas = append(deltas, Delta{
				Kind:        Modify,
				LeftIndex:   a[i].origIndex,
				RightIndex:  b[j].origIndex,
				PosDistance: pos,
				BitDistance: bits,
			})
		case leftReal:
			deltas = append(deltas, Delta{
				Kind:       InsertLeft,
				LeftIndex:  a[i].origIndex,
				NumSetBits: a[i].att.NumSetBits(),
			})
		case rightReal:
			deltas = append(deltas, Delta{
				Kind:       InsertRight,
				RightIndex: b[j].origIndex,
				NumSetBits: b[j].att.NumSetBits(),
			})
		}
	}
	return deltas
}

// DeltaToDistance sums the cost of every delta in a delta sequence.
func DeltaToDistance(deltas []Delta) int {
	total := 0
	for _, d := range deltas {
		total += d.Cost()
	}
	return total
}

// ListDistance is the scalar distance between two attestation lists: the sum
// of costs of their minimum-cost delta sequence.
func ListDistance(left, right []beacontypes.Attestation) int {
	return DeltaToDistance(ListDelta(left, right))
}
