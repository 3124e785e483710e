package distance

import "github.com/blockprint-collective/blockdreamer/beacontypes"

// BlockDelta computes the attestation-list delta between two dream blocks.
// Other body fields are ignored by the metric (§4.4.3); extending the
// engine to additional fields is left to future work so long as the metric
// properties in §8 keep holding.
func BlockDelta(left, right beacontypes.DreamBlock) []Delta {
	return ListDelta(left.Body.Attestations, right.Body.Attestations)
}

// BlockDistance is the scalar structural distance between two dream blocks.
func BlockDistance(left, right beacontypes.DreamBlock) int {
	return DeltaToDistance(BlockDelta(left, right))
}
