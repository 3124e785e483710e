// Package distance implements the structural distance metric over beacon
// blocks and attestation lists described by the blockprint fingerprinting
// harness: a Kuhn-Munkres optimal assignment over per-(AttestationData)
// buckets, with a fixed indel cost dominating any in-bucket modification.
package distance

import (
	"encoding/hex"
	"fmt"

	"github.com/blockprint-collective/blockdreamer/beacontypes"
	"github.com/prysmaticlabs/go-bitfield"
)

// IndelCost is added to every insert/delete delta. It equals the maximum
// possible pos_distance for lists of length <= 128, which guarantees an
// indel is never cheaper than a legal in-bucket modification.
const IndelCost = 128

// AttestationDistance returns the symmetric-difference cardinality of a and
// b's aggregation bitfields, or ok=false if a and b carry different
// AttestationData and are therefore incomparable.
func AttestationDistance(a, b beacontypes.Attestation) (dist int, ok bool) {
	if !a.Comparable(b) {
		return 0, false
	}
	return bitDistance(a.AggregationBits, b.AggregationBits), true
}

// bitDistance counts the bit positions at which a and b disagree. Equal
// AttestationData implies equal committee size and therefore equal bitlist
// length (go-bitfield.Bitlist has no exposed Xor/popcount primitive, so
// this walks BitAt directly rather than reaching for math/bits).
func bitDistance(a, b bitfield.Bitlist) int {
	n := a.Len()
	if bLen := b.Len(); bLen < n {
		n = bLen
	}
	diff := 0
	for i := uint64(0); i < n; i++ {
		if a.BitAt(i) != b.BitAt(i) {
			diff++
		}
	}
	return diff
}

// attestationDataKey produces a bucket key for grouping attestations by
// AttestationData equality. Byte slices are hex-encoded since Go slices
// cannot be used as map keys directly.
func attestationDataKey(d beacontypes.AttestationData) string {
	return fmt.Sprintf("%d|%d|%s|%d|%s|%d|%s",
		d.Slot, d.CommitteeIndex, hex.EncodeToString(d.BeaconBlockRoot),
		d.Source.Epoch, hex.EncodeToString(d.Source.Root),
		d.Target.Epoch, hex.EncodeToString(d.Target.Root),
	)
}
