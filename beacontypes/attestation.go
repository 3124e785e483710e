// Package beacontypes defines the wire-level beacon block and attestation
// shapes that blockdreamer reasons about. Fields follow the naming used by
// the teacher protobuf beacon types (ethpb.AttestationData, ethpb.Checkpoint)
// with JSON tags matching the standard beacon-API naming convention.
package beacontypes

import (
	"github.com/prysmaticlabs/go-bitfield"
)

// Checkpoint is a (epoch, root) pair used for the source/target of an
// AttestationData.
type Checkpoint struct {
	Epoch uint64 `json:"epoch,string"`
	Root  []byte `json:"root" ssz-size:"32"`
}

// Equal reports whether c and other identify the same checkpoint.
func (c Checkpoint) Equal(other Checkpoint) bool {
	if c.Epoch != other.Epoch {
		return false
	}
	if len(c.Root) != len(other.Root) {
		return false
	}
	for i := range c.Root {
		if c.Root[i] != other.Root[i] {
			return false
		}
	}
	return true
}

// AttestationData is the voted-upon content of an attestation, excluding
// the aggregation bitfield and signature. Two attestations are only
// comparable by the distance engine (§4.4.1) when their AttestationData is
// equal.
type AttestationData struct {
	Slot            uint64     `json:"slot,string"`
	CommitteeIndex  uint64     `json:"index,string"`
	BeaconBlockRoot []byte     `json:"beacon_block_root" ssz-size:"32"`
	Source          Checkpoint `json:"source"`
	Target          Checkpoint `json:"target"`
}

// Equal reports whether d and other represent the same vote.
func (d AttestationData) Equal(other AttestationData) bool {
	if d.Slot != other.Slot || d.CommitteeIndex != other.CommitteeIndex {
		return false
	}
	if len(d.BeaconBlockRoot) != len(other.BeaconBlockRoot) {
		return false
	}
	for i := range d.BeaconBlockRoot {
		if d.BeaconBlockRoot[i] != other.BeaconBlockRoot[i] {
			return false
		}
	}
	return d.Source.Equal(other.Source) && d.Target.Equal(other.Target)
}

// Attestation is a validator vote carrying the voted-upon data plus an
// aggregation bitfield naming which committee members signed. The signature
// is preserved on the wire but never inspected by the distance engine.
type Attestation struct {
	Data            AttestationData   `json:"data"`
	AggregationBits bitfield.Bitlist  `json:"aggregation_bits"`
	Signature       []byte            `json:"signature,omitempty" ssz-size:"96"`
}

// Comparable reports whether a and other carry the same AttestationData and
// are therefore eligible for a Modify delta rather than an insert/delete.
func (a Attestation) Comparable(other Attestation) bool {
	return a.Data.Equal(other.Data)
}

// NumSetBits is the number of validators that signed this attestation.
func (a Attestation) NumSetBits() int {
	return int(a.AggregationBits.Count())
}
