package beacontypes

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"
)

func TestAttestationDataEqual(t *testing.T) {
	a := AttestationData{
		Slot:            1,
		CommitteeIndex:  2,
		BeaconBlockRoot: []byte{1, 2, 3},
		Source:          Checkpoint{Epoch: 1, Root: []byte{1}},
		Target:          Checkpoint{Epoch: 2, Root: []byte{2}},
	}
	b := a
	b.BeaconBlockRoot = []byte{1, 2, 3}
	require.True(t, a.Equal(b))

	c := a
	c.Slot = 2
	require.False(t, a.Equal(c))
}

func TestComparable(t *testing.T) {
	data := AttestationData{Slot: 1, BeaconBlockRoot: []byte{0}}
	bits := bitfield.NewBitlist(4)
	a := Attestation{Data: data, AggregationBits: bits}
	b := Attestation{Data: data, AggregationBits: bits}
	require.True(t, a.Comparable(b))

	other := Attestation{Data: AttestationData{Slot: 2, BeaconBlockRoot: []byte{1}}, AggregationBits: bits}
	require.False(t, a.Comparable(other))
}

func TestNumSetBits(t *testing.T) {
	bits := bitfield.NewBitlist(8)
	bits.SetBitAt(0, true)
	bits.SetBitAt(3, true)
	a := Attestation{AggregationBits: bits}
	require.Equal(t, 2, a.NumSetBits())
}
