package beacontypes

import (
	"encoding/json"
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"
)

func TestDreamBodyRoundTrip(t *testing.T) {
	raw := []byte(`{
		"attestations": [],
		"deposits": [{"proof": ["0x1234"]}],
		"sync_aggregate": {"sync_committee_bits": "0x00"}
	}`)

	var body DreamBody
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Empty(t, body.Attestations)

	out, err := json.Marshal(body)
	require.NoError(t, err)

	var roundTripped map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	require.Contains(t, roundTripped, "deposits")
	require.Contains(t, roundTripped, "sync_aggregate")
	require.Contains(t, roundTripped, "attestations")
}

func TestDreamBlockClone(t *testing.T) {
	bits := bitfield.NewBitlist(4)
	bits.SetBitAt(0, true)

	original := DreamBlock{
		Slot:       1,
		ParentRoot: []byte{1, 2, 3},
		Body: DreamBody{
			Attestations: []Attestation{
				{Data: AttestationData{Slot: 1, BeaconBlockRoot: []byte{1}}, AggregationBits: bits},
			},
		},
	}

	clone := original.Clone()
	clone.ParentRoot[0] = 99
	clone.Body.Attestations[0].Data.Slot = 42
	clone.Body.Attestations[0].AggregationBits.SetBitAt(1, true)

	require.Equal(t, byte(1), original.ParentRoot[0])
	require.Equal(t, uint64(1), original.Body.Attestations[0].Data.Slot)
	require.False(t, original.Body.Attestations[0].AggregationBits.BitAt(1))
}
