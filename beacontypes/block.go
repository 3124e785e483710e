package beacontypes

import (
	"encoding/json"

	"github.com/prysmaticlabs/go-bitfield"
)

// DreamBlock is a blinded beacon block: the header plus a body without
// execution-payload transactions. Body fields the distance engine does not
// reason about (deposits, voluntary exits, sync aggregate, execution
// payload header, ...) are preserved as opaque JSON so that a dream block
// POSTed to a sink carries them unchanged in content. The body is
// re-encoded on the way out, so key order and whitespace are not kept.
type DreamBlock struct {
	Slot          uint64      `json:"slot,string"`
	ProposerIndex uint64      `json:"proposer_index,string"`
	ParentRoot    []byte      `json:"parent_root" ssz-size:"32"`
	StateRoot     []byte      `json:"state_root,omitempty" ssz-size:"32"`
	Body          DreamBody   `json:"body"`
}

// DreamBody holds the attestation list the distance engine inspects plus a
// passthrough bag for every other body field.
type DreamBody struct {
	Attestations []Attestation   `json:"attestations"`
	Rest         json.RawMessage `json:"-"`
}

// MarshalJSON merges Attestations back into the opaque Rest bag so the
// wire representation carries the same body fields the node returned.
func (b DreamBody) MarshalJSON() ([]byte, error) {
	var rest map[string]json.RawMessage
	if len(b.Rest) > 0 {
		if err := json.Unmarshal(b.Rest, &rest); err != nil {
			return nil, err
		}
	} else {
		rest = make(map[string]json.RawMessage)
	}
	attBytes, err := json.Marshal(b.Attestations)
	if err != nil {
		return nil, err
	}
	rest["attestations"] = attBytes
	return json.Marshal(rest)
}

// UnmarshalJSON decodes the known attestations field and stashes everything
// else, including "attestations" itself, in Rest for lossless re-encoding.
func (b *DreamBody) UnmarshalJSON(data []byte) error {
	b.Rest = append(json.RawMessage(nil), data...)
	var known struct {
		Attestations []Attestation `json:"attestations"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	b.Attestations = known.Attestations
	return nil
}

// Metadata is an optional record accompanying a dream block, e.g. the
// node's purported consensus block value in wei.
type Metadata struct {
	ConsensusBlockValue string `json:"consensus_block_value,omitempty"`
	ExecutionPayloadValue string `json:"execution_payload_value,omitempty"`
}

// Clone deep-copies a DreamBlock so it can be handed to a sink task that
// runs concurrently with the orchestrator mutating its own window.
func (b DreamBlock) Clone() DreamBlock {
	clone := b
	clone.ParentRoot = append([]byte(nil), b.ParentRoot...)
	clone.StateRoot = append([]byte(nil), b.StateRoot...)
	clone.Body.Attestations = make([]Attestation, len(b.Body.Attestations))
	for i, a := range b.Body.Attestations {
		clone.Body.Attestations[i] = Attestation{
			Data: AttestationData{
				Slot:            a.Data.Slot,
				CommitteeIndex:  a.Data.CommitteeIndex,
				BeaconBlockRoot: append([]byte(nil), a.Data.BeaconBlockRoot...),
				Source:          Checkpoint{Epoch: a.Data.Source.Epoch, Root: append([]byte(nil), a.Data.Source.Root...)},
				Target:          Checkpoint{Epoch: a.Data.Target.Epoch, Root: append([]byte(nil), a.Data.Target.Root...)},
			},
			AggregationBits: append(bitfield.Bitlist(nil), a.AggregationBits...),
			Signature:       append([]byte(nil), a.Signature...),
		}
	}
	clone.Body.Rest = append(json.RawMessage(nil), b.Body.Rest...)
	return clone
}
