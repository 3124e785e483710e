package beacontypes

// InfinityRandaoReveal is the well-known BLS infinity signature sent as the
// RANDAO reveal on every block-production request. Whether a node is
// asked to skip RANDAO verification comes from its skip_randao_verification
// config flag; using the infinity point avoids generating or storing any
// real key material.
var InfinityRandaoReveal = [96]byte{0xc0}

// BlockRequestOptions carries the advisory, per-request knobs a dreaming
// node accepts when asked to produce a block.
type BlockRequestOptions struct {
	SkipRandaoVerification bool
	BuilderBoostFactor     *uint64
}
