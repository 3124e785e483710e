// Package dreamnode implements C2, the per-node adapter that asks one
// candidate block-producing node to dream the block it would have
// proposed for a given slot (§4.2). It is modeled on the beacon-node RPC
// client idioms in the reference validator client: a thin HTTP wrapper
// with a fixed per-request deadline and structured error reporting naming
// the failing node.
package dreamnode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blockprint-collective/blockdreamer/beacontypes"
	"github.com/blockprint-collective/blockdreamer/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RequestTimeout is the hard per-request deadline from §4.2: "wrapped
// with a hard 6-second timeout".
const RequestTimeout = 6 * time.Second

// ErrSSZUnsupported is returned when a node is configured for the SSZ
// wire codec. SSZ decoding requires the chain spec, which is an external
// collaborator (§1 Non-goals); only the JSON codec is implemented here.
var ErrSSZUnsupported = errors.New("ssz wire codec not supported")

// Producer requests a dream block from one configured node.
type Producer interface {
	GetBlock(ctx context.Context, slot uint64) (beacontypes.DreamBlock, *beacontypes.Metadata, error)
}

// HTTPProducer is the concrete Producer backed by a beacon-node v2/v3
// block-production HTTP endpoint.
type HTTPProducer struct {
	cfg    config.NodeConfig
	client *http.Client
	log    *logrus.Entry
}

// NewHTTPProducer constructs a Producer for one configured node.
func NewHTTPProducer(cfg config.NodeConfig) *HTTPProducer {
	return &HTTPProducer{
		cfg:    cfg,
		client: &http.Client{Timeout: RequestTimeout},
		log:    logrus.WithField("prefix", "dreamnode").WithField("node", cfg.Name),
	}
}

// GetBlock implements Producer. It selects the v2 or v3 endpoint per
// cfg.V3, requests JSON (SSZ is rejected up front per ErrSSZUnsupported),
// and passes the infinity RANDAO reveal and skip_randao_verification
// flag through as request parameters.
func (p *HTTPProducer) GetBlock(ctx context.Context, slot uint64) (beacontypes.DreamBlock, *beacontypes.Metadata, error) {
	if p.cfg.UsesSSZ() {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(ErrSSZUnsupported, "node %s", p.cfg.Name)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	url := p.requestURL(slot)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: building request", p.cfg.Name)
	}
	req.Header.Set("Accept", "application/json")

	p.log.WithField("slot", slot).Debug("requesting dream block")

	resp, err := p.client.Do(req)
	if err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: request failed", p.cfg.Name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: reading response", p.cfg.Name)
	}
	if resp.StatusCode == http.StatusNotFound {
		return beacontypes.DreamBlock{}, nil, errors.Errorf("node %s: not found (slot %d)", p.cfg.Name, slot)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return beacontypes.DreamBlock{}, nil, errors.Errorf("node %s: non-2xx status %d", p.cfg.Name, resp.StatusCode)
	}

	if p.cfg.V3 {
		return p.decodeV3(body)
	}
	return p.decodeV2(body)
}

// v3Envelope matches the common shape of the v3 production endpoint: a
// version tag, an execution_payload_blinded flag, and the block itself.
// The value under "data" is decoded as a DreamBlock whether or not
// execution_payload_blinded is set: a "full" response is not projected to
// its blinded form, and its body fields other than the attestations
// (execution payload included) are kept verbatim in DreamBody.Rest.
type v3Envelope struct {
	Version                string          `json:"version"`
	ExecutionPayloadBlinded bool            `json:"execution_payload_blinded"`
	Data                    json.RawMessage `json:"data"`
	ConsensusBlockValue     string          `json:"consensus_block_value"`
	ExecutionPayloadValue   string          `json:"execution_payload_value"`
}

func (p *HTTPProducer) decodeV3(body []byte) (beacontypes.DreamBlock, *beacontypes.Metadata, error) {
	var env v3Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: decoding v3 envelope", p.cfg.Name)
	}
	var block beacontypes.DreamBlock
	if err := json.Unmarshal(env.Data, &block); err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: decoding block body", p.cfg.Name)
	}
	meta := &beacontypes.Metadata{
		ConsensusBlockValue:   env.ConsensusBlockValue,
		ExecutionPayloadValue: env.ExecutionPayloadValue,
	}
	return block, meta, nil
}

// v2Envelope is the legacy production endpoint's response shape: no
// metadata, just the block under "data".
type v2Envelope struct {
	Data json.RawMessage `json:"data"`
}

func (p *HTTPProducer) decodeV2(body []byte) (beacontypes.DreamBlock, *beacontypes.Metadata, error) {
	var env v2Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: decoding v2 envelope", p.cfg.Name)
	}
	var block beacontypes.DreamBlock
	if err := json.Unmarshal(env.Data, &block); err != nil {
		return beacontypes.DreamBlock{}, nil, errors.Wrapf(err, "node %s: decoding block body", p.cfg.Name)
	}
	return block, nil, nil
}

func (p *HTTPProducer) requestURL(slot uint64) string {
	randao := fmt.Sprintf("0x%x", beacontypes.InfinityRandaoReveal)
	if p.cfg.V3 {
		url := fmt.Sprintf("%s/eth/v3/validator/blocks/%d?randao_reveal=%s&skip_randao_verification=%t",
			p.cfg.URL, slot, randao, p.cfg.SkipRandaoVerification)
		if p.cfg.BuilderBoostFactor != nil {
			url += fmt.Sprintf("&builder_boost_factor=%d", *p.cfg.BuilderBoostFactor)
		}
		return url
	}
	return fmt.Sprintf("%s/eth/v2/validator/blinded_blocks/%d?randao_reveal=%s&skip_randao_verification=%t",
		p.cfg.URL, slot, randao, p.cfg.SkipRandaoVerification)
}
