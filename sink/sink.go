// Package sink implements C6, the per-sink dispatch protocol: collect a
// slot's dream blocks, optionally require full or same-parent coverage,
// POST them to a downstream consumer, compare rewards, and persist
// responses to disk.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/blockprint-collective/blockdreamer/beacontypes"
	"github.com/blockprint-collective/blockdreamer/config"
	"github.com/blockprint-collective/blockdreamer/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RequestTimeout bounds a sink POST; sinks are not on the slot-critical
// path but must not hang forever and leak goroutines.
const RequestTimeout = 30 * time.Second

// Entry is one node's contribution to a slot's fanout, with block
// absent on a per-node fetch failure (§4.6 step 1).
type Entry struct {
	Name  string
	Label string
	Block *beacontypes.DreamBlock
}

// Dispatcher POSTs one slot's collected blocks to one configured sink.
type Dispatcher struct {
	cfg    config.PostEndpointConfig
	client *http.Client
	log    *logrus.Entry
}

// New constructs a Dispatcher for one sink.
func New(cfg config.PostEndpointConfig) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: RequestTimeout},
		log:    logrus.WithField("prefix", "sink").WithField("sink", cfg.Name),
	}
}

// Dispatch runs the full ten-step protocol (§4.6) for one slot's
// entries. It never panics or returns an error the caller must act on:
// every failure is logged against the sink's name and simply ends the
// dispatch for this slot, per "a failure in one sink never aborts
// another, and never affects the orchestrator loop".
func (d *Dispatcher) Dispatch(ctx context.Context, slot uint64, entries []Entry) {
	log := d.log.WithField("slot", slot)

	total := len(entries)
	present := make([]Entry, 0, total)
	for _, e := range entries {
		if e.Block != nil {
			present = append(present, e)
		}
	}

	if d.cfg.RequireAll && len(present) != total {
		log.Errorf("sink error: only got %d/%d blocks", len(present), total)
		metrics.SinkPosts.WithLabelValues(d.cfg.Name, "skipped").Inc()
		return
	}

	if d.cfg.RequireSameParent && !sameParent(present) {
		log.Error("sink error: not all blocks build on the same parent")
		metrics.SinkPosts.WithLabelValues(d.cfg.Name, "skipped").Inc()
		return
	}

	if len(present) == 0 {
		log.Debug("no blocks to dispatch")
		metrics.SinkPosts.WithLabelValues(d.cfg.Name, "skipped").Inc()
		return
	}

	body, err := d.buildBody(present)
	if err != nil {
		log.WithError(err).Error("sink error: building request body")
		metrics.SinkPosts.WithLabelValues(d.cfg.Name, "error").Inc()
		return
	}

	respBody, err := d.post(ctx, body)
	if err != nil {
		log.WithError(err).Error("sink error: POST failed")
		metrics.SinkPosts.WithLabelValues(d.cfg.Name, "error").Inc()
		return
	}

	var responses []json.RawMessage
	if err := json.Unmarshal(respBody, &responses); err != nil || len(responses) != len(present) {
		log.WithError(err).Errorf("sink error: malformed response (expected array of length %d)", len(present))
		metrics.SinkPosts.WithLabelValues(d.cfg.Name, "error").Inc()
		return
	}

	metrics.SinkPosts.WithLabelValues(d.cfg.Name, "ok").Inc()

	var maxReward uint64
	var topNodes []string
	if d.cfg.CompareRewards {
		maxReward, topNodes = compareRewards(present, responses, log)
	}

	if d.cfg.ResultsDir != "" {
		for i, e := range present {
			if err := d.persist(e, slot, responses[i]); err != nil {
				log.WithField("node", e.Name).WithError(err).Error("sink error: persisting result")
			}
		}
	}

	if d.cfg.CompareRewards && len(topNodes) > 0 {
		log.Infof("most profitable: %v @ %d gwei", topNodes, maxReward)
	}
}

func sameParent(entries []Entry) bool {
	if len(entries) == 0 {
		return true
	}
	parent := entries[0].Block.ParentRoot
	for _, e := range entries[1:] {
		if !bytes.Equal(e.Block.ParentRoot, parent) {
			return false
		}
	}
	return true
}

// extraDataBody is the request shape used when the sink wants the
// names/labels alongside the blocks (§4.6 step 5).
type extraDataBody struct {
	Names  []string                  `json:"names"`
	Labels []string                  `json:"labels"`
	Blocks []beacontypes.DreamBlock `json:"blocks"`
}

func (d *Dispatcher) buildBody(entries []Entry) ([]byte, error) {
	if d.cfg.WantsExtraData() {
		payload := extraDataBody{
			Names:  make([]string, len(entries)),
			Labels: make([]string, len(entries)),
			Blocks: make([]beacontypes.DreamBlock, len(entries)),
		}
		for i, e := range entries {
			payload.Names[i] = e.Name
			payload.Labels[i] = e.Label
			payload.Blocks[i] = *e.Block
		}
		return json.Marshal(payload)
	}

	blocks := make([]beacontypes.DreamBlock, len(entries))
	for i, e := range entries {
		blocks[i] = *e.Block
	}
	return json.Marshal(blocks)
}

func (d *Dispatcher) post(ctx context.Context, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("non-2xx status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// rewardResponse matches the subset of a sink response this dispatcher
// reads for profitability comparison (§4.6 step 8).
type rewardResponse struct {
	AttestationRewards struct {
		Total uint64 `json:"total"`
	} `json:"attestation_rewards"`
}

func compareRewards(entries []Entry, responses []json.RawMessage, log *logrus.Entry) (uint64, []string) {
	var maxReward uint64
	var top []string
	for i, raw := range responses {
		var rr rewardResponse
		if err := json.Unmarshal(raw, &rr); err != nil {
			log.WithField("node", entries[i].Name).WithError(err).Warn("could not parse attestation_rewards")
			continue
		}
		switch {
		case rr.AttestationRewards.Total > maxReward:
			maxReward = rr.AttestationRewards.Total
			top = []string{entries[i].Name}
		case rr.AttestationRewards.Total == maxReward:
			top = append(top, entries[i].Name)
		}
	}
	sort.Strings(top)
	return maxReward, top
}

func (d *Dispatcher) persist(e Entry, slot uint64, response json.RawMessage) error {
	dir := filepath.Join(d.cfg.ResultsDir, e.Label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating results directory")
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.json", e.Name, slot))
	if err := os.WriteFile(path, response, 0o644); err != nil {
		return errors.Wrap(err, "writing result file")
	}
	return nil
}
