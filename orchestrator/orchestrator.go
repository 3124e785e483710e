// Package orchestrator implements C7, the slot loop driving every other
// component: it wakes on each slot boundary, dispatches dreaming-node
// requests, collects results into a sliding window, fans results out to
// sinks, compares the previous slot against canonical, classifies, and
// prunes. The per-slot fan-out/join shape is grounded on the reference
// validator client's runner loop, generalized from "one goroutine per
// validator role" to "one goroutine per configured dreaming node, one
// background task per sink".
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blockprint-collective/blockdreamer/beacontypes"
	"github.com/blockprint-collective/blockdreamer/classifier"
	"github.com/blockprint-collective/blockdreamer/config"
	"github.com/blockprint-collective/blockdreamer/distance"
	"github.com/blockprint-collective/blockdreamer/dreamnode"
	"github.com/blockprint-collective/blockdreamer/metrics"
	"github.com/blockprint-collective/blockdreamer/sink"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var log = logrus.WithField("prefix", "orchestrator")

// windowSize is the number of trailing slots retained in the in-memory
// block window (§3 "In-memory block window").
const windowSize = 8

// SlotClock is the subset of shared/slotclock.Clock the orchestrator
// depends on.
type SlotClock interface {
	Now() (uint64, error)
	DurationToNextSlot() time.Duration
}

// slotResult is one node's outcome for one slot, used both to populate
// the window and to build a sink fanout.
type slotResult struct {
	name  string
	label string
	block *beacontypes.DreamBlock
}

// Orchestrator drives the slot loop described in §4.7.
type Orchestrator struct {
	clock      SlotClock
	nodes      []config.NodeConfig
	producers  map[string]dreamnode.Producer
	canonical  canonicalSource
	dispatchers []*sink.Dispatcher

	shutdown atomic.Bool

	mu     sync.Mutex
	window map[uint64]map[string]beacontypes.DreamBlock
}

// canonicalSource is the subset of canonical.Source the orchestrator
// depends on.
type canonicalSource interface {
	GetCanonical(ctx context.Context, slot uint64) (beacontypes.DreamBlock, error)
}

// New constructs an Orchestrator from validated config. producers must
// contain one entry per enabled node, keyed by node name.
func New(clock SlotClock, nodes []config.NodeConfig, producers map[string]dreamnode.Producer, can canonicalSource, sinks []config.PostEndpointConfig) *Orchestrator {
	dispatchers := make([]*sink.Dispatcher, len(sinks))
	for i, s := range sinks {
		dispatchers[i] = sink.New(s)
	}
	return &Orchestrator{
		clock:       clock,
		nodes:       nodes,
		producers:   producers,
		canonical:   can,
		dispatchers: dispatchers,
		window:      make(map[uint64]map[string]beacontypes.DreamBlock),
	}
}

// RequestShutdown sets the shutdown flag polled at each loop head
// (§4.8). It is safe to call from a signal handler goroutine.
func (o *Orchestrator) RequestShutdown() {
	o.shutdown.Store(true)
}

// Run executes the slot loop until shutdown is requested or ctx is
// canceled. It returns only on termination.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if o.shutdown.Load() {
			log.Info("shutdown requested, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.clock.DurationToNextSlot()):
		}

		slot, err := o.clock.Now()
		if err != nil {
			return err
		}

		runID := uuid.New().String()
		slog := log.WithFields(logrus.Fields{"slot": slot, "run_id": runID})
		o.runSlot(ctx, slog, slot)
		metrics.SlotsProcessed.Inc()

		if o.shutdown.Load() {
			slog.Info("shutdown requested after slot, stopping")
			return nil
		}
	}
}

// runSlot executes one DISPATCH -> COLLECT -> FANOUT_SINKS /
// CANONICAL_COMPARE / PAIRWISE_COMPARE -> PRUNE iteration (§4.7).
func (o *Orchestrator) runSlot(ctx context.Context, slog *logrus.Entry, slot uint64) {
	results := o.dispatchAndCollect(ctx, slog, slot)

	full := len(results) == len(o.nodes)
	if full {
		blocks := make(map[string]beacontypes.DreamBlock, len(results))
		for _, r := range results {
			if r.block != nil {
				blocks[r.name] = *r.block
			}
		}
		if len(blocks) == len(o.nodes) {
			o.mu.Lock()
			o.window[slot] = blocks
			o.mu.Unlock()
		}
	}

	o.fanoutSinks(ctx, slog, slot, results)

	if slot > 0 {
		o.canonicalCompare(ctx, slog, slot-1)
	}
	o.pairwiseCompare(slog, slot, results)

	o.prune(slot)
}

// dispatchAndCollect runs DISPATCH then COLLECT: one task per enabled
// node, each re-checking slot staleness before issuing its request, all
// joined with errgroup (the idiomatic successor to a raw WaitGroup).
// A failing task logs its error and leaves its block absent; it never
// aborts its peers, and results are collected by index.
func (o *Orchestrator) dispatchAndCollect(ctx context.Context, slog *logrus.Entry, slot uint64) []slotResult {
	results := make([]slotResult, len(o.nodes))
	var g errgroup.Group

	for i, n := range o.nodes {
		i, n := i, n
		results[i] = slotResult{name: n.Name, label: n.Label}
		if !n.IsEnabled() {
			continue
		}
		g.Go(func() error {
			nlog := slog.WithField("node", n.Name)

			cur, err := o.clock.Now()
			if err != nil || cur != slot {
				nlog.Warnf("too slow, slot %d expired", slot)
				metrics.NodeFetches.WithLabelValues(n.Name, "stale").Inc()
				return nil
			}

			producer := o.producers[n.Name]
			if producer == nil {
				nlog.Error("no producer configured")
				metrics.NodeFetches.WithLabelValues(n.Name, "error").Inc()
				return nil
			}

			block, _, err := producer.GetBlock(ctx, slot)
			if err != nil {
				nlog.WithError(err).Warn("node fetch failed")
				metrics.NodeFetches.WithLabelValues(n.Name, "error").Inc()
				return nil
			}
			metrics.NodeFetches.WithLabelValues(n.Name, "ok").Inc()
			results[i].block = &block
			return nil
		})
	}

	// Errors are never returned by the goroutines above (they are
	// logged and treated as absent blocks instead), so g.Wait() cannot
	// fail; it exists purely as the join point.
	_ = g.Wait()
	return results
}

// fanoutSinks enqueues one background task per sink with a cloned
// entry list; the orchestrator does not await sinks (§4.7 FANOUT_SINKS).
func (o *Orchestrator) fanoutSinks(ctx context.Context, slog *logrus.Entry, slot uint64, results []slotResult) {
	if len(o.dispatchers) == 0 {
		return
	}
	entries := make([]sink.Entry, len(results))
	for i, r := range results {
		e := sink.Entry{Name: r.name, Label: r.label}
		if r.block != nil {
			cloned := r.block.Clone()
			e.Block = &cloned
		}
		entries[i] = e
	}
	for _, d := range o.dispatchers {
		d := d
		go d.Dispatch(ctx, slot, entries)
	}
}

// canonicalCompare fetches canonical for slot S-1 and, if present and
// the window has full coverage for S-1, computes distances and
// classifies (§4.7 CANONICAL_COMPARE).
func (o *Orchestrator) canonicalCompare(ctx context.Context, slog *logrus.Entry, slot uint64) {
	o.mu.Lock()
	blocks, ok := o.window[slot]
	o.mu.Unlock()
	if !ok {
		return
	}

	canon, err := o.canonical.GetCanonical(ctx, slot)
	if err != nil {
		slog.WithField("prev_slot", slot).WithError(err).Debug("canonical block unavailable")
		return
	}

	labels := make(map[string]string, len(o.nodes))
	for _, n := range o.nodes {
		labels[n.Name] = n.Label
	}

	candidates := make([]classifier.Candidate, 0, len(blocks))
	for name, block := range blocks {
		d := distance.BlockDistance(canon, block)
		candidates = append(candidates, classifier.Candidate{Name: name, Label: labels[name], Distance: d})
	}
	if len(candidates) == 0 {
		return
	}

	verdict := classifier.Classify(candidates)
	metrics.ClassifierVerdicts.WithLabelValues(verdictLabel(verdict.Kind)).Inc()
	slog.WithField("prev_slot", slot).Info(verdict.String())
}

func verdictLabel(k classifier.VerdictKind) string {
	switch k {
	case classifier.MatchingLabels:
		return "matching_labels"
	case classifier.SignificantGap:
		return "significant_gap"
	default:
		return "too_close_to_call"
	}
}

// pairwiseCompare emits the cross-distance matrix among current-slot
// dream blocks, each pair printed once in (name1 < name2) order
// (§4.7 PAIRWISE_COMPARE).
func (o *Orchestrator) pairwiseCompare(slog *logrus.Entry, slot uint64, results []slotResult) {
	present := make([]slotResult, 0, len(results))
	for _, r := range results {
		if r.block != nil {
			present = append(present, r)
		}
	}
	sort.Slice(present, func(i, j int) bool { return present[i].name < present[j].name })

	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			d := distance.BlockDistance(*present[i].block, *present[j].block)
			slog.WithFields(logrus.Fields{
				"node1": present[i].name,
				"node2": present[j].name,
			}).Debugf("pairwise distance: %d", d)
		}
	}
}

// prune drops slots older than current-windowSize (§4.7 PRUNE).
func (o *Orchestrator) prune(current uint64) {
	if current < windowSize {
		return
	}
	cutoff := current - windowSize
	o.mu.Lock()
	defer o.mu.Unlock()
	for slot := range o.window {
		if slot < cutoff {
			delete(o.window, slot)
		}
	}
}
