// Package canonical implements C3, the adapter that fetches the
// canonical block actually published for a past slot, against which
// dream blocks are compared.
package canonical

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/blockprint-collective/blockdreamer/beacontypes"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "canonical")

// RequestTimeout bounds a single canonical-block lookup; the canonical
// source is on the slot-critical path only for the previous slot, so it
// gets the same budget as a dreaming node request.
const RequestTimeout = 6 * time.Second

// ErrNotFound is returned when the canonical beacon node has no block
// for the requested slot (404, i.e. the slot was skipped).
var ErrNotFound = errors.New("canonical block not found")

// Source fetches canonical blocks by slot.
type Source interface {
	GetCanonical(ctx context.Context, slot uint64) (beacontypes.DreamBlock, error)
}

// HTTPSource is the concrete Source backed by a beacon-node HTTP API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource constructs a Source pointed at a canonical beacon node.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{baseURL: baseURL, client: &http.Client{Timeout: RequestTimeout}}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// GetCanonical implements Source per §4.3: 404 returns ErrNotFound;
// other errors are wrapped for the caller to log and treat as absent.
func (s *HTTPSource) GetCanonical(ctx context.Context, slot uint64) (beacontypes.DreamBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	url := s.baseURL + "/eth/v2/beacon/blocks/" + strconv.FormatUint(slot, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return beacontypes.DreamBlock{}, errors.Wrap(err, "building canonical request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return beacontypes.DreamBlock{}, errors.Wrap(err, "canonical request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return beacontypes.DreamBlock{}, ErrNotFound
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return beacontypes.DreamBlock{}, errors.Wrap(err, "reading canonical response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return beacontypes.DreamBlock{}, errors.Errorf("canonical source: non-2xx status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return beacontypes.DreamBlock{}, errors.Wrap(err, "decoding canonical envelope")
	}
	var block beacontypes.DreamBlock
	if err := json.Unmarshal(env.Data, &block); err != nil {
		return beacontypes.DreamBlock{}, errors.Wrap(err, "decoding canonical block")
	}
	return block, nil
}

type genesisEnvelope struct {
	Data struct {
		GenesisTime string `json:"genesis_time"`
	} `json:"data"`
}

// GetGenesisTime fetches the network's genesis time from the canonical
// beacon node's genesis endpoint, used at startup to derive the slot
// clock (§6 "network-parameter loading... external collaborator";
// genesis time specifically is sourced from the canonical beacon node
// since it is already a required dependency). The request is bounded
// only by ctx, not by RequestTimeout.
func (s *HTTPSource) GetGenesisTime(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/eth/v1/beacon/genesis", nil)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "building genesis request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "genesis request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "reading genesis response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return time.Time{}, errors.Errorf("genesis source: non-2xx status %d", resp.StatusCode)
	}

	var env genesisEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return time.Time{}, errors.Wrap(err, "decoding genesis response")
	}
	seconds, err := strconv.ParseInt(env.Data.GenesisTime, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parsing genesis_time")
	}
	return time.Unix(seconds, 0), nil
}
