package dreamnode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blockprint-collective/blockdreamer/config"
	"github.com/stretchr/testify/require"
)

func TestGetBlockV2(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/eth/v2/validator/blinded_blocks/7")
		w.Write([]byte(`{"data":{"slot":"7","proposer_index":"1","parent_root":"","state_root":"","body":{"attestations":[]}}}`))
	}))
	defer srv.Close()

	p := NewHTTPProducer(config.NodeConfig{Name: "n1", URL: srv.URL, SSZ: boolPtr(false)})
	block, meta, err := p.GetBlock(context.Background(), 7)
	require.NoError(t, err)
	require.Nil(t, meta)
	require.Equal(t, uint64(7), block.Slot)
}

func TestGetBlockV3(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/eth/v3/validator/blocks/9")
		w.Write([]byte(`{
			"version": "deneb",
			"execution_payload_blinded": true,
			"consensus_block_value": "100",
			"execution_payload_value": "200",
			"data": {"slot":"9","proposer_index":"2","parent_root":"","state_root":"","body":{"attestations":[]}}
		}`))
	}))
	defer srv.Close()

	p := NewHTTPProducer(config.NodeConfig{Name: "n1", URL: srv.URL, SSZ: boolPtr(false), V3: true})
	block, meta, err := p.GetBlock(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, uint64(9), block.Slot)
	require.Equal(t, "100", meta.ConsensusBlockValue)
}

func TestGetBlockNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProducer(config.NodeConfig{Name: "n1", URL: srv.URL, SSZ: boolPtr(false)})
	_, _, err := p.GetBlock(context.Background(), 1)
	require.Error(t, err)
}

func TestGetBlockSSZUnsupported(t *testing.T) {
	p := NewHTTPProducer(config.NodeConfig{Name: "n1", URL: "http://unused", SSZ: boolPtr(true)})
	_, _, err := p.GetBlock(context.Background(), 1)
	require.ErrorIs(t, err, ErrSSZUnsupported)
}

func boolPtr(b bool) *bool { return &b }
