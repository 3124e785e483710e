package canonical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetCanonicalFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, "/eth/v2/beacon/blocks/42")
		w.Write([]byte(`{"data":{"slot":"42","proposer_index":"1","parent_root":"","state_root":"","body":{"attestations":[]}}}`))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	block, err := s.GetCanonical(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), block.Slot)
}

func TestGetCanonicalNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	_, err := s.GetCanonical(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetGenesisTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"genesis_time":"1700000000"}}`))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	gt, err := s.GetGenesisTime(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), gt.Unix())
}
