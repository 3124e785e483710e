package slotclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNow(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	slotDuration := 12 * time.Second

	var current time.Time
	clock := NewWithNow(0, genesis, slotDuration, func() time.Time { return current })

	current = genesis
	slot, err := clock.Now()
	require.NoError(t, err)
	require.Equal(t, uint64(0), slot)

	current = genesis.Add(25 * time.Second)
	slot, err = clock.Now()
	require.NoError(t, err)
	require.Equal(t, uint64(2), slot)
}

func TestNowBeforeGenesis(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := genesis.Add(-time.Second)
	clock := NewWithNow(0, genesis, 12*time.Second, func() time.Time { return current })

	_, err := clock.Now()
	require.ErrorIs(t, err, ErrBeforeGenesis)
}

func TestDurationToNextSlot(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := genesis.Add(5 * time.Second)
	clock := NewWithNow(0, genesis, 12*time.Second, func() time.Time { return current })

	require.Equal(t, 7*time.Second, clock.DurationToNextSlot())
}

func TestSecondsFromCurrentSlotStart(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := genesis.Add(17 * time.Second)
	clock := NewWithNow(0, genesis, 12*time.Second, func() time.Time { return current })

	require.Equal(t, 5*time.Second, clock.SecondsFromCurrentSlotStart())
}

func TestGenesisSlotOffset(t *testing.T) {
	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	current := genesis.Add(24 * time.Second)
	clock := NewWithNow(100, genesis, 12*time.Second, func() time.Time { return current })

	slot, err := clock.Now()
	require.NoError(t, err)
	require.Equal(t, uint64(102), slot)
}
