// Package slotclock implements C1, converting wall-clock time into slot
// numbers given a genesis time and slot duration. A single injectable
// now function (see NewWithNow) lets tests drive the clock without
// sleeping.
package slotclock

import (
	"time"

	"github.com/pkg/errors"
)

// ErrBeforeGenesis is returned by Now when wall-clock time precedes
// genesis.
var ErrBeforeGenesis = errors.New("current time is before genesis time")

// Clock converts wall-clock time to slots for one network's genesis
// parameters. It is immutable after construction and safe for
// concurrent use by multiple goroutines (§5 "Sharing").
type Clock struct {
	genesisSlot uint64
	genesisTime time.Time
	slotDuration time.Duration

	now func() time.Time
}

// New constructs a Clock. genesisSlot lets a network resume numbering
// from a non-zero slot (e.g. after a hard fork); most networks pass 0.
func New(genesisSlot uint64, genesisTime time.Time, slotDuration time.Duration) *Clock {
	return &Clock{
		genesisSlot:  genesisSlot,
		genesisTime:  genesisTime,
		slotDuration: slotDuration,
		now:          time.Now,
	}
}

// NewWithNow constructs a Clock with an injectable time source, letting
// tests drive the clock deterministically instead of sleeping.
func NewWithNow(genesisSlot uint64, genesisTime time.Time, slotDuration time.Duration, now func() time.Time) *Clock {
	c := New(genesisSlot, genesisTime, slotDuration)
	c.now = now
	return c
}

// Now returns the current slot derived from wall-clock time. It fails
// only if wall-clock time is before genesis (§4.1).
func (c *Clock) Now() (uint64, error) {
	now := c.now()
	if now.Before(c.genesisTime) {
		return 0, ErrBeforeGenesis
	}
	elapsed := now.Sub(c.genesisTime)
	return c.genesisSlot + uint64(elapsed/c.slotDuration), nil
}

// DurationToNextSlot returns how long to sleep before the next slot
// boundary.
func (c *Clock) DurationToNextSlot() time.Duration {
	now := c.now()
	if now.Before(c.genesisTime) {
		return c.genesisTime.Sub(now)
	}
	elapsed := now.Sub(c.genesisTime)
	intoSlot := elapsed % c.slotDuration
	return c.slotDuration - intoSlot
}

// SecondsFromCurrentSlotStart returns elapsed time since the current
// slot began.
func (c *Clock) SecondsFromCurrentSlotStart() time.Duration {
	now := c.now()
	if now.Before(c.genesisTime) {
		return 0
	}
	elapsed := now.Sub(c.genesisTime)
	return elapsed % c.slotDuration
}

// GenesisTime returns the configured genesis time.
func (c *Clock) GenesisTime() time.Time {
	return c.genesisTime
}

// SlotDuration returns the configured slot duration.
func (c *Clock) SlotDuration() time.Duration {
	return c.slotDuration
}
