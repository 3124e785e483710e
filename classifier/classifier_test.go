package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// S6: two closest candidates share a label, so the call is "matching
// labels" regardless of the gap to the third candidate.
func TestS6MatchingLabels(t *testing.T) {
	v := Classify([]Candidate{
		{Name: "n1", Label: "X", Distance: 10},
		{Name: "n2", Label: "X", Distance: 25},
		{Name: "n3", Label: "Y", Distance: 40},
	})
	require.Equal(t, MatchingLabels, v.Kind)
	require.Equal(t, "n1", v.First.Name)
	require.Equal(t, "likely X@10", v.String())
}

func TestSignificantGap(t *testing.T) {
	v := Classify([]Candidate{
		{Name: "n1", Label: "X", Distance: 10},
		{Name: "n2", Label: "Y", Distance: 20},
	})
	require.Equal(t, SignificantGap, v.Kind)
	require.Contains(t, v.String(), "likely X")
}

func TestTooCloseToCall(t *testing.T) {
	v := Classify([]Candidate{
		{Name: "n1", Label: "X", Distance: 10},
		{Name: "n2", Label: "Y", Distance: 19},
	})
	require.Equal(t, TooCloseToCall, v.Kind)
}

// The significance ratio uses truncating integer division: with
// numerator/denom = 2/1, a second-distance of exactly 2x the first is
// significant, but 2x-1 is not.
func TestSignificanceRatioIsExactBoundary(t *testing.T) {
	exact := Classify([]Candidate{
		{Name: "n1", Label: "X", Distance: 10},
		{Name: "n2", Label: "Y", Distance: 20},
	})
	require.Equal(t, SignificantGap, exact.Kind)

	justUnder := Classify([]Candidate{
		{Name: "n1", Label: "X", Distance: 10},
		{Name: "n2", Label: "Y", Distance: 19},
	})
	require.Equal(t, TooCloseToCall, justUnder.Kind)
}

func TestSingleCandidate(t *testing.T) {
	v := Classify([]Candidate{{Name: "n1", Label: "X", Distance: 5}})
	require.Equal(t, MatchingLabels, v.Kind)
	require.Equal(t, v.First, v.Second)
}

func TestSortsByDistanceThenName(t *testing.T) {
	v := Classify([]Candidate{
		{Name: "b", Label: "X", Distance: 10},
		{Name: "a", Label: "Y", Distance: 10},
	})
	require.Equal(t, "a", v.First.Name)
	require.Equal(t, "b", v.Second.Name)
}
