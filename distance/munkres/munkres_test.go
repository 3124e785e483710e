package munkres

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func totalCost(cost [][]int, assignment []int) int {
	total := 0
	for i, j := range assignment {
		total += cost[i][j]
	}
	return total
}

func bruteForceMin(cost [][]int) int {
	n := len(cost)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := -1
	var permute func(k int)
	permute = func(k int) {
		if k == n {
			total := 0
			for i, j := range perm {
				total += cost[i][j]
			}
			if best == -1 || total < best {
				best = total
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			permute(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	permute(0)
	return best
}

func TestSolveMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		n := 1 + r.Intn(5)
		cost := make([][]int, n)
		for i := range cost {
			cost[i] = make([]int, n)
			for j := range cost[i] {
				cost[i][j] = r.Intn(50)
			}
		}
		assignment := Solve(cost)
		require.Len(t, assignment, n)
		require.Equal(t, bruteForceMin(cost), totalCost(cost, assignment))

		seen := make([]bool, n)
		for _, j := range assignment {
			require.False(t, seen[j], "column %d assigned twice", j)
			seen[j] = true
		}
	}
}

func TestSolveIdentityIsOptimalWhenDiagonalIsZero(t *testing.T) {
	cost := [][]int{
		{0, 5, 5},
		{5, 0, 5},
		{5, 5, 0},
	}
	assignment := Solve(cost)
	require.Equal(t, []int{0, 1, 2}, assignment)
}

func TestSolveEmpty(t *testing.T) {
	require.Nil(t, Solve(nil))
}

func TestSolveSingle(t *testing.T) {
	assignment := Solve([][]int{{7}})
	require.Equal(t, []int{0}, assignment)
}
