// Package munkres implements the Kuhn-Munkres (Hungarian) algorithm for
// minimum-cost perfect matching on a dense square non-negative integer cost
// matrix. No exact bipartite min-cost-matching library appears anywhere in
// the reference corpus, so this is a hand-rolled O(n^3) implementation
// following the standard potential/augmenting-path formulation.
package munkres

import "math"

const inf = math.MaxInt32 / 2

// Solve returns, for an n x n cost matrix cost[row][col], an assignment
// matchCol such that matchCol[row] = col minimizes the sum of
// cost[row][matchCol[row]] over a perfect matching. cost must be square
// with every entry non-negative.
func Solve(cost [][]int) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}

	// 1-indexed throughout, as in the standard formulation: row/col 0 is a
	// sentinel meaning "no assignment yet".
	u := make([]int, n+1)
	v := make([]int, n+1)
	p := make([]int, n+1) // p[j] = row currently matched to column j
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]int, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	matchCol := make([]int, n)
	for j := 1; j <= n; j++ {
		matchCol[p[j]-1] = j - 1
	}
	return matchCol
}
