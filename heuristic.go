package astar

import "github.com/pdrpinto/gridastar/grid"

// Move costs. DiagonalCost is a fixed approximation of √2 so that runs are
// reproducible bit for bit.
const (
	OrthogonalCost = 1.0
	DiagonalCost   = 1.41421356
)

// Chebyshev returns max(|Δrow|, |Δcol|). It never overestimates the cost of an
// 8-directional path, so A* stays optimal.
func Chebyshev(a, b *grid.Cell) float64 {
	dr := abs(a.Row - b.Row)
	dc := abs(a.Col - b.Col)
	if dr > dc {
		return float64(dr)
	}
	return float64(dc)
}

// StepCost returns the cost of moving between two adjacent cells.
func StepCost(from, to *grid.Cell) float64 {
	if grid.Diagonal(from, to) {
		return DiagonalCost
	}
	return OrthogonalCost
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
