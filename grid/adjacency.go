package grid

// offsets lists the eight compass moves, orthogonal first.
var offsets = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// RecomputeAllAdjacency rebuilds every cell's neighbour list. A neighbour is any
// in-bounds, non-obstacle cell one compass step away. It must run after
// obstacle edits and before the next search.
func (g *Grid) RecomputeAllAdjacency() {
	g.Cells(func(c *Cell) bool {
		adj := make([]*Cell, 0, len(offsets))
		for _, d := range offsets {
			r, col := c.Row+d[0], c.Col+d[1]
			if !g.InBounds(r, col) {
				continue
			}
			if n := g.cells[r][col]; n.role != Obstacle {
				adj = append(adj, n)
			}
		}
		c.adjacent = adj
		return true
	})
	g.adjacencyRev = g.obstacleRev
	g.built = true
}

// AdjacencyStale reports whether obstacles changed since adjacency was last
// computed, or whether it was never computed.
func (g *Grid) AdjacencyStale() bool {
	return !g.built || g.adjacencyRev != g.obstacleRev
}

// Diagonal reports whether moving from a to b changes both row and column.
func Diagonal(a, b *Cell) bool {
	return a.Row != b.Row && a.Col != b.Col
}
