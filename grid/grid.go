package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is returned when a coordinate or cell does not belong to the grid.
var ErrOutOfBounds = errors.New("grid: cell out of bounds")

// Role is the part a cell plays in a search. The engine reads it; renderers may too.
type Role int

const (
	Empty Role = iota
	Obstacle
	Start
	End
)

func (r Role) String() string {
	switch r {
	case Empty:
		return "empty"
	case Obstacle:
		return "obstacle"
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Display is the rendering classification written by the engine. It is never read
// back by search logic.
type Display int

const (
	None Display = iota
	Frontier
	Visited
	Path
)

func (d Display) String() string {
	switch d {
	case None:
		return "none"
	case Frontier:
		return "frontier"
	case Visited:
		return "visited"
	case Path:
		return "path"
	default:
		return fmt.Sprintf("display(%d)", int(d))
	}
}

// State is the combined tag a renderer colours a cell by.
type State int

const (
	StateEmpty State = iota
	StateObstacle
	StateStart
	StateEnd
	StateFrontier
	StateVisited
	StatePath
)

var stateGlyphs = [...]byte{'.', '#', 'S', 'E', 'o', 'x', '*'}

func (s State) String() string {
	return [...]string{"empty", "obstacle", "start", "end", "frontier", "visited", "path"}[s]
}

// Cell is one square of the lattice.
type Cell struct {
	Row, Col int

	role    Role
	Display Display

	adjacent []*Cell
}

// Role returns the part c plays in a search. It changes only through
// Grid.SetRole and Grid.Clear, which keep adjacency staleness tracking honest.
func (c *Cell) Role() Role { return c.role }

// Adjacent returns the neighbours computed by the last RecomputeAllAdjacency.
func (c *Cell) Adjacent() []*Cell { return c.adjacent }

// State folds role and display into a single tag. Obstacle, start and end
// always win over display marks.
func (c *Cell) State() State {
	switch c.role {
	case Obstacle:
		return StateObstacle
	case Start:
		return StateStart
	case End:
		return StateEnd
	}
	switch c.Display {
	case Frontier:
		return StateFrontier
	case Visited:
		return StateVisited
	case Path:
		return StatePath
	}
	return StateEmpty
}

func (c *Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Grid is an N×N lattice of cells. It owns every cell it hands out.
type Grid struct {
	size     int
	cellSize int
	cells    [][]*Cell

	// obstacleRev counts obstacle edits, adjacencyRev is the obstacleRev the
	// current adjacency lists were built from.
	obstacleRev  uint64
	adjacencyRev uint64
	built        bool
}

// New creates an n×n grid of empty cells drawn cellSize pixels wide.
func New(n, cellSize int) *Grid {
	if n < 1 {
		n = 1
	}
	if cellSize < 1 {
		cellSize = 1
	}
	cells := make([][]*Cell, n)
	for r := range cells {
		cells[r] = make([]*Cell, n)
		for c := range cells[r] {
			cells[r][c] = &Cell{Row: r, Col: c}
		}
	}
	return &Grid{size: n, cellSize: cellSize, cells: cells}
}

func (g *Grid) Size() int     { return g.size }
func (g *Grid) CellSize() int { return g.cellSize }

// InBounds reports whether (row, col) lies inside the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// CellAt returns the cell at (row, col).
func (g *Grid) CellAt(row, col int) (*Cell, error) {
	if !g.InBounds(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, row, col, g.size, g.size)
	}
	return g.cells[row][col], nil
}

// Owns reports whether c is one of this grid's cells.
func (g *Grid) Owns(c *Cell) bool {
	return c != nil && g.InBounds(c.Row, c.Col) && g.cells[c.Row][c.Col] == c
}

// Locate maps a pointer position to the owning cell coordinates. The result is
// not bounds checked. The x axis runs along rows.
func (g *Grid) Locate(px, py int) (row, col int) {
	return px / g.cellSize, py / g.cellSize
}

// Cells visits every cell in row-major order until fn returns false.
func (g *Grid) Cells(fn func(*Cell) bool) {
	for _, row := range g.cells {
		for _, c := range row {
			if !fn(c) {
				return
			}
		}
	}
}

// SetRole changes the role of c. Keeping a single start and a single end is
// the caller's job.
func (g *Grid) SetRole(c *Cell, role Role) error {
	if !g.Owns(c) {
		return fmt.Errorf("%w: %v is not part of this grid", ErrOutOfBounds, c)
	}
	if c.role == role {
		return nil
	}
	if c.role == Obstacle || role == Obstacle {
		g.obstacleRev++
	}
	c.role = role
	return nil
}

// Clear resets c to an empty, unmarked cell.
func (g *Grid) Clear(c *Cell) error {
	if err := g.SetRole(c, Empty); err != nil {
		return err
	}
	c.Display = None
	return nil
}

// ResetDisplay wipes every display mark left by a previous search.
func (g *Grid) ResetDisplay() {
	g.Cells(func(c *Cell) bool {
		c.Display = None
		return true
	})
}

// String renders the grid one row per line.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.size * (g.size + 1))
	for _, row := range g.cells {
		for _, c := range row {
			b.WriteByte(stateGlyphs[c.State()])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
