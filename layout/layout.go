// Package layout reads grid scenarios from HCL files.
//
// A layout names the grid size, optional start and end cells, and obstacles
// given either one at a time or as straight/diagonal walls:
//
//	rows      = 20
//	cell_size = 16
//
//	start {
//	  row = 0
//	  col = 0
//	}
//
//	end {
//	  row = 19
//	  col = 19
//	}
//
//	obstacle {
//	  row = 4
//	  col = 4
//	}
//
//	wall {
//	  from = [10, 0]
//	  to   = [10, 15]
//	}
package layout

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pdrpinto/gridastar/grid"
)

const (
	// DefaultCellSize is used when a layout has no cell_size attribute.
	DefaultCellSize = 16
	// MaxRows bounds the side of a layout grid; grids are allocated up front.
	MaxRows = 512
)

// ErrInvalidLayout wraps every semantic problem found in a layout file.
var ErrInvalidLayout = errors.New("layout: invalid layout")

// Point is a (row, col) coordinate.
type Point struct {
	Row, Col int
}

// Layout is a decoded scenario.
type Layout struct {
	Rows      int
	CellSize  int
	Start     *Point
	End       *Point
	Obstacles []Point
}

// hclLayoutFile is the top-level structure of a layout file for decoding.
type hclLayoutFile struct {
	Rows      int        `hcl:"rows"`
	CellSize  *int       `hcl:"cell_size,optional"`
	Start     *hclCell   `hcl:"start,block"`
	End       *hclCell   `hcl:"end,block"`
	Obstacles []*hclCell `hcl:"obstacle,block"`
	Walls     []*hclWall `hcl:"wall,block"`
}

type hclCell struct {
	Row int `hcl:"row"`
	Col int `hcl:"col"`
}

type hclWall struct {
	From []int `hcl:"from"`
	To   []int `hcl:"to"`
}

// Parse decodes a layout from HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Layout, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse layout %s: %w", filename, diags)
	}
	return decode(file, filename)
}

// LoadFile reads and decodes the layout at path.
func LoadFile(path string) (*Layout, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse layout %s: %w", path, diags)
	}
	return decode(file, path)
}

func decode(file *hcl.File, filename string) (*Layout, error) {
	var parsed hclLayoutFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode layout %s: %w", filename, diags)
	}
	if parsed.Rows < 1 || parsed.Rows > MaxRows {
		return nil, fmt.Errorf("%w: %s: rows must be in [1, %d], got %d", ErrInvalidLayout, filename, MaxRows, parsed.Rows)
	}

	l := &Layout{Rows: parsed.Rows, CellSize: DefaultCellSize}
	if parsed.CellSize != nil {
		if *parsed.CellSize < 1 {
			return nil, fmt.Errorf("%w: %s: cell_size must be positive, got %d", ErrInvalidLayout, filename, *parsed.CellSize)
		}
		l.CellSize = *parsed.CellSize
	}
	if parsed.Start != nil {
		l.Start = &Point{Row: parsed.Start.Row, Col: parsed.Start.Col}
	}
	if parsed.End != nil {
		l.End = &Point{Row: parsed.End.Row, Col: parsed.End.Col}
	}
	for _, o := range parsed.Obstacles {
		l.Obstacles = append(l.Obstacles, Point{Row: o.Row, Col: o.Col})
	}
	for i, w := range parsed.Walls {
		points, err := expandWall(w, parsed.Rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: wall %d: %w", ErrInvalidLayout, filename, i, err)
		}
		l.Obstacles = append(l.Obstacles, points...)
	}
	if err := l.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidLayout, filename, err)
	}
	return l, nil
}

// expandWall lists the cells of a horizontal, vertical or 45° wall, both ends included.
func expandWall(w *hclWall, rows int) ([]Point, error) {
	if len(w.From) != 2 || len(w.To) != 2 {
		return nil, errors.New("from and to must be [row, col] pairs")
	}
	for _, v := range append(append([]int(nil), w.From...), w.To...) {
		if v < 0 || v >= rows {
			return nil, fmt.Errorf("%v -> %v leaves the %dx%d grid", w.From, w.To, rows, rows)
		}
	}
	dr, dc := w.To[0]-w.From[0], w.To[1]-w.From[1]
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return nil, fmt.Errorf("%v -> %v is neither straight nor diagonal", w.From, w.To)
	}
	n := max(abs(dr), abs(dc))
	points := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, Point{Row: w.From[0] + i*sign(dr), Col: w.From[1] + i*sign(dc)})
	}
	return points, nil
}

func (l *Layout) validate() error {
	if l.Rows < 1 || l.Rows > MaxRows {
		return fmt.Errorf("rows must be in [1, %d], got %d", MaxRows, l.Rows)
	}
	if l.CellSize < 1 {
		return fmt.Errorf("cell_size must be positive, got %d", l.CellSize)
	}
	in := func(p Point) bool { return p.Row >= 0 && p.Row < l.Rows && p.Col >= 0 && p.Col < l.Rows }
	if l.Start != nil && !in(*l.Start) {
		return fmt.Errorf("start %v outside %dx%d", *l.Start, l.Rows, l.Rows)
	}
	if l.End != nil && !in(*l.End) {
		return fmt.Errorf("end %v outside %dx%d", *l.End, l.Rows, l.Rows)
	}
	if l.Start != nil && l.End != nil && *l.Start == *l.End {
		return fmt.Errorf("start and end share %v", *l.Start)
	}
	for _, o := range l.Obstacles {
		if !in(o) {
			return fmt.Errorf("obstacle %v outside %dx%d", o, l.Rows, l.Rows)
		}
		if (l.Start != nil && o == *l.Start) || (l.End != nil && o == *l.End) {
			return fmt.Errorf("obstacle %v overlaps an endpoint", o)
		}
	}
	return nil
}

// Build creates a grid from the layout with adjacency already computed. start
// and end are nil when the layout leaves them out.
func (l *Layout) Build() (g *grid.Grid, start, end *grid.Cell, err error) {
	if err := l.validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	g = grid.New(l.Rows, l.CellSize)
	for _, o := range l.Obstacles {
		if err := setRole(g, o, grid.Obstacle); err != nil {
			return nil, nil, nil, err
		}
	}
	if l.Start != nil {
		if start, err = g.CellAt(l.Start.Row, l.Start.Col); err != nil {
			return nil, nil, nil, err
		}
		_ = g.SetRole(start, grid.Start)
	}
	if l.End != nil {
		if end, err = g.CellAt(l.End.Row, l.End.Col); err != nil {
			return nil, nil, nil, err
		}
		_ = g.SetRole(end, grid.End)
	}
	g.RecomputeAllAdjacency()
	return g, start, end, nil
}

func setRole(g *grid.Grid, p Point, role grid.Role) error {
	c, err := g.CellAt(p.Row, p.Col)
	if err != nil {
		return err
	}
	return g.SetRole(c, role)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
