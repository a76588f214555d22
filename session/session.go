// Package session holds the editable state of one interactive pathfinding
// window: the grid, the chosen start and end, and whether a search is running.
// Pointer-driven front ends translate clicks into Primary and Secondary calls
// and key presses into Run and Reset.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/layout"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRows is the grid side used when Config.Rows is zero.
	DefaultRows = 50
	// DefaultScreenSize is the canvas side in pixels used when Config.ScreenSize is zero.
	DefaultScreenSize = 800
)

// ErrBusy is returned for edits and runs attempted while a search is running.
var ErrBusy = errors.New("session: search in progress")

// Config holds everything needed to create a Session.
type Config struct {
	Rows       int
	ScreenSize int // pixels along one side of the drawable area
	Logger     logrus.FieldLogger
}

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.ScreenSize == 0 {
		cfg.ScreenSize = DefaultScreenSize
	}
	if cfg.Rows < 0 || cfg.Rows > layout.MaxRows {
		return nil, fmt.Errorf("session: rows must be in [1, %d], got %d", layout.MaxRows, cfg.Rows)
	}
	if cfg.ScreenSize < cfg.Rows {
		return nil, fmt.Errorf("session: screen size %d is too small for %d rows", cfg.ScreenSize, cfg.Rows)
	}
	if cfg.Logger == nil {
		quiet := logrus.New()
		quiet.Out = io.Discard
		cfg.Logger = quiet
	}
	return &cfg, nil
}

// CellSize is the pixel width of one cell.
func (c *Config) CellSize() int { return c.ScreenSize / c.Rows }

// Session is safe for use from multiple goroutines; only one search runs at a
// time. Cell contents may be read concurrently with a search only through View.
type Session struct {
	mu sync.Mutex
	// cells guards roles and display marks of the current grid. Lock order is
	// mu then cells.
	cells   sync.RWMutex
	cfg     *Config
	log     logrus.FieldLogger
	grid    *grid.Grid
	start   *grid.Cell
	end     *grid.Cell
	running bool
}

// New creates a session with an empty grid.
func New(cfg Config) (*Session, error) {
	c, err := NewConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:  c,
		log:  c.Logger,
		grid: grid.New(c.Rows, c.CellSize()),
	}, nil
}

// Grid returns the current grid. It is replaced by Reset and Load. While a
// search may be running, read cells through View instead.
func (s *Session) Grid() *grid.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// Start returns the start cell, or nil if none is placed.
func (s *Session) Start() *grid.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start
}

// End returns the end cell, or nil if none is placed.
func (s *Session) End() *grid.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end
}

// View calls fn with the current grid while no search step is writing to it.
// fn must not call back into the session.
func (s *Session) View(fn func(g *grid.Grid)) {
	g := s.Grid()
	s.cells.RLock()
	defer s.cells.RUnlock()
	fn(g)
}

// Running reports whether a search is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Primary applies a left click at (row, col): the first click places start,
// the second places end, later clicks add obstacles. Clicks on the current
// start or end are ignored.
func (s *Session) Primary(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.cells.Lock()
	defer s.cells.Unlock()
	cell, err := s.grid.CellAt(row, col)
	if err != nil {
		return err
	}
	switch {
	case s.start == nil && cell != s.end:
		s.start = cell
		return s.grid.SetRole(cell, grid.Start)
	case s.end == nil && cell != s.start:
		s.end = cell
		return s.grid.SetRole(cell, grid.End)
	case cell != s.start && cell != s.end:
		return s.grid.SetRole(cell, grid.Obstacle)
	}
	return nil
}

// Secondary applies a right click at (row, col): the cell is cleared and
// forgotten if it was start or end.
func (s *Session) Secondary(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.cells.Lock()
	defer s.cells.Unlock()
	cell, err := s.grid.CellAt(row, col)
	if err != nil {
		return err
	}
	if err := s.grid.Clear(cell); err != nil {
		return err
	}
	switch cell {
	case s.start:
		s.start = nil
	case s.end:
		s.end = nil
	}
	return nil
}

// PrimaryAt is Primary for a pointer position in pixels.
func (s *Session) PrimaryAt(px, py int) error {
	row, col := s.Grid().Locate(px, py)
	return s.Primary(row, col)
}

// SecondaryAt is Secondary for a pointer position in pixels.
func (s *Session) SecondaryAt(px, py int) error {
	row, col := s.Grid().Locate(px, py)
	return s.Secondary(row, col)
}

// Reset replaces the grid with a fresh empty one.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.grid = grid.New(s.cfg.Rows, s.cfg.CellSize())
	s.start, s.end = nil, nil
	return nil
}

// Load replaces the grid with one built from l. The cell size is refitted to
// the configured screen size; the layout's cell_size is ignored.
func (s *Session) Load(l *layout.Layout) error {
	fitted := *l
	fitted.CellSize = max(1, s.cfg.ScreenSize/max(1, l.Rows))
	g, start, end, err := fitted.Build()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.grid, s.start, s.end = g, start, end
	s.log.WithFields(logrus.Fields{"rows": l.Rows, "obstacles": len(l.Obstacles)}).Info("layout loaded")
	return nil
}

// Run clears marks from any previous search, rebuilds adjacency and searches
// from start to end. hook may be nil. Edits made from inside hook fail with
// ErrBusy.
func (s *Session) Run(ctx context.Context, hook astar.StepFunc) (astar.Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return astar.Result{}, ErrBusy
	}
	if s.start == nil || s.end == nil {
		s.mu.Unlock()
		return astar.Result{}, fmt.Errorf("%w: place start and end first", astar.ErrInvalidEndpoints)
	}
	s.running = true
	g, start, end := s.grid, s.start, s.end
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	// Search steps write display marks under cells; hook calls run without it
	// so the hook may use View.
	s.cells.Lock()
	g.ResetDisplay()
	g.RecomputeAllAdjacency()
	unlocked := func(ev astar.Event) error {
		s.cells.Unlock()
		defer s.cells.Lock()
		if hook == nil {
			return nil
		}
		return hook(ev)
	}

	runID := uuid.NewString()
	log := s.log.WithField("run", runID)
	result, err := astar.FindPath(ctx, g, start, end,
		astar.WithStepHook(unlocked),
		astar.WithLogger(s.log),
		astar.WithRunID(runID),
	)
	s.cells.Unlock()
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{"steps": result.Steps, "cost": result.Cost}).Info("run succeeded")
	case errors.Is(err, astar.ErrNoPath):
		log.WithField("expanded", result.Expanded).Info("run found no path")
	default:
		log.WithError(err).Warn("run failed")
	}
	return result, err
}
