package astar

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/internal"
	"github.com/sirupsen/logrus"
)

type phase int

const (
	phaseExpanding phase = iota
	phaseReconstructing
	phaseSucceeded
	phaseExhausted
	phaseCancelled
)

// Stepper runs a search one expansion (or one path mark) per Step call. It
// owns all search state; the grid is only read for adjacency and written for
// display marks.
type Stepper struct {
	start, end *grid.Cell
	hook       StepFunc
	log        logrus.FieldLogger
	runID      string

	openSet  PriorityQueue
	queued   map[*grid.Cell]*PriorityQueueItem
	closed   map[*grid.Cell]bool
	gScore   map[*grid.Cell]float64
	fScore   map[*grid.Cell]float64
	cameFrom map[*grid.Cell]*grid.Cell
	nextSeq  uint64

	phase    phase
	trail    []*grid.Cell // end back to start
	trailPos int

	changed    []*grid.Cell
	changedSet map[*grid.Cell]bool
	stepCount  int
	expanded   int
}

// NewStepper validates the endpoints and seeds the open set with start.
func NewStepper(g *grid.Grid, start, end *grid.Cell, options ...Option) (*Stepper, error) {
	if g == nil || start == nil || end == nil {
		return nil, fmt.Errorf("%w: grid, start and end are required", ErrInvalidEndpoints)
	}
	if !g.Owns(start) || !g.Owns(end) {
		return nil, fmt.Errorf("%w: endpoints %v -> %v", grid.ErrOutOfBounds, start, end)
	}
	if start == end {
		return nil, fmt.Errorf("%w: start and end are both %v", ErrInvalidEndpoints, start)
	}
	if start.Role() == grid.Obstacle || end.Role() == grid.Obstacle {
		return nil, fmt.Errorf("%w: %v -> %v crosses an obstacle endpoint", ErrInvalidEndpoints, start, end)
	}
	if g.AdjacencyStale() {
		return nil, ErrStaleAdjacency
	}

	opts := buildOptions(options)
	s := &Stepper{
		start:      start,
		end:        end,
		hook:       opts.StepHook,
		log:        opts.Logger.WithField("run", opts.RunID),
		runID:      opts.RunID,
		openSet:    make(PriorityQueue, 0),
		queued:     make(map[*grid.Cell]*PriorityQueueItem),
		closed:     make(map[*grid.Cell]bool),
		gScore:     map[*grid.Cell]float64{start: 0},
		fScore:     map[*grid.Cell]float64{start: Chebyshev(start, end)},
		cameFrom:   make(map[*grid.Cell]*grid.Cell),
		changedSet: make(map[*grid.Cell]bool),
	}
	heap.Init(&s.openSet)
	s.push(start, 0, s.fScore[start])

	s.log.WithFields(logrus.Fields{
		"start": start.String(),
		"end":   end.String(),
		"size":  g.Size(),
	}).Debug("search started")
	return s, nil
}

// Step advances the search and reports what happened. Once the search is
// over every call returns the same EventDone.
func (s *Stepper) Step(ctx context.Context) (Event, error) {
	if s.finished() {
		return s.doneEvent(), nil
	}
	if err := ctx.Err(); err != nil {
		return s.cancel(err)
	}
	switch s.phase {
	case phaseReconstructing:
		return s.markPath()
	default:
		return s.expand()
	}
}

// Result summarises the search so far.
func (s *Stepper) Result() Result {
	result := Result{
		RunID:    s.runID,
		Expanded: s.expanded,
		Found:    s.phase == phaseSucceeded,
		Changed:  append([]*grid.Cell(nil), s.changed...),
	}
	if result.Found {
		result.Path = internal.Reversed(s.trail)
		result.Steps = len(result.Path) - 1
		result.Cost = s.gScore[s.end]
	}
	return result
}

// GScore returns the best known cost from start to c, +Inf if c was never reached.
func (s *Stepper) GScore(c *grid.Cell) float64 {
	if g, ok := s.gScore[c]; ok {
		return g
	}
	return math.Inf(1)
}

// FScore returns GScore(c) plus the heuristic estimate to end.
func (s *Stepper) FScore(c *grid.Cell) float64 {
	if f, ok := s.fScore[c]; ok {
		return f
	}
	return math.Inf(1)
}

// Queued reports whether c is waiting in the open set.
func (s *Stepper) Queued(c *grid.Cell) bool {
	_, ok := s.queued[c]
	return ok
}

func (s *Stepper) expand() (Event, error) {
	if s.openSet.Len() == 0 {
		s.phase = phaseExhausted
		s.log.WithField("expanded", s.expanded).Debug("open set exhausted")
		return s.doneEvent(), nil
	}

	currentItem := heap.Pop(&s.openSet).(*PriorityQueueItem)
	current := currentItem.Cell
	delete(s.queued, current)
	s.closed[current] = true
	s.expanded++

	if current == s.end {
		s.trail = internal.Backtrack(s.cameFrom, s.end)
		s.trailPos = 1
		s.phase = phaseReconstructing
		s.log.WithFields(logrus.Fields{
			"expanded": s.expanded,
			"cost":     s.gScore[s.end],
		}).Debug("end reached")
		return s.markPath()
	}

	var marked []*grid.Cell
	currentG := s.gScore[current]
	for _, neighbor := range current.Adjacent() {
		if s.closed[neighbor] {
			continue
		}
		tentativeG := currentG + StepCost(current, neighbor)
		if tentativeG >= s.GScore(neighbor) {
			continue
		}
		f := tentativeG + Chebyshev(neighbor, s.end)
		s.cameFrom[neighbor] = current
		s.gScore[neighbor] = tentativeG
		s.fScore[neighbor] = f
		if item, inOpen := s.queued[neighbor]; inOpen {
			item.GScore = tentativeG
			item.FCost = f
			heap.Fix(&s.openSet, item.IndexInQueue)
			continue
		}
		s.push(neighbor, tentativeG, f)
		if s.mark(neighbor, grid.Frontier) {
			marked = append(marked, neighbor)
		}
	}

	s.stepCount++
	event := Event{Kind: EventExpand, Cell: current, Index: s.stepCount, Marked: marked}
	if err := s.notify(event); err != nil {
		return s.cancel(err)
	}
	s.mark(current, grid.Visited)
	return event, nil
}

// markPath marks the next cell of the trail, skipping end and start. The
// event for the last marked cell carries Done.
func (s *Stepper) markPath() (Event, error) {
	if s.trailPos >= len(s.trail)-1 {
		s.succeed()
		return s.doneEvent(), nil
	}
	cell := s.trail[s.trailPos]
	s.trailPos++
	var marked []*grid.Cell
	if s.mark(cell, grid.Path) {
		marked = []*grid.Cell{cell}
	}
	s.stepCount++
	last := s.trailPos >= len(s.trail)-1
	event := Event{Kind: EventPath, Cell: cell, Index: s.stepCount, Marked: marked, Done: last, Found: last}
	if err := s.notify(event); err != nil {
		return s.cancel(err)
	}
	if last {
		s.succeed()
	}
	return event, nil
}

func (s *Stepper) succeed() {
	s.phase = phaseSucceeded
	s.log.WithFields(logrus.Fields{
		"steps":    len(s.trail) - 1,
		"cost":     s.gScore[s.end],
		"expanded": s.expanded,
	}).Info("path found")
}

func (s *Stepper) push(c *grid.Cell, g, f float64) {
	item := &PriorityQueueItem{Cell: c, GScore: g, FCost: f, Seq: s.nextSeq}
	s.nextSeq++
	heap.Push(&s.openSet, item)
	s.queued[c] = item
}

// mark sets a display mark and records the change. Start and end keep their
// own look and are never marked.
func (s *Stepper) mark(c *grid.Cell, d grid.Display) bool {
	if c == s.start || c == s.end || c.Display == d {
		return false
	}
	c.Display = d
	if !s.changedSet[c] {
		s.changedSet[c] = true
		s.changed = append(s.changed, c)
	}
	return true
}

func (s *Stepper) notify(event Event) error {
	if s.hook == nil {
		return nil
	}
	return s.hook(event)
}

func (s *Stepper) cancel(cause error) (Event, error) {
	s.phase = phaseCancelled
	s.log.WithError(cause).WithField("expanded", s.expanded).Warn("search cancelled")
	return Event{Kind: EventDone, Index: s.stepCount, Done: true}, fmt.Errorf("%w: %w", ErrCancelled, cause)
}

func (s *Stepper) finished() bool {
	return s.phase == phaseSucceeded || s.phase == phaseExhausted || s.phase == phaseCancelled
}

func (s *Stepper) doneEvent() Event {
	return Event{
		Kind:  EventDone,
		Index: s.stepCount,
		Done:  true,
		Found: s.phase == phaseSucceeded,
	}
}
