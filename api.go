package astar

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/pdrpinto/gridastar/grid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidEndpoints means start or end is missing, they are the same
	// cell, or one of them is an obstacle.
	ErrInvalidEndpoints = errors.New("astar: invalid endpoints")
	// ErrStaleAdjacency means obstacles changed after the last
	// RecomputeAllAdjacency, or adjacency was never computed.
	ErrStaleAdjacency = errors.New("astar: adjacency is stale")
	// ErrNoPath is the negative result: the open set ran dry before reaching end.
	ErrNoPath = errors.New("astar: no path")
	// ErrCancelled is returned when the step hook or the context stops a search.
	ErrCancelled = errors.New("astar: search cancelled")
)

// EventKind tells a step hook what just happened.
type EventKind int

const (
	// EventExpand follows the expansion of Event.Cell. Unless it is the start,
	// the cell is marked Visited once the hook returns.
	EventExpand EventKind = iota
	// EventPath follows marking Event.Cell as part of the final path.
	EventPath
	// EventDone is returned by Stepper.Step once the search has finished.
	// Hooks never receive it.
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventExpand:
		return "expand"
	case EventPath:
		return "path"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event describes one step of a search.
type Event struct {
	Kind  EventKind
	Cell  *grid.Cell
	Index int
	// Marked lists cells whose display mark changed during this step.
	Marked []*grid.Cell
	Done   bool
	Found  bool
}

// StepFunc is called after every expansion and every path mark. Returning a
// non-nil error stops the search; marks made so far are kept.
type StepFunc func(Event) error

// Result contains the outcome of a search
type Result struct {
	RunID string
	// Path runs from start to end inclusive. Empty unless Found.
	Path     []*grid.Cell
	Cost     float64
	Steps    int
	Expanded int
	Found    bool
	// Changed lists every cell whose display mark changed, in first-change order.
	Changed []*grid.Cell
}

// Options defines parameters for the search.
type Options struct {
	StepHook StepFunc
	Logger   logrus.FieldLogger
	RunID    string
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithStepHook installs a progress callback.
func WithStepHook(hook StepFunc) Option {
	return func(options *Options) { options.StepHook = hook }
}

// WithLogger sets the logger used for run diagnostics. Searches are silent
// by default.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithRunID overrides the generated run identifier attached to log entries.
func WithRunID(id string) Option {
	return func(options *Options) { options.RunID = id }
}

func buildOptions(options []Option) Options {
	searchOptions := Options{}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.Logger == nil {
		quiet := logrus.New()
		quiet.Out = io.Discard
		searchOptions.Logger = quiet
	}
	if searchOptions.RunID == "" {
		searchOptions.RunID = uuid.NewString()
	}
	return searchOptions
}

// FindPath runs A* from start to end on g until it succeeds, exhausts the open
// set, or is cancelled. Adjacency must be current.
//
// On success the returned Result holds the path and its cost. When no path
// exists the error is ErrNoPath and Result.Found is false; other errors mean
// the search was misused or stopped.
func FindPath(
	ctx context.Context,
	g *grid.Grid,
	start, end *grid.Cell,
	options ...Option,
) (Result, error) {
	stepper, err := NewStepper(g, start, end, options...)
	if err != nil {
		return Result{}, err
	}
	for {
		event, err := stepper.Step(ctx)
		if err != nil {
			return stepper.Result(), err
		}
		if event.Done {
			break
		}
	}
	result := stepper.Result()
	if !result.Found {
		return result, ErrNoPath
	}
	return result, nil
}
