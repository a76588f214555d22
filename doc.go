// Package astar finds minimum-cost paths on a grid.Grid with 8-directional
// movement.
//
// It exposes two main entry points:
//
//   - FindPath: run the search to completion and get a Result.
//   - Stepper: advance the search one expansion at a time to drive UIs or debugging tools.
//
// Orthogonal moves cost 1 and diagonal moves cost DiagonalCost. The open set is
// ordered by f-score with insertion order as the tie-break, so the same grid
// always yields the same path and the same sequence of step events. While it
// runs the search marks cells Frontier, Visited and Path for renderers; start
// and end are never marked.
package astar
