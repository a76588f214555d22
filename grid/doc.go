// Package grid models the square lattice searched by package astar.
//
// Each cell carries a Role (empty, obstacle, start, end) that the search reads
// and a Display mark (frontier, visited, path) that the search writes for
// renderers. Adjacency is cached per cell and rebuilt wholesale with
// RecomputeAllAdjacency; the grid tracks whether obstacle edits have made the
// cache stale.
package grid
