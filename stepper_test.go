package astar

import (
	"container/heap"
	"context"
	"math"
	"testing"

	"github.com/pdrpinto/gridastar/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openGrid(t *testing.T, n int, start, end [2]int) (*grid.Grid, *grid.Cell, *grid.Cell) {
	t.Helper()
	g := grid.New(n, 1)
	s, err := g.CellAt(start[0], start[1])
	require.NoError(t, err)
	e, err := g.CellAt(end[0], end[1])
	require.NoError(t, err)
	require.NoError(t, g.SetRole(s, grid.Start))
	require.NoError(t, g.SetRole(e, grid.End))
	g.RecomputeAllAdjacency()
	return g, s, e
}

func TestStepper_FirstStepExpandsStart(t *testing.T) {
	g, start, end := openGrid(t, 5, [2]int{0, 0}, [2]int{4, 4})
	s, err := NewStepper(g, start, end)
	require.NoError(t, err)

	assert.True(t, s.Queued(start))
	assert.Equal(t, 0.0, s.GScore(start))
	assert.Equal(t, 4.0, s.FScore(start))

	ev, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EventExpand, ev.Kind)
	assert.Equal(t, start, ev.Cell)
	assert.Equal(t, 1, ev.Index)
	assert.Len(t, ev.Marked, 3)
	assert.False(t, ev.Done)

	assert.False(t, s.Queued(start))
	diag, _ := g.CellAt(1, 1)
	right, _ := g.CellAt(0, 1)
	far, _ := g.CellAt(3, 3)
	assert.True(t, s.Queued(diag))
	assert.Equal(t, DiagonalCost, s.GScore(diag))
	assert.Equal(t, DiagonalCost+3, s.FScore(diag))
	assert.Equal(t, OrthogonalCost, s.GScore(right))
	assert.True(t, math.IsInf(s.GScore(far), 1))
	assert.True(t, math.IsInf(s.FScore(far), 1))
	assert.Equal(t, grid.Frontier, diag.Display)
	assert.Equal(t, grid.None, start.Display)
}

func TestStepper_RunsToDoneAndStaysDone(t *testing.T) {
	g, start, end := openGrid(t, 5, [2]int{0, 0}, [2]int{4, 4})
	s, err := NewStepper(g, start, end)
	require.NoError(t, err)

	var last Event
	for i := 0; i < 100 && !last.Done; i++ {
		last, err = s.Step(context.Background())
		require.NoError(t, err)
	}
	require.True(t, last.Done)
	assert.True(t, last.Found)
	assert.Equal(t, EventPath, last.Kind)

	again, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EventDone, again.Kind)
	assert.True(t, again.Found)
	assert.Equal(t, last.Index, again.Index)

	result := s.Result()
	assert.True(t, result.Found)
	assert.Equal(t, 4, result.Steps)
	assert.Equal(t, s.GScore(end), result.Cost)
}

func TestStepper_ExhaustedReportsDoneWithoutError(t *testing.T) {
	g := grid.New(3, 1)
	start, _ := g.CellAt(0, 0)
	end, _ := g.CellAt(2, 2)
	for _, p := range [][2]int{{0, 1}, {1, 0}, {1, 1}} {
		c, _ := g.CellAt(p[0], p[1])
		require.NoError(t, g.SetRole(c, grid.Obstacle))
	}
	g.RecomputeAllAdjacency()

	s, err := NewStepper(g, start, end)
	require.NoError(t, err)

	ev, err := s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EventExpand, ev.Kind)

	ev, err = s.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EventDone, ev.Kind)
	assert.False(t, ev.Found)
	assert.False(t, s.Result().Found)
}

func TestStepper_DecreaseKeyKeepsOneQueueEntry(t *testing.T) {
	// Seed an expensive entry for (2,2) by hand and let expanding (1,1)
	// improve it.
	g, start, end := openGrid(t, 4, [2]int{0, 0}, [2]int{3, 3})
	s, err := NewStepper(g, start, end)
	require.NoError(t, err)

	target, _ := g.CellAt(2, 2)
	s.gScore[target] = 10
	s.push(target, 10, 10+Chebyshev(target, end))
	before := s.openSet.Len()

	via, _ := g.CellAt(1, 1)
	s.gScore[via] = DiagonalCost
	s.closed[start] = true
	heap.Remove(&s.openSet, s.queued[start].IndexInQueue)
	delete(s.queued, start)
	s.push(via, DiagonalCost, DiagonalCost+2)

	ev, err := s.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, via, ev.Cell)

	assert.Equal(t, 2*DiagonalCost, s.GScore(target))
	assert.Equal(t, 2*DiagonalCost+1, s.queued[target].FCost)
	assert.Equal(t, uint64(1), s.queued[target].Seq, "decrease-key keeps the original sequence number")

	count := 0
	for _, item := range s.openSet {
		if item.Cell == target {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, before-1+len(via.Adjacent())-2, s.openSet.Len())
}

func TestPriorityQueue_TieBreaksOnInsertionOrder(t *testing.T) {
	queue := make(PriorityQueue, 0)
	heap.Init(&queue)
	cells := make([]*grid.Cell, 5)
	for i := range cells {
		cells[i] = &grid.Cell{Row: i}
	}
	heap.Push(&queue, &PriorityQueueItem{Cell: cells[0], FCost: 3, Seq: 0})
	heap.Push(&queue, &PriorityQueueItem{Cell: cells[1], FCost: 2, Seq: 1})
	heap.Push(&queue, &PriorityQueueItem{Cell: cells[2], FCost: 3, Seq: 2})
	heap.Push(&queue, &PriorityQueueItem{Cell: cells[3], FCost: 2, Seq: 3})
	heap.Push(&queue, &PriorityQueueItem{Cell: cells[4], FCost: 1, Seq: 4})

	var order []int
	for queue.Len() > 0 {
		item := heap.Pop(&queue).(*PriorityQueueItem)
		assert.Equal(t, -1, item.IndexInQueue)
		order = append(order, item.Cell.Row)
	}
	assert.Equal(t, []int{4, 1, 3, 0, 2}, order)
}

func TestPriorityQueue_FixAfterDecrease(t *testing.T) {
	queue := make(PriorityQueue, 0)
	items := []*PriorityQueueItem{
		{Cell: &grid.Cell{Row: 0}, FCost: 5, Seq: 0},
		{Cell: &grid.Cell{Row: 1}, FCost: 6, Seq: 1},
		{Cell: &grid.Cell{Row: 2}, FCost: 7, Seq: 2},
	}
	for _, item := range items {
		heap.Push(&queue, item)
	}
	for i, item := range queue {
		assert.Equal(t, i, item.IndexInQueue)
	}

	items[2].FCost = 1
	heap.Fix(&queue, items[2].IndexInQueue)
	assert.Equal(t, items[2], heap.Pop(&queue))
	assert.Equal(t, items[0], heap.Pop(&queue))
}
