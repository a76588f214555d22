package astar

import "github.com/pdrpinto/gridastar/grid"

// PriorityQueueItem is one open-set entry. Seq is assigned at push time and
// breaks FCost ties in favour of the earliest queued cell.
type PriorityQueueItem struct {
	Cell         *grid.Cell
	GScore       float64
	FCost        float64
	Seq          uint64
	IndexInQueue int
}

// PriorityQueue is a min-heap on (FCost, Seq) for use with container/heap.
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }

func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Seq < queue[j].Seq
}

func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
