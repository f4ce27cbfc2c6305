package routing

import (
	"container/heap"

	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

type queueItem struct {
	node     topology.NodeID
	distance uint64
	seq      uint64 // insertion order, breaks distance ties
}

// itemHeap orders by ascending distance, then by insertion
type itemHeap []queueItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	return h[i].seq < h[j].seq
}
func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(queueItem))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// minQueue is a min-priority queue of nodes keyed by accumulated distance
type minQueue struct {
	items itemHeap
	seq   uint64
}

func (q *minQueue) Push(node topology.NodeID, distance uint64) {
	heap.Push(&q.items, queueItem{node: node, distance: distance, seq: q.seq})
	q.seq++
}

func (q *minQueue) Pop() (topology.NodeID, uint64, bool) {
	if len(q.items) == 0 {
		return 0, 0, false
	}
	item := heap.Pop(&q.items).(queueItem)
	return item.node, item.distance, true
}

func (q *minQueue) Len() int { return len(q.items) }
