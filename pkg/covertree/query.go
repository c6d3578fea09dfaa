package covertree

import (
	"container/heap"
	"math"
)

// frontier is a min-heap of (node, lowerBound) pairs ordered by
// lowerBound, the branch-and-bound work queue shared by every query in
// this file: a node's lowerBound is the distance from the query point to
// the node's point minus its MaxDistUB, a lower bound on the distance
// from the query point to anything in that node's subtree.
type frontierItem struct {
	node       *Node
	lowerBound float64
}

type frontier []frontierItem

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].lowerBound < f[j].lowerBound }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

func lowerBound(n *Node, q Point) float64 {
	d := n.dist(q)
	lb := d - n.MaxDistUB()
	if lb < 0 {
		return 0
	}
	return lb
}

// NearestNeighbour returns the single closest point to q. It reports
// ErrEmptyTree if the tree has no points.
func (t *Tree) NearestNeighbour(q Point) (*Node, float64, error) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return nil, 0, ErrEmptyTree
	}

	best := t.root
	bestDist := best.dist(q)

	f := &frontier{{node: t.root, lowerBound: lowerBound(t.root, q)}}
	for f.Len() > 0 {
		item := heap.Pop(f).(frontierItem)
		if item.lowerBound > bestDist {
			break
		}
		n := item.node
		d := n.dist(q)
		if d < bestDist {
			bestDist = d
			best = n
		}
		for _, c := range n.Children() {
			lb := lowerBound(c, q)
			if lb <= bestDist {
				heap.Push(f, frontierItem{node: c, lowerBound: lb})
			}
		}
	}
	return best, bestDist, nil
}

// NearestNeighbourTrace behaves like NearestNeighbour but also returns
// the sequence of nodes visited, in visitation order, for diagnostics and
// testing of the branch-and-bound pruning itself.
func (t *Tree) NearestNeighbourTrace(q Point) (*Node, float64, []*Node, error) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return nil, 0, nil, ErrEmptyTree
	}

	var trace []*Node
	best := t.root
	bestDist := best.dist(q)

	f := &frontier{{node: t.root, lowerBound: lowerBound(t.root, q)}}
	for f.Len() > 0 {
		item := heap.Pop(f).(frontierItem)
		if item.lowerBound > bestDist {
			break
		}
		n := item.node
		trace = append(trace, n)
		d := n.dist(q)
		if d < bestDist {
			bestDist = d
			best = n
		}
		for _, c := range n.Children() {
			lb := lowerBound(c, q)
			if lb <= bestDist {
				heap.Push(f, frontierItem{node: c, lowerBound: lb})
			}
		}
	}
	return best, bestDist, trace, nil
}

// neighbour pairs a node with its distance to the query point, for the
// k-NN result heaps below.
type Neighbour struct {
	Node *Node
	Dist float64
}

// knnHeap is a bounded max-heap on Dist, used to keep the current k best
// candidates with O(log k) eviction of the worst one.
type knnHeap []Neighbour

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return h[i].Dist > h[j].Dist }
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(Neighbour)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KNearestNeighbours returns up to k points nearest to q, sorted nearest
// first. If the tree has fewer than k points, it returns all of them.
func (t *Tree) KNearestNeighbours(q Point, k int) ([]Neighbour, error) {
	return t.kNearestNeighbours(q, k, math.MaxInt32)
}

// KNearestNeighboursBeam behaves like KNearestNeighbours but, each time a
// node is expanded, pushes at most beamWidth of its qualifying children
// (those with the smallest lower bounds) onto the frontier, trading recall
// for bounded work on pathologically bushy trees. The cap applies per
// expanded node; the number of frontier entries per level is not capped.
func (t *Tree) KNearestNeighboursBeam(q Point, k int, beamWidth int) ([]Neighbour, error) {
	return t.kNearestNeighbours(q, k, beamWidth)
}

func (t *Tree) kNearestNeighbours(q Point, k int, beamWidth int) ([]Neighbour, error) {
	if k <= 0 {
		return nil, nil
	}
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return nil, ErrEmptyTree
	}

	results := &knnHeap{}
	worstAccepted := func() float64 {
		if results.Len() < k {
			return math.Inf(1)
		}
		return (*results)[0].Dist
	}
	// Promoted root copies share their original's UID; each point is
	// reported once.
	seen := map[string]bool{}

	f := &frontier{{node: t.root, lowerBound: lowerBound(t.root, q)}}
	for f.Len() > 0 {
		item := heap.Pop(f).(frontierItem)
		if item.lowerBound > worstAccepted() {
			break
		}
		n := item.node
		d := n.dist(q)
		if d < worstAccepted() && !seen[n.uid] {
			seen[n.uid] = true
			heap.Push(results, Neighbour{Node: n, Dist: d})
			if results.Len() > k {
				heap.Pop(results)
			}
		}

		type candidate struct {
			node *Node
			lb   float64
		}
		var candidates []candidate
		for _, c := range n.Children() {
			lb := lowerBound(c, q)
			if lb <= worstAccepted() {
				candidates = append(candidates, candidate{node: c, lb: lb})
			}
		}
		if len(candidates) > beamWidth {
			// Keep the beamWidth most promising (smallest lower bound)
			// candidates; this is the only place recall is traded away.
			for i := 0; i < beamWidth; i++ {
				minIdx := i
				for j := i + 1; j < len(candidates); j++ {
					if candidates[j].lb < candidates[minIdx].lb {
						minIdx = j
					}
				}
				candidates[i], candidates[minIdx] = candidates[minIdx], candidates[i]
			}
			candidates = candidates[:beamWidth]
		}
		for _, c := range candidates {
			heap.Push(f, frontierItem{node: c.node, lowerBound: c.lb})
		}
	}

	out := make([]Neighbour, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(Neighbour)
	}
	return out, nil
}

// RangeNeighbours returns every point within radius r of q, in no
// particular order.
func (t *Tree) RangeNeighbours(q Point, r float64) ([]Neighbour, error) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return nil, ErrEmptyTree
	}

	var out []Neighbour
	seen := map[string]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		d := n.dist(q)
		if d <= r && !seen[n.uid] {
			seen[n.uid] = true
			out = append(out, Neighbour{Node: n, Dist: d})
		}
		for _, c := range n.Children() {
			if lowerBound(c, q) <= r {
				walk(c)
			}
		}
	}
	walk(t.root)
	return out, nil
}

// FurthestNeighbour returns the point farthest from q currently in the
// tree, using each subtree's MaxDistUB as an upper-bound heuristic to
// prune branches that cannot beat the current best.
func (t *Tree) FurthestNeighbour(q Point) (*Node, float64, error) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return nil, 0, ErrEmptyTree
	}

	best := t.root
	bestDist := best.dist(q)

	var walk func(n *Node)
	walk = func(n *Node) {
		d := n.dist(q)
		if d > bestDist {
			bestDist = d
			best = n
		}
		for _, c := range n.Children() {
			ub := c.dist(q) + c.MaxDistUB()
			if ub >= bestDist {
				walk(c)
			}
		}
	}
	walk(t.root)
	return best, bestDist, nil
}
