package covertree

import (
	"fmt"
	"io"
	"sort"
)

// CalcMaxDist recomputes MaxDistUB for every node in the tree via a
// single post-order pass: a node's bound is the maximum over its
// children of (distance to child + child's own bound). It must be called
// after bulk construction and may be called at any other time to refresh
// the bounds queries rely on; it is not kept incrementally up to date by
// Insert, since doing so would require re-walking every ancestor on
// every insertion.
func (t *Tree) CalcMaxDist() {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return
	}
	calcMaxDist(t.root)
}

func calcMaxDist(n *Node) float64 {
	var maxDist float64
	for _, c := range n.children {
		d := n.dist(c.point) + calcMaxDist(c)
		if d > maxDist {
			maxDist = d
		}
	}
	n.lock.Lock()
	n.maxdistUB = maxDist
	n.lock.Unlock()
	return maxDist
}

// CheckCovering walks the whole tree and reports the first covering or
// separation invariant violation it finds, or nil if none exists. It is
// a diagnostic, not something Insert relies on to stay
// correct; it exists to validate the structure after deserialization or
// in tests.
func (t *Tree) CheckCovering() error {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return nil
	}
	return checkCovering(t.pt, t.root)
}

func checkCovering(pt *powerTable, n *Node) error {
	cd := pt.covdist(n.level)
	for i, c := range n.children {
		if c.level != n.level-1 {
			return fmt.Errorf("covertree: node %d has child %d at level %d, want %d", n.id, c.id, c.level, n.level-1)
		}
		d := n.dist(c.point)
		if d > cd {
			return fmt.Errorf("covertree: covering violated: node %d to child %d distance %v exceeds covdist %v", n.id, c.id, d, cd)
		}
		for j, other := range n.children {
			if i == j {
				continue
			}
			if c.dist(other.point) < pt.sepdist(n.level) {
				return fmt.Errorf("covertree: separation violated between children %d and %d of node %d", c.id, other.id, n.id)
			}
		}
		if err := checkCovering(pt, c); err != nil {
			return err
		}
	}
	return nil
}

// BestInitialPoints picks the UIDs of up to k distinct points likely to
// make good cluster seeds: it scans at most 4k nodes breadth-first from
// the root and returns the UIDs of the shallowest ones first, each UID at
// most once (promoted root copies share their original's UID). It is a
// heuristic used by callers doing
// downstream clustering, not something the tree itself relies on. UIDs,
// not raw points, are returned since UID is the caller-facing identity
// for a node.
func (t *Tree) BestInitialPoints(k int) []string {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil || k <= 0 {
		return nil
	}

	type levelNode struct {
		node  *Node
		depth int
	}
	queue := []levelNode{{node: t.root, depth: 0}}
	var byDepth []levelNode
	for len(queue) > 0 && len(byDepth) < k*4 {
		cur := queue[0]
		queue = queue[1:]
		byDepth = append(byDepth, cur)
		for _, c := range cur.node.children {
			queue = append(queue, levelNode{node: c, depth: cur.depth + 1})
		}
	}
	sort.Slice(byDepth, func(i, j int) bool { return byDepth[i].depth < byDepth[j].depth })

	seen := make(map[string]bool, k)
	out := make([]string, 0, k)
	for _, ln := range byDepth {
		if len(out) == k {
			break
		}
		if seen[ln.node.uid] {
			continue
		}
		seen[ln.node.uid] = true
		out = append(out, ln.node.uid)
	}
	return out
}

// PrintStats writes a one-line human-readable summary of the tree's
// size and level span to w.
func (t *Tree) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "covertree: n=%d base=%v minScale=%d maxScale=%d\n",
		t.Len(), t.base, t.MinScale(), t.MaxScale())
}

// PrintLevels writes the count of nodes at each level, from the root's
// level down to the deepest leaf, one line per level.
func (t *Tree) PrintLevels(w io.Writer) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return
	}
	counts := map[int]int{}
	var walk func(n *Node)
	walk = func(n *Node) {
		counts[n.level]++
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)

	levels := make([]int, 0, len(counts))
	for lvl := range counts {
		levels = append(levels, lvl)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	for _, lvl := range levels {
		fmt.Fprintf(w, "level %d: %d nodes\n", lvl, counts[lvl])
	}
}

// PrintDegrees writes a histogram of child counts across all nodes:
// "degree K: N nodes" for each distinct number of children K observed.
func (t *Tree) PrintDegrees(w io.Writer) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		return
	}
	counts := map[int]int{}
	var walk func(n *Node)
	walk = func(n *Node) {
		counts[len(n.children)]++
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)

	degrees := make([]int, 0, len(counts))
	for d := range counts {
		degrees = append(degrees, d)
	}
	sort.Ints(degrees)
	for _, d := range degrees {
		fmt.Fprintf(w, "degree %d: %d nodes\n", d, counts[d])
	}
}

// DumpTree writes an indented, human-readable rendering of the tree
// structure to w, one node per line, for ad hoc debugging.
func (t *Tree) DumpTree(w io.Writer) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	if t.root == nil {
		fmt.Fprintln(w, "(empty)")
		return
	}
	dumpNode(w, t.root, 0)
}

func dumpNode(w io.Writer, n *Node, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "- uid=%s level=%d maxdistUB=%v\n", n.uid, n.level, n.MaxDistUB())
	for _, c := range n.children {
		dumpNode(w, c, depth+1)
	}
}
