package covertree

import (
	"sync"

	"github.com/ssargent/covertree/pkg/point"
)

// Node is a single vertex of the cover tree. Its point, level, and UID are
// immutable after creation; children, ID, maxdistUB, and ExtProp are
// mutable under lock. lock is a per-node reader/writer latch: readers hold
// it while traversing through the node, writers hold it while adding a
// child (see Tree.Insert for the latch-coupling discipline this enables).
type Node struct {
	lock sync.RWMutex

	point Point
	level int

	children []*Node

	maxdistUB float64

	id      uint64
	uid     string
	extProp []byte
}

// Point is an alias kept local to the package so node.go and tree.go read
// naturally without importing point.Point everywhere; it is the concrete
// vector type stored at each node.
type Point = point.Point

func newNode(p Point, level int, id uint64, uid string, extProp []byte) *Node {
	return &Node{
		point:     p,
		level:     level,
		id:        id,
		uid:       uid,
		extProp:   extProp,
		maxdistUB: 0,
	}
}

// Point returns the vector stored at this node.
func (n *Node) Point() Point { return n.point }

// Level returns the node's level. Larger levels are closer to the root.
func (n *Node) Level() int { return n.level }

// ID returns the node's internal sequence number. It is not guaranteed
// stable across serialization round-trips or structural changes and must
// not be used as a caller-facing identifier; use UID instead.
func (n *Node) ID() uint64 { return n.id }

// UID returns the externally supplied identifier this node was inserted
// with.
func (n *Node) UID() string { return n.uid }

// ExtProp returns the opaque byte string attached to this node, if any.
func (n *Node) ExtProp() []byte { return n.extProp }

// MaxDistUB returns the cached upper bound on the distance from this node
// to any of its descendants. It is 0 until CalcMaxDist has been run.
func (n *Node) MaxDistUB() float64 {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return n.maxdistUB
}

// Children returns a snapshot of this node's current children. The
// returned slice is a copy; mutating it does not affect the tree.
func (n *Node) Children() []*Node {
	n.lock.RLock()
	defer n.lock.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// dist returns the Euclidean distance from this node's point to p.
func (n *Node) dist(p Point) float64 {
	return point.MustDist(n.point, p)
}

// distNode returns the Euclidean distance from this node's point to
// other's point.
func (n *Node) distNode(other *Node) float64 {
	return point.MustDist(n.point, other.point)
}

// addChild creates and appends a new child of this node. The caller must
// already hold n.lock for writing. The returned node is at level-1 with
// maxdistUB 0.
func (n *Node) addChild(p Point, id uint64, uid string, extProp []byte) *Node {
	child := newNode(p, n.level-1, id, uid, extProp)
	n.children = append(n.children, child)
	return child
}

// erase removes the child at position i by swapping it with the last
// child and truncating ("swap-remove"). The caller must already hold
// n.lock for writing. It is not exercised by the insert-only code paths
// in this package but is kept as part of Node's general contract.
func (n *Node) erase(i int) {
	last := len(n.children) - 1
	n.children[i] = n.children[last]
	n.children[last] = nil
	n.children = n.children[:last]
}
