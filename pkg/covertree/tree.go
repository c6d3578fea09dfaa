// Package covertree implements a concurrent, in-memory scapegoat-style
// cover tree: a hierarchical, level-indexed spatial index over points in a
// real-valued vector space under the Euclidean metric. It supports
// insertion and a family of branch-and-bound proximity queries (nearest
// neighbor, k-nearest neighbors, beam-limited k-NN, range search, and
// furthest neighbor) under concurrent access from many reader/writer
// goroutines.
package covertree

import (
	"sync"
	"sync/atomic"
)

// DefaultBase is the default scale factor between adjacent tree levels.
const DefaultBase = 1.3

// Unbounded, when used as TreeOptions.TruncateLevel, means the tree may
// descend to arbitrary depth. Any other value is a relative level floor:
// an insertion stops descending at a node TruncateLevel levels below the
// root's level at the time of insertion and attaches the new point as that
// node's child, without checking it against that node's other children.
// New nodes therefore sit at most TruncateLevel+1 levels below the root
// that was current when they were inserted (see insert.go).
const Unbounded = int(-1 << 31)

// TreeOptions configures a new Tree. The zero value is not valid on its
// own; use DefaultOptions to get sane defaults and override individual
// fields, the same shape tur/pkg/hnsw.DefaultConfig uses.
type TreeOptions struct {
	// Base is the scale factor between levels; must be > 1.
	Base float64
	// TruncateLevel is the relative depth floor below the root, or
	// Unbounded.
	TruncateLevel int
}

// DefaultOptions returns TreeOptions with Base = DefaultBase and no depth
// floor.
func DefaultOptions() TreeOptions {
	return TreeOptions{
		Base:          DefaultBase,
		TruncateLevel: Unbounded,
	}
}

// Tree is the cover tree container. It exclusively owns root and,
// transitively, every Node reachable from it. Queries take the global
// read lock for their duration; insertions take it briefly to raise the
// root, then descend using per-node locks (see insert.go).
type Tree struct {
	globalLock sync.RWMutex // global_lock: root identity, scale extrema

	root *Node
	pt   *powerTable
	base float64

	dim           int
	truncateLevel int

	minScale int64 // atomic
	maxScale int64 // atomic
	n        uint64 // atomic

	nextID uint64 // atomic

	uidMu sync.Mutex
	uids  map[string]struct{}

	metrics *Metrics
}

// NewEmpty creates an empty tree for points of the given dimension. The
// first call to Insert seeds the root.
func NewEmpty(dim int, opts TreeOptions) *Tree {
	return &Tree{
		pt:            newPowerTable(opts.Base),
		base:          opts.Base,
		dim:           dim,
		truncateLevel: opts.TruncateLevel,
		uids:          make(map[string]struct{}),
	}
}

// NewFromPoint creates a single-node tree whose root is p at level 0.
func NewFromPoint(p Point, uid string, extProp []byte, opts TreeOptions) *Tree {
	t := NewEmpty(p.Dim(), opts)
	root := newNode(p, 0, 0, uid, extProp)
	t.root = root
	t.uids[uid] = struct{}{}
	atomic.StoreUint64(&t.nextID, 1)
	atomic.StoreUint64(&t.n, 1)
	atomic.StoreInt64(&t.minScale, 0)
	atomic.StoreInt64(&t.maxScale, 0)
	return t
}

// Dim returns the tree's configured point dimension.
func (t *Tree) Dim() int { return t.dim }

// Base returns the tree's scale factor.
func (t *Tree) Base() float64 { return t.base }

// Len returns the number of points currently in the tree.
func (t *Tree) Len() int {
	return int(atomic.LoadUint64(&t.n))
}

// MinScale returns the most-negative level currently materialized. It is
// a hint for power-table sizing, not authoritative for traversal
// correctness.
func (t *Tree) MinScale() int { return int(atomic.LoadInt64(&t.minScale)) }

// MaxScale returns the most-positive level currently materialized.
func (t *Tree) MaxScale() int { return int(atomic.LoadInt64(&t.maxScale)) }

// Root returns the current root node, or nil if the tree is empty. The
// returned pointer is a non-owning reference valid only while the Tree is
// not destroyed; this tree never deletes nodes, so in practice it remains
// valid for the Tree's lifetime.
func (t *Tree) Root() *Node {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()
	return t.root
}

// SetMetrics attaches a Metrics instrumentation hook. It is optional; a
// Tree with no Metrics attached behaves identically, just without
// Prometheus counters/histograms being updated.
func (t *Tree) SetMetrics(m *Metrics) {
	t.metrics = m
}

func (t *Tree) casMinScale(level int) {
	for {
		cur := atomic.LoadInt64(&t.minScale)
		if int64(level) >= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&t.minScale, cur, int64(level)) {
			return
		}
	}
}

func (t *Tree) casMaxScale(level int) {
	for {
		cur := atomic.LoadInt64(&t.maxScale)
		if int64(level) <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&t.maxScale, cur, int64(level)) {
			return
		}
	}
}

func (t *Tree) allocID() uint64 {
	return atomic.AddUint64(&t.nextID, 1) - 1
}
