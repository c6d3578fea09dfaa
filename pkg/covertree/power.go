package covertree

import "math"

// powerBias biases level lookups into a non-negative array index. A tree
// is never expected to span more than +-powerBias levels away from its
// initial root; see powerTable.covdist/powerTable.sepdist for the accessors that hide
// this detail from callers.
const powerBias = 1024

// powerTable precomputes base^(i-powerBias) for every level this tree
// could plausibly reach, so covdist/sepdist lookups are an array index
// instead of a call to math.Pow on every traversal step.
type powerTable struct {
	base  float64
	table []float64
}

// newPowerTable builds the table for the given base. It is rebuilt only
// when base changes, which happens exactly once, at construction.
func newPowerTable(base float64) *powerTable {
	pt := &powerTable{
		base:  base,
		table: make([]float64, 2*powerBias+1),
	}
	for i := range pt.table {
		level := i - powerBias
		pt.table[i] = math.Pow(base, float64(level))
	}
	return pt
}

// at returns base^level, using the precomputed table when level falls
// within the biased range and falling back to math.Pow otherwise (a tree
// that grows far enough to need this has bigger problems, but correctness
// must not depend on it staying within range).
func (pt *powerTable) at(level int) float64 {
	idx := level + powerBias
	if idx < 0 || idx >= len(pt.table) {
		return math.Pow(pt.base, float64(level))
	}
	return pt.table[idx]
}

// covdist returns the covering distance for a node at the given level:
// the maximum distance allowed from that node to any of its direct
// children, base^(level+1).
func (pt *powerTable) covdist(level int) float64 {
	return pt.at(level + 1)
}

// sepdist returns the separation distance for a node at the given level:
// the minimum distance required between any two of its direct children,
// base^level.
func (pt *powerTable) sepdist(level int) float64 {
	return pt.at(level)
}
