// Package point provides the abstract numeric vector type consumed by
// pkg/covertree. It is intentionally minimal: a fixed-dimension vector of
// float64 scalars with subtraction and L2 norm, the only operations the
// cover tree's geometry requires.
package point

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when two points of different
// dimensionality are compared or combined.
var ErrDimensionMismatch = errors.New("point: dimension mismatch")

// Point is a fixed-dimension real vector.
type Point struct {
	data []float64
}

// New creates a Point from a float64 slice, copying it so the caller's
// slice may be mutated freely afterward.
func New(data []float64) Point {
	copied := make([]float64, len(data))
	copy(copied, data)
	return Point{data: copied}
}

// Dim returns the number of dimensions.
func (p Point) Dim() int {
	return len(p.data)
}

// Data returns the underlying slice. Callers must not mutate it.
func (p Point) Data() []float64 {
	return p.data
}

// At returns the i-th component.
func (p Point) At(i int) float64 {
	return p.data[i]
}

// Sub returns p - other, component-wise.
func (p Point) Sub(other Point) (Point, error) {
	if len(p.data) != len(other.data) {
		return Point{}, ErrDimensionMismatch
	}
	out := make([]float64, len(p.data))
	for i := range p.data {
		out[i] = p.data[i] - other.data[i]
	}
	return Point{data: out}, nil
}

// Norm returns the L2 (Euclidean) norm of p.
func (p Point) Norm() float64 {
	var sumSq float64
	for _, v := range p.data {
		sumSq += v * v
	}
	return math.Sqrt(sumSq)
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) (float64, error) {
	diff, err := a.Sub(b)
	if err != nil {
		return 0, err
	}
	return diff.Norm(), nil
}

// MustDist is Dist but panics on dimension mismatch. It exists for the
// hot query/insert paths inside pkg/covertree, which validate dimension
// once at the tree boundary and can then assume every stored Point agrees.
func MustDist(a, b Point) float64 {
	d, err := Dist(a, b)
	if err != nil {
		panic(err)
	}
	return d
}

// byteLen returns the encoded size in bytes for a point of dimension dim.
func byteLen(dim int) int {
	return 4 + dim*8
}

// ByteLen is byteLen exported for callers, such as pkg/covertree's
// serialization size estimator, that need to size a buffer without
// marshaling a Point first.
func ByteLen(dim int) int {
	return byteLen(dim)
}

// MarshalBinary encodes p as a little-endian dimension-prefixed stream of
// IEEE-754 float64 values: [dim uint32][data[0] float64]...[data[dim-1]].
func (p Point) MarshalBinary() ([]byte, error) {
	buf := make([]byte, byteLen(len(p.data)))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(p.data)))
	for i, v := range p.data {
		binary.LittleEndian.PutUint64(buf[4+i*8:], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalBinary decodes a Point previously produced by MarshalBinary and
// returns the number of bytes consumed.
func UnmarshalBinary(buf []byte) (Point, int, error) {
	if len(buf) < 4 {
		return Point{}, 0, errors.New("point: buffer too short for header")
	}
	dim := int(binary.LittleEndian.Uint32(buf[0:4]))
	n := byteLen(dim)
	if len(buf) < n {
		return Point{}, 0, errors.New("point: buffer too short for data")
	}
	data := make([]float64, dim)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[4+i*8:]))
	}
	return Point{data: data}, n, nil
}
