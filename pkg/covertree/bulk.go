package covertree

import (
	"context"
	"strconv"

	"github.com/ssargent/covertree/pkg/point"
	"golang.org/x/sync/errgroup"
)

// Matrix is a row-major view over a fixed-width block of points: row i,
// column j is at Data[i*Cols+j]. NewFromMatrix builds a tree directly
// from one without requiring the caller to materialize a []Point slice
// first.
type Matrix struct {
	Data []float64
	Rows int
	Cols int
}

// Row returns a Point view of row i. The returned Point shares no memory
// with m.Data (point.New copies), so later mutation of m is safe.
func (m Matrix) Row(i int) Point {
	start := i * m.Cols
	return point.New(m.Data[start : start+m.Cols])
}

// BulkUID generates the default UID for row i of a matrix-loaded tree
// when the caller has no natural external identifier, using a
// "row-%d" scheme.
func BulkUID(i int) string {
	return rowUID(i)
}

// NewFromMatrix builds a tree from every row of m, inserting concurrently
// with workers workers of parallelism. Rows are assigned round-robin
// across workers so that any single worker's insertion order does not
// bias which points end up near the root. After every row has been
// inserted, it runs exactly one CalcMaxDist pass so MaxDistUB is valid on
// return.
//
// Parallel construction is grounded on golang.org/x/sync/errgroup, the
// same worker-fan-out idiom errgroup is built for: bounded concurrent
// work with first-error propagation and context cancellation.
func NewFromMatrix(ctx context.Context, m Matrix, workers int, opts TreeOptions) (*Tree, error) {
	if workers < 1 {
		workers = 1
	}
	t := NewEmpty(m.Cols, opts)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < m.Rows; i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if _, err := t.Insert(m.Row(i), rowUID(i), nil); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t.CalcMaxDist()
	return t, nil
}

func rowUID(i int) string {
	return "row-" + strconv.Itoa(i)
}
