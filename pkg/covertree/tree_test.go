package covertree

import (
	"testing"

	"github.com/ssargent/covertree/pkg/point"
)

func TestNewEmptyTree(t *testing.T) {
	tr := NewEmpty(2, DefaultOptions())
	if tr.Len() != 0 {
		t.Fatalf("expected empty tree, got len %d", tr.Len())
	}
	if tr.Root() != nil {
		t.Fatalf("expected nil root on empty tree")
	}
}

func TestNewFromPoint(t *testing.T) {
	p := point.New([]float64{1, 2})
	tr := NewFromPoint(p, "a", nil, DefaultOptions())
	if tr.Len() != 1 {
		t.Fatalf("expected len 1, got %d", tr.Len())
	}
	root := tr.Root()
	if root == nil || root.UID() != "a" {
		t.Fatalf("expected root with uid 'a', got %+v", root)
	}
	if root.Level() != 0 {
		t.Errorf("expected root level 0, got %d", root.Level())
	}
}

func TestScaleExtremaTrackInsertions(t *testing.T) {
	tr := NewEmpty(2, DefaultOptions())
	pts := [][]float64{{0, 0}, {100, 100}, {0.001, 0.001}}
	for i, raw := range pts {
		ok, err := tr.Insert(point.New(raw), string(rune('a'+i)), nil)
		if err != nil || !ok {
			t.Fatalf("insert %d failed: ok=%v err=%v", i, ok, err)
		}
	}
	if tr.MinScale() > tr.MaxScale() {
		t.Errorf("expected minScale <= maxScale, got min=%d max=%d", tr.MinScale(), tr.MaxScale())
	}
}
