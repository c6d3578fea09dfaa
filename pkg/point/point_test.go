package point

import "testing"

func TestDist(t *testing.T) {
	a := New([]float64{0, 0})
	b := New([]float64{3, 4})
	d, err := Dist(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 5 {
		t.Errorf("expected distance 5, got %v", d)
	}
}

func TestDistSelf(t *testing.T) {
	a := New([]float64{1, 2, 3})
	d, err := Dist(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Errorf("expected distance 0, got %v", d)
	}
}

func TestDistDimensionMismatch(t *testing.T) {
	a := New([]float64{1, 2})
	b := New([]float64{1, 2, 3})
	if _, err := Dist(a, b); err != ErrDimensionMismatch {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p := New([]float64{1.5, -2.25, 3.125})
	buf, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	got, n, err := UnmarshalBinary(buf)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if n != len(buf) {
		t.Errorf("expected to consume %d bytes, consumed %d", len(buf), n)
	}
	if got.Dim() != p.Dim() {
		t.Fatalf("dimension mismatch: got %d want %d", got.Dim(), p.Dim())
	}
	for i := 0; i < p.Dim(); i++ {
		if got.At(i) != p.At(i) {
			t.Errorf("component %d: got %v want %v", i, got.At(i), p.At(i))
		}
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	p := New([]float64{1, 2, 3})
	buf, _ := p.MarshalBinary()
	if _, _, err := UnmarshalBinary(buf[:len(buf)-1]); err == nil {
		t.Error("expected error for truncated buffer")
	}
}
