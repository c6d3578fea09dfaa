package covertree

import (
	"testing"

	"github.com/ssargent/covertree/pkg/point"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tr := buildLineTree(t)
	buf, err := tr.Serialize()
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if len(buf) != tr.MsgSize() {
		t.Errorf("MsgSize() = %d, actual serialized length = %d", tr.MsgSize(), len(buf))
	}

	got, err := Deserialize(buf, DefaultOptions())
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if got.Len() != tr.Len() {
		t.Fatalf("expected len %d, got %d", tr.Len(), got.Len())
	}
	if got.Dim() != tr.Dim() {
		t.Errorf("expected dim %d, got %d", tr.Dim(), got.Dim())
	}

	n, d, err := got.NearestNeighbour(point.New([]float64{4}))
	if err != nil {
		t.Fatalf("query on deserialized tree failed: %v", err)
	}
	if n.UID() != "d" || d != 1 {
		t.Errorf("expected nearest 'd' at distance 1 after round trip, got uid=%s dist=%v", n.UID(), d)
	}
	if err := got.CheckCovering(); err != nil {
		t.Errorf("round-tripped tree fails covering check: %v", err)
	}
}

func TestSerializeEmptyTree(t *testing.T) {
	tr := NewEmpty(2, DefaultOptions())
	buf, err := tr.Serialize()
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	got, err := Deserialize(buf, DefaultOptions())
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("expected empty tree, got len %d", got.Len())
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	tr := buildLineTree(t)
	buf, _ := tr.Serialize()
	buf[0] ^= 0xFF
	if _, err := Deserialize(buf, DefaultOptions()); err != ErrInvalidMagic {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestDeserializeRejectsBadVersion(t *testing.T) {
	tr := buildLineTree(t)
	buf, _ := tr.Serialize()
	buf[4] = 0xFF
	buf[5] = 0xFF
	if _, err := Deserialize(buf, DefaultOptions()); err != ErrInvalidVersion {
		t.Errorf("expected ErrInvalidVersion, got %v", err)
	}
}

func TestDeserializeRejectsCorruptChecksum(t *testing.T) {
	tr := buildLineTree(t)
	buf, _ := tr.Serialize()
	buf[len(buf)/2] ^= 0xFF
	if _, err := Deserialize(buf, DefaultOptions()); err != ErrCorruptedData {
		t.Errorf("expected ErrCorruptedData, got %v", err)
	}
}

func TestDeserializeRejectsTruncatedBuffer(t *testing.T) {
	tr := buildLineTree(t)
	buf, _ := tr.Serialize()
	if _, err := Deserialize(buf[:len(buf)/2], DefaultOptions()); err == nil {
		t.Error("expected an error for a truncated buffer")
	}
}
