package covertree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/ssargent/covertree/pkg/point"
)

// magic identifies a covertree flat-buffer stream; it spells "CTRE" in
// ASCII when read big-endian.
const magic uint32 = 0x43545245

// formatVersion is the only serialization format this build understands.
// It is bumped whenever the header or stream layout changes
// incompatibly.
const formatVersion uint16 = 1

// Serialize encodes the tree as a self-contained flat buffer: a fixed
// header, a pre-order structural stream (one record per node, recording
// its point, id, uid, ExtProp and child count), a post-order stream of
// MaxDistUB values, and a trailing CRC32 over everything before it.
func (t *Tree) Serialize() ([]byte, error) {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, magic)
	binary.Write(&buf, binary.LittleEndian, formatVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(t.dim))
	binary.Write(&buf, binary.LittleEndian, math.Float64bits(t.base))
	binary.Write(&buf, binary.LittleEndian, int32(t.MinScale()))
	binary.Write(&buf, binary.LittleEndian, int32(t.MaxScale()))
	binary.Write(&buf, binary.LittleEndian, t.nextID)

	var nodeCount uint64
	if t.root != nil {
		var count func(n *Node)
		count = func(n *Node) {
			nodeCount++
			for _, c := range n.children {
				count(c)
			}
		}
		count(t.root)
	}
	binary.Write(&buf, binary.LittleEndian, nodeCount)

	if t.root != nil {
		writePreOrder(&buf, t.root)
		writePostOrder(&buf, t.root)
	}

	sum := crc32.ChecksumIEEE(buf.Bytes())
	binary.Write(&buf, binary.LittleEndian, sum)
	return buf.Bytes(), nil
}

func writePreOrder(buf *bytes.Buffer, n *Node) {
	binary.Write(buf, binary.LittleEndian, n.id)
	binary.Write(buf, binary.LittleEndian, int32(n.level))

	uidBytes := []byte(n.uid)
	binary.Write(buf, binary.LittleEndian, uint16(len(uidBytes)))
	buf.Write(uidBytes)

	binary.Write(buf, binary.LittleEndian, uint32(len(n.extProp)))
	buf.Write(n.extProp)

	pointBytes, _ := n.point.MarshalBinary()
	buf.Write(pointBytes)

	binary.Write(buf, binary.LittleEndian, uint32(len(n.children)))
	for _, c := range n.children {
		writePreOrder(buf, c)
	}
}

func writePostOrder(buf *bytes.Buffer, n *Node) {
	for _, c := range n.children {
		writePostOrder(buf, c)
	}
	binary.Write(buf, binary.LittleEndian, n.maxdistUB)
}

// MsgSize returns the exact byte length Serialize would produce for the
// tree's current contents, without actually encoding it, so callers can
// size a buffer or check a quota up front.
func (t *Tree) MsgSize() int {
	t.globalLock.RLock()
	defer t.globalLock.RUnlock()

	const headerSize = 4 + 2 + 4 + 8 + 4 + 4 + 8 + 8 // magic..nextID, nodeCount
	const trailerSize = 4                            // crc32

	size := headerSize + trailerSize
	if t.root == nil {
		return size
	}

	var walkPre func(n *Node) int
	walkPre = func(n *Node) int {
		sz := 8 + 4 + 2 + len(n.uid) + 4 + len(n.extProp) + point.ByteLen(n.point.Dim()) + 4
		for _, c := range n.children {
			sz += walkPre(c)
		}
		return sz
	}
	var walkPost func(n *Node) int
	walkPost = func(n *Node) int {
		sz := 8
		for _, c := range n.children {
			sz += walkPost(c)
		}
		return sz
	}
	size += walkPre(t.root)
	size += walkPost(t.root)
	return size
}

// Deserialize decodes a tree previously produced by Serialize. It
// verifies the magic number, format version, and trailing CRC32 before
// trusting any of the structural content, and reconstructs the tree's
// scale extrema and UID set from the decoded nodes rather than trusting
// the header blindly for anything but sizing.
func Deserialize(buf []byte, opts TreeOptions) (*Tree, error) {
	const headerSize = 4 + 2 + 4 + 8 + 4 + 4 + 8 + 8
	if len(buf) < headerSize+4 {
		return nil, ErrCorruptedData
	}

	gotMagic := binary.LittleEndian.Uint32(buf[0:4])
	if gotMagic != magic {
		return nil, ErrInvalidMagic
	}
	gotVersion := binary.LittleEndian.Uint16(buf[4:6])
	if gotVersion != formatVersion {
		return nil, ErrInvalidVersion
	}

	sumOffset := len(buf) - 4
	wantSum := binary.LittleEndian.Uint32(buf[sumOffset:])
	gotSum := crc32.ChecksumIEEE(buf[:sumOffset])
	if wantSum != gotSum {
		return nil, ErrCorruptedData
	}

	dim := binary.LittleEndian.Uint32(buf[6:10])
	base := math.Float64frombits(binary.LittleEndian.Uint64(buf[10:18]))
	nextID := binary.LittleEndian.Uint64(buf[26:34])
	nodeCount := binary.LittleEndian.Uint64(buf[34:42])

	if opts.Base == 0 {
		opts.Base = base
	}
	t := NewEmpty(int(dim), opts)

	if nodeCount == 0 {
		t.nextID = nextID
		return t, nil
	}

	cursor := headerSize
	root, newCursor, err := readPreOrder(buf[:sumOffset], cursor)
	if err != nil {
		return nil, fmt.Errorf("covertree: decoding structural stream at byte %d: %w", cursor, err)
	}
	cursor = newCursor

	if err := readPostOrder(buf[:sumOffset], root, &cursor); err != nil {
		return nil, fmt.Errorf("covertree: decoding maxdistUB stream at byte %d: %w", cursor, err)
	}

	t.root = root
	t.nextID = nextID
	var minLevel, maxLevel = root.level, root.level
	var walk func(n *Node)
	walk = func(n *Node) {
		t.uids[n.uid] = struct{}{}
		if n.level < minLevel {
			minLevel = n.level
		}
		if n.level > maxLevel {
			maxLevel = n.level
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	// Promoted root copies share their original's UID, so the point count
	// is the number of distinct UIDs, not the number of nodes.
	t.n = uint64(len(t.uids))
	t.minScale = int64(minLevel)
	t.maxScale = int64(maxLevel)
	return t, nil
}

func readPreOrder(buf []byte, cursor int) (*Node, int, error) {
	if cursor+8+4+2 > len(buf) {
		return nil, 0, ErrCorruptedData
	}
	id := binary.LittleEndian.Uint64(buf[cursor:])
	cursor += 8
	level := int32(binary.LittleEndian.Uint32(buf[cursor:]))
	cursor += 4
	uidLen := int(binary.LittleEndian.Uint16(buf[cursor:]))
	cursor += 2

	if cursor+uidLen+4 > len(buf) {
		return nil, 0, ErrCorruptedData
	}
	uid := string(buf[cursor : cursor+uidLen])
	cursor += uidLen

	extLen := int(binary.LittleEndian.Uint32(buf[cursor:]))
	cursor += 4
	if cursor+extLen > len(buf) {
		return nil, 0, ErrCorruptedData
	}
	var extProp []byte
	if extLen > 0 {
		extProp = make([]byte, extLen)
		copy(extProp, buf[cursor:cursor+extLen])
	}
	cursor += extLen

	p, consumed, err := point.UnmarshalBinary(buf[cursor:])
	if err != nil {
		return nil, 0, ErrCorruptedData
	}
	cursor += consumed

	if cursor+4 > len(buf) {
		return nil, 0, ErrCorruptedData
	}
	childCount := binary.LittleEndian.Uint32(buf[cursor:])
	cursor += 4

	n := newNode(p, int(level), id, uid, extProp)
	for i := uint32(0); i < childCount; i++ {
		child, newCursor, err := readPreOrder(buf, cursor)
		if err != nil {
			return nil, 0, err
		}
		n.children = append(n.children, child)
		cursor = newCursor
	}
	return n, cursor, nil
}

func readPostOrder(buf []byte, n *Node, cursor *int) error {
	for _, c := range n.children {
		if err := readPostOrder(buf, c, cursor); err != nil {
			return err
		}
	}
	if *cursor+8 > len(buf) {
		return ErrCorruptedData
	}
	n.maxdistUB = math.Float64frombits(binary.LittleEndian.Uint64(buf[*cursor:]))
	*cursor += 8
	return nil
}
