package covertree

import "errors"

var (
	// ErrDimensionMismatch is returned when a point's dimension does not
	// match the tree's configured dimension.
	ErrDimensionMismatch = errors.New("covertree: dimension mismatch")

	// ErrEmptyTree is returned by queries against a tree with no root.
	ErrEmptyTree = errors.New("covertree: tree is empty")

	// ErrDuplicateUID is returned when Insert is given a UID already
	// present in the tree.
	ErrDuplicateUID = errors.New("covertree: duplicate UID")

	// ErrInvalidMagic is returned by Deserialize when the buffer does not
	// start with the expected magic number.
	ErrInvalidMagic = errors.New("covertree: invalid magic number")

	// ErrInvalidVersion is returned by Deserialize when the buffer's
	// format version is not supported by this build.
	ErrInvalidVersion = errors.New("covertree: unsupported serialization version")

	// ErrCorruptedData is returned by Deserialize when the stream ends
	// early, a checksum fails, or the two traversal streams disagree on
	// structure.
	ErrCorruptedData = errors.New("covertree: corrupted serialization stream")
)
