package models

// ContentClass identifies which comparator family applies to a file
type ContentClass string

const (
	// ClassText indicates newline-delimited text content
	ClassText ContentClass = "text"
	// ClassJSON indicates a JSON document
	ClassJSON ContentClass = "json"
	// ClassImage indicates a raster image
	ClassImage ContentClass = "image"
	// ClassAudio indicates an audio clip
	ClassAudio ContentClass = "audio"
	// ClassBinary is the fallback for everything else
	ClassBinary ContentClass = "binary"
)

// EntryKind distinguishes files from directories
type EntryKind string

const (
	// KindFile is a regular file entry
	KindFile EntryKind = "file"
	// KindDirectory is a directory entry
	KindDirectory EntryKind = "directory"
)

// NodeStatus is the per-path comparison outcome
type NodeStatus string

const (
	// StatusEqual indicates both sides are semantically equivalent
	StatusEqual NodeStatus = "equal"
	// StatusModified indicates both sides exist but differ
	StatusModified NodeStatus = "modified"
	// StatusAdded indicates the path exists only in the actual tree
	StatusAdded NodeStatus = "added"
	// StatusRemoved indicates the path exists only in the expected tree
	StatusRemoved NodeStatus = "removed"
	// StatusTypeMismatch indicates the two sides classified differently
	// (different content classes, or file vs directory)
	StatusTypeMismatch NodeStatus = "type_mismatch"
	// StatusError indicates the comparison itself failed for this path
	StatusError NodeStatus = "error"
)

// DiffNode is one node of the result tree. Every path present in either
// input tree appears exactly once; directory nodes own their children in
// byte-wise path order.
type DiffNode struct {
	// Path is the relative path from the compared roots
	Path string

	// Kind indicates file or directory
	Kind EntryKind

	// Status is the comparison outcome for this path
	Status NodeStatus

	// Class is the content class the comparator ran under (files only)
	Class ContentClass

	// Detail carries the class-specific diagnostics (files only)
	Detail *FileDetail

	// Err is set when Status is StatusError
	Err *CompareError

	// Children holds child nodes for directories, sorted by path
	Children []*DiffNode
}

// IsEqual reports whether the node and, for directories, every descendant
// compared equal.
func (n *DiffNode) IsEqual() bool {
	if n.Status != StatusEqual {
		return false
	}
	for _, child := range n.Children {
		if !child.IsEqual() {
			return false
		}
	}
	return true
}

// Walk visits the node and all descendants top-down in path order.
func (n *DiffNode) Walk(visit func(*DiffNode)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// FileDetail is the per-class diagnostic payload attached to a compared
// file pair. Exactly one of the class pointers is set, matching Class.
// Decoded pixel and sample buffers are never retained here, only their
// summaries and small rendered previews.
type FileDetail struct {
	Class ContentClass
	Equal bool

	Text   *TextDetail
	JSON   *JSONDetail
	Binary *BinaryDetail
	Image  *ImageDetail
	Audio  *AudioDetail
}

// TextOpTag labels one edit operation in a text edit script
type TextOpTag string

const (
	// OpEqual is a run of identical lines
	OpEqual TextOpTag = "equal"
	// OpReplace replaces expected lines with actual lines
	OpReplace TextOpTag = "replace"
	// OpDelete removes expected lines
	OpDelete TextOpTag = "delete"
	// OpInsert inserts actual lines
	OpInsert TextOpTag = "insert"
)

// TextOp is one line-level edit operation. Line ranges are half-open,
// 0-indexed into each side's line sequence.
type TextOp struct {
	Tag           TextOpTag `json:"tag"`
	ExpectedStart int       `json:"expected_start"`
	ExpectedEnd   int       `json:"expected_end"`
	ActualStart   int       `json:"actual_start"`
	ActualEnd     int       `json:"actual_end"`
}

// TextDetail is the text comparator's diagnostic: a minimal edit script
// between the two line sequences. Trailing-newline presence is significant
// and reported, never normalized away.
type TextDetail struct {
	Ops []TextOp `json:"ops"`

	ExpectedLines int `json:"expected_lines"`
	ActualLines   int `json:"actual_lines"`

	ExpectedTrailingNewline bool `json:"expected_trailing_newline"`
	ActualTrailingNewline   bool `json:"actual_trailing_newline"`
}

// JSONDiffKind categorizes one point of divergence between two JSON values
type JSONDiffKind string

const (
	// JSONAddedKey is an object key present only in actual
	JSONAddedKey JSONDiffKind = "added_key"
	// JSONRemovedKey is an object key present only in expected
	JSONRemovedKey JSONDiffKind = "removed_key"
	// JSONChangedValue is a scalar or array-length value change
	JSONChangedValue JSONDiffKind = "changed_value"
	// JSONTypeChange is a value whose JSON type differs between sides
	JSONTypeChange JSONDiffKind = "type_change"
	// JSONKeyOrder is an object with the same keys declared in a
	// different order, reported only when key order is significant
	JSONKeyOrder JSONDiffKind = "key_order"
)

// JSONDiff is one path-addressed divergence. Path is a JSON-pointer-like
// sequence of keys and indices ("/users/3/name").
type JSONDiff struct {
	Path     string       `json:"path"`
	Kind     JSONDiffKind `json:"kind"`
	Expected string       `json:"expected,omitempty"`
	Actual   string       `json:"actual,omitempty"`
}

// JSONDetail collects every divergence found in a single pass
type JSONDetail struct {
	Diffs []JSONDiff `json:"diffs"`
}

// BinaryDetail reports byte lengths and the first differing offset.
// If one side is a strict prefix of the other, FirstDiffOffset equals the
// shorter length and StrictPrefix is true; for an empty vs non-empty pair
// the offset is 0.
type BinaryDetail struct {
	ExpectedLength  int64 `json:"expected_length"`
	ActualLength    int64 `json:"actual_length"`
	FirstDiffOffset int64 `json:"first_diff_offset"`
	StrictPrefix    bool  `json:"strict_prefix"`
}

// ImageDetail reports perceptual pixel statistics. Distances are Euclidean
// over (L, a, b, alpha) in OkLab space. Mismatched dimensions always
// verdict Different and skip the pixel pass.
type ImageDetail struct {
	ExpectedWidth  int `json:"expected_width"`
	ExpectedHeight int `json:"expected_height"`
	ActualWidth    int `json:"actual_width"`
	ActualHeight   int `json:"actual_height"`

	DimensionsMatch bool `json:"dimensions_match"`

	MaxDistance  float64 `json:"max_distance"`
	MeanDistance float64 `json:"mean_distance"`
	DiffPixels   uint64  `json:"diff_pixels"`
	TotalPixels  uint64  `json:"total_pixels"`
	DiffRatio    float64 `json:"diff_ratio"`

	// DiffMaskPNG is a rendered mask marking differing pixels, embedded
	// into HTML reports. Empty when dimensions mismatch.
	DiffMaskPNG []byte `json:"-"`
}

// AudioDetail reports all four audio comparison stages, populated even
// when the overall verdict is Equal so reporters can show near-misses.
type AudioDetail struct {
	SampleRate int `json:"sample_rate"`

	ShiftSamples int     `json:"shift_samples"`
	ShiftSeconds float64 `json:"shift_seconds"`
	// AtWindowEdge is set when the best correlation sits on the boundary
	// of the shift search window, which usually means the real offset
	// lies outside the tolerated range.
	AtWindowEdge bool `json:"at_window_edge"`

	ExpectedLoudnessDB float64 `json:"expected_loudness_db"`
	ActualLoudnessDB   float64 `json:"actual_loudness_db"`
	LoudnessDeltaDB    float64 `json:"loudness_delta_db"`

	DiffBins     uint64  `json:"diff_bins"`
	TotalBins    uint64  `json:"total_bins"`
	DiffBinRatio float64 `json:"diff_bin_ratio"`
	MaxBinDelta  float64 `json:"max_bin_delta"`
	MeanBinDelta float64 `json:"mean_bin_delta"`

	// Rendered previews for HTML reports
	ExpectedWaveformPNG []byte `json:"-"`
	ActualWaveformPNG   []byte `json:"-"`
	SpectrogramDiffPNG  []byte `json:"-"`
}
