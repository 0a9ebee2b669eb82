package compare

import (
	"context"

	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
)

// BinaryComparator is the fallback for content no other comparator
// handles. Equal iff byte-for-byte identical; on inequality it reports
// both lengths and the first differing offset.
type BinaryComparator struct{}

// NewBinaryComparator creates a new byte-level comparator
func NewBinaryComparator() *BinaryComparator {
	return &BinaryComparator{}
}

// Class returns the content class this comparator handles
func (c *BinaryComparator) Class() models.ContentClass {
	return models.ClassBinary
}

// Compare scans both buffers for the first differing byte
func (c *BinaryComparator) Compare(ctx context.Context, pair Pair, tol *config.Tolerances) (*models.FileDetail, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	expected, actual := pair.Expected, pair.Actual

	minLen := len(expected)
	if len(actual) < minLen {
		minLen = len(actual)
	}

	// Offset of the first differing byte; when one side is a strict
	// prefix of the other this lands on the shorter length, which for an
	// empty side is 0
	offset := int64(minLen)
	strictPrefix := len(expected) != len(actual)
	for i := 0; i < minLen; i++ {
		if expected[i] != actual[i] {
			offset = int64(i)
			strictPrefix = false
			break
		}
	}

	equal := len(expected) == len(actual) && offset == int64(minLen)

	detail := &models.BinaryDetail{
		ExpectedLength:  int64(len(expected)),
		ActualLength:    int64(len(actual)),
		FirstDiffOffset: offset,
		StrictPrefix:    !equal && strictPrefix,
	}
	if equal {
		detail.FirstDiffOffset = -1 // no differing byte
	}

	return &models.FileDetail{
		Class:  models.ClassBinary,
		Equal:  equal,
		Binary: detail,
	}, nil
}
