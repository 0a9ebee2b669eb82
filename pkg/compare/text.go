package compare

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
)

// TextComparator compares newline-delimited text line by line using a
// longest-common-subsequence alignment. It has no tolerance parameters:
// two texts are equal iff the edit script is empty and their
// trailing-newline presence matches.
type TextComparator struct{}

// NewTextComparator creates a new line-based text comparator
func NewTextComparator() *TextComparator {
	return &TextComparator{}
}

// Class returns the content class this comparator handles
func (c *TextComparator) Class() models.ContentClass {
	return models.ClassText
}

// Compare computes the minimal line-level edit script between both sides
func (c *TextComparator) Compare(ctx context.Context, pair Pair, tol *config.Tolerances) (*models.FileDetail, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	expectedLines, expectedTrailing := splitLines(pair.Expected)
	actualLines, actualTrailing := splitLines(pair.Actual)

	matcher := difflib.NewMatcher(expectedLines, actualLines)

	var ops []models.TextOp
	allEqual := true
	for _, oc := range matcher.GetOpCodes() {
		op := models.TextOp{
			Tag:           opTag(oc.Tag),
			ExpectedStart: oc.I1,
			ExpectedEnd:   oc.I2,
			ActualStart:   oc.J1,
			ActualEnd:     oc.J2,
		}
		if op.Tag != models.OpEqual {
			allEqual = false
		}
		ops = append(ops, op)
	}

	detail := &models.TextDetail{
		Ops:                     ops,
		ExpectedLines:           len(expectedLines),
		ActualLines:             len(actualLines),
		ExpectedTrailingNewline: expectedTrailing,
		ActualTrailingNewline:   actualTrailing,
	}

	equal := allEqual && expectedTrailing == actualTrailing

	return &models.FileDetail{
		Class: models.ClassText,
		Equal: equal,
		Text:  detail,
	}, nil
}

// splitLines splits content into lines without their newline terminators
// and reports whether a trailing newline was present. The trailing newline
// is significant and reported, never silently normalized.
func splitLines(content []byte) ([]string, bool) {
	if len(content) == 0 {
		return nil, false
	}
	s := string(content)
	trailing := strings.HasSuffix(s, "\n")
	if trailing {
		s = s[:len(s)-1]
	}
	return strings.Split(s, "\n"), trailing
}

func opTag(tag byte) models.TextOpTag {
	switch tag {
	case 'r':
		return models.OpReplace
	case 'd':
		return models.OpDelete
	case 'i':
		return models.OpInsert
	default:
		return models.OpEqual
	}
}
