// Package compare implements the per-class file comparators. Each
// comparator decodes both sides and produces a verdict with enough
// diagnostic detail for reporters to explain the difference without
// re-decoding the files.
package compare

import (
	"context"
	"sort"

	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
)

// Pair holds the raw content of one expected/actual file pair
type Pair struct {
	// Path is the relative path, used in error reporting
	Path string

	// Expected is the reference side's content
	Expected []byte

	// Actual is the content under test
	Actual []byte
}

// Comparator defines the interface for content-class comparison algorithms
type Comparator interface {
	// Class returns the content class this comparator handles
	Class() models.ContentClass

	// Compare decodes both sides and produces a verdict with
	// diagnostics. Decode failures return a *models.CompareError, not a
	// difference verdict.
	Compare(ctx context.Context, pair Pair, tol *config.Tolerances) (*models.FileDetail, error)
}

// Registry maps content classes to their comparators. The class set is
// closed and known, so dispatch is a fixed table rather than anything
// dynamic.
type Registry struct {
	comparators map[models.ContentClass]Comparator
}

// NewRegistry creates the full comparator table
func NewRegistry() *Registry {
	r := &Registry{comparators: make(map[models.ContentClass]Comparator)}
	for _, c := range []Comparator{
		NewTextComparator(),
		NewJSONComparator(),
		NewBinaryComparator(),
		NewImageComparator(),
		NewAudioComparator(),
	} {
		r.comparators[c.Class()] = c
	}
	return r
}

// For returns the comparator for a content class, falling back to the
// binary comparator for anything unknown
func (r *Registry) For(class models.ContentClass) Comparator {
	if c, ok := r.comparators[class]; ok {
		return c
	}
	return r.comparators[models.ClassBinary]
}

// Classes lists the content classes with a registered comparator,
// sorted by name
func (r *Registry) Classes() []models.ContentClass {
	classes := make([]models.ContentClass, 0, len(r.comparators))
	for class := range r.comparators {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}
