// Package walk drives the comparison of two provider trees. It merges
// the sorted child listings of both sides level by level, dispatches
// file pairs to the per-class comparators on a bounded worker pool, and
// assembles the result tree. Per-entry failures degrade to error nodes;
// only an unreadable root aborts the run.
package walk

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/semdiff/pkg/classify"
	"github.com/sdejongh/semdiff/pkg/compare"
	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/logging"
	"github.com/sdejongh/semdiff/pkg/models"
	"github.com/sdejongh/semdiff/pkg/tree"
)

// Walker compares an expected tree against an actual tree
type Walker struct {
	expected tree.Provider
	actual   tree.Provider
	registry *compare.Registry
	cfg      *config.Config
	logger   logging.Logger

	semaphore chan struct{}

	mu     sync.Mutex
	stats  models.Statistics
	errors []*models.CompareError

	onNode func(*models.DiffNode)
}

// New creates a walker over two providers
func New(expected, actual tree.Provider, registry *compare.Registry, cfg *config.Config, logger logging.Logger) *Walker {
	maxWorkers := cfg.Performance.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logging.NewNull()
	}
	return &Walker{
		expected:  expected,
		actual:    actual,
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// OnNode registers a callback invoked once per finished file node. The
// callback may be invoked from multiple goroutines concurrently.
func (w *Walker) OnNode(fn func(*models.DiffNode)) {
	w.onNode = fn
}

// Run performs the full comparison and returns the populated report.
// An unreadable root is the only fatal condition; every other failure is
// captured as an error node inside the tree.
func (w *Walker) Run(ctx context.Context) (*models.Report, error) {
	report := &models.Report{
		RunID:        uuid.New().String(),
		ExpectedRoot: w.expected.Root(),
		ActualRoot:   w.actual.Root(),
		StartTime:    time.Now(),
	}

	w.logger.Info(ctx, "starting comparison", logging.Fields{
		"run_id":   report.RunID,
		"expected": report.ExpectedRoot,
		"actual":   report.ActualRoot,
	})

	expectedEntries, err := w.expected.List(ctx, "")
	if err != nil {
		report.Status = models.StatusFatal
		report.Finalize()
		return report, fmt.Errorf("failed to enumerate expected root: %w", err)
	}
	actualEntries, err := w.actual.List(ctx, "")
	if err != nil {
		report.Status = models.StatusFatal
		report.Finalize()
		return report, fmt.Errorf("failed to enumerate actual root: %w", err)
	}

	root, err := w.mergeLevel(ctx, "", expectedEntries, actualEntries)
	if err != nil {
		report.Status = models.StatusFatal
		report.Finalize()
		return report, err
	}

	report.Root = root
	report.Stats = w.stats
	report.Errors = w.errors
	report.Finalize()

	w.logger.Info(ctx, "comparison finished", logging.Fields{
		"run_id":      report.RunID,
		"status":      report.Status,
		"files":       report.Stats.FilesScanned,
		"dirs":        report.Stats.DirsScanned,
		"differences": report.Stats.Differences(),
		"errors":      report.Stats.Errored,
		"duration":    report.Duration.String(),
	})
	return report, nil
}

// mergeLevel walks one directory level: both child listings are already
// sorted byte-wise, so a two-pointer merge yields every path present on
// either side exactly once, in result order. File pairs run on the
// worker pool into pre-sized slots; directories recurse inline.
func (w *Walker) mergeLevel(ctx context.Context, dirPath string, expectedEntries, actualEntries []tree.Entry) (*models.DiffNode, error) {
	node := &models.DiffNode{
		Path: dirPath,
		Kind: models.KindDirectory,
	}

	type slot struct {
		expected *tree.Entry
		actual   *tree.Entry
	}
	var slots []slot
	i, j := 0, 0
	for i < len(expectedEntries) || j < len(actualEntries) {
		switch {
		case j >= len(actualEntries) || (i < len(expectedEntries) && expectedEntries[i].Name < actualEntries[j].Name):
			slots = append(slots, slot{expected: &expectedEntries[i]})
			i++
		case i >= len(expectedEntries) || actualEntries[j].Name < expectedEntries[i].Name:
			slots = append(slots, slot{actual: &actualEntries[j]})
			j++
		default:
			slots = append(slots, slot{expected: &expectedEntries[i], actual: &actualEntries[j]})
			i++
			j++
		}
	}

	children := make([]*models.DiffNode, len(slots))
	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	// In-flight comparisons must drain even on an early return
	defer wg.Wait()

	for idx, s := range slots {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch {
		case s.expected != nil && s.actual != nil:
			childPath := path.Join(dirPath, s.expected.Name)
			if s.expected.Kind != s.actual.Kind {
				children[idx] = w.typeMismatchNode(childPath, s.expected.Kind)
			} else if s.expected.Kind == models.KindDirectory {
				child, err := w.recurse(ctx, childPath)
				if err != nil {
					return nil, err
				}
				children[idx] = child
			} else {
				wg.Add(1)
				go func(idx int, childPath string, expected, actual tree.Entry) {
					defer wg.Done()
					w.semaphore <- struct{}{}
					defer func() { <-w.semaphore }()

					child, err := w.compareFilePair(ctx, childPath, expected, actual)
					if err != nil {
						errOnce.Do(func() { firstErr = err })
						return
					}
					children[idx] = child
				}(idx, childPath, *s.expected, *s.actual)
			}
		case s.expected != nil:
			child, err := w.oneSided(ctx, w.expected, *s.expected, dirPath, models.StatusRemoved, models.SideExpected)
			if err != nil {
				return nil, err
			}
			children[idx] = child
		default:
			child, err := w.oneSided(ctx, w.actual, *s.actual, dirPath, models.StatusAdded, models.SideActual)
			if err != nil {
				return nil, err
			}
			children[idx] = child
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	node.Children = children
	node.Status = models.StatusEqual
	for _, child := range children {
		if !child.IsEqual() {
			node.Status = models.StatusModified
			break
		}
	}

	w.mu.Lock()
	w.stats.DirsScanned++
	w.mu.Unlock()
	return node, nil
}

// recurse lists both sides of a shared subdirectory and walks it. A
// listing failure degrades the directory to an error node.
func (w *Walker) recurse(ctx context.Context, dirPath string) (*models.DiffNode, error) {
	expectedEntries, err := w.expected.List(ctx, dirPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return w.errorNode(ctx, dirPath, models.KindDirectory, "",
			models.NewCompareError(models.ErrIO, dirPath, models.SideExpected, err)), nil
	}
	actualEntries, err := w.actual.List(ctx, dirPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return w.errorNode(ctx, dirPath, models.KindDirectory, "",
			models.NewCompareError(models.ErrIO, dirPath, models.SideActual, err)), nil
	}
	return w.mergeLevel(ctx, dirPath, expectedEntries, actualEntries)
}

// oneSided builds the subtree for a path present in only one input. The
// whole subtree carries the same added or removed status so reporters
// can enumerate exactly what appeared or disappeared.
func (w *Walker) oneSided(ctx context.Context, provider tree.Provider, entry tree.Entry, dirPath string, status models.NodeStatus, side models.Side) (*models.DiffNode, error) {
	childPath := path.Join(dirPath, entry.Name)

	if entry.Kind == models.KindFile {
		node := &models.DiffNode{
			Path:   childPath,
			Kind:   models.KindFile,
			Status: status,
		}
		w.finishFile(node)
		return node, nil
	}

	entries, err := provider.List(ctx, childPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return w.errorNode(ctx, childPath, models.KindDirectory, "",
			models.NewCompareError(models.ErrIO, childPath, side, err)), nil
	}

	node := &models.DiffNode{
		Path:   childPath,
		Kind:   models.KindDirectory,
		Status: status,
	}
	for _, child := range entries {
		childNode, err := w.oneSided(ctx, provider, child, childPath, status, side)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}

	w.mu.Lock()
	w.stats.DirsScanned++
	w.mu.Unlock()
	return node, nil
}

// compareFilePair reads, classifies and compares one file present on
// both sides. Only context cancellation propagates as an error; every
// per-entry failure becomes an error node.
func (w *Walker) compareFilePair(ctx context.Context, childPath string, expected, actual tree.Entry) (*models.DiffNode, error) {
	if limit := w.cfg.Performance.MaxFileSizeBytes; limit > 0 {
		side := models.SideExpected
		size := expected.Size
		if actual.Size > size {
			side = models.SideActual
			size = actual.Size
		}
		if size > limit {
			return w.errorNode(ctx, childPath, models.KindFile, "",
				models.NewCompareError(models.ErrResource, childPath, side,
					fmt.Errorf("file size %d exceeds limit %d", size, limit))), nil
		}
	}

	expectedContent, err := tree.ReadAll(ctx, w.expected, childPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return w.errorNode(ctx, childPath, models.KindFile, "",
			models.NewCompareError(models.ErrIO, childPath, models.SideExpected, err)), nil
	}
	actualContent, err := tree.ReadAll(ctx, w.actual, childPath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return w.errorNode(ctx, childPath, models.KindFile, "",
			models.NewCompareError(models.ErrIO, childPath, models.SideActual, err)), nil
	}

	expectedClass := classify.Classify(expected.Name, expectedContent)
	actualClass := classify.Classify(actual.Name, actualContent)
	if expectedClass != actualClass {
		w.logger.Debug(ctx, "content classes diverge", logging.Fields{
			"path":     childPath,
			"expected": expectedClass,
			"actual":   actualClass,
		})
		return w.typeMismatchNode(childPath, models.KindFile), nil
	}

	comparator := w.registry.For(expectedClass)
	detail, err := comparator.Compare(ctx, compare.Pair{
		Path:     childPath,
		Expected: expectedContent,
		Actual:   actualContent,
	}, &w.cfg.Tolerances)
	if err != nil {
		var cmpErr *models.CompareError
		if errors.As(err, &cmpErr) {
			return w.errorNode(ctx, childPath, models.KindFile, expectedClass, cmpErr), nil
		}
		return nil, err
	}

	node := &models.DiffNode{
		Path:   childPath,
		Kind:   models.KindFile,
		Class:  expectedClass,
		Detail: detail,
	}
	if detail.Equal {
		node.Status = models.StatusEqual
	} else {
		node.Status = models.StatusModified
	}
	w.finishFile(node)
	return node, nil
}

// typeMismatchNode records a path whose two sides are not comparable,
// either file vs directory or diverging content classes
func (w *Walker) typeMismatchNode(childPath string, kind models.EntryKind) *models.DiffNode {
	node := &models.DiffNode{
		Path:   childPath,
		Kind:   kind,
		Status: models.StatusTypeMismatch,
	}
	w.finishFile(node)
	return node
}

// errorNode degrades one entry to an error outcome and records the
// failure for the report's error section
func (w *Walker) errorNode(ctx context.Context, childPath string, kind models.EntryKind, class models.ContentClass, cmpErr *models.CompareError) *models.DiffNode {
	w.logger.Warn(ctx, "entry could not be compared", logging.Fields{
		"path": childPath,
		"kind": cmpErr.Kind,
		"side": cmpErr.Side,
	})

	node := &models.DiffNode{
		Path:   childPath,
		Kind:   kind,
		Status: models.StatusError,
		Class:  class,
		Err:    cmpErr,
	}

	w.mu.Lock()
	if kind == models.KindDirectory {
		w.stats.DirsScanned++
	} else {
		w.stats.FilesScanned++
	}
	w.stats.Errored++
	w.errors = append(w.errors, cmpErr)
	w.mu.Unlock()

	if w.onNode != nil {
		w.onNode(node)
	}
	return node
}

// finishFile accounts for one completed non-error file node
func (w *Walker) finishFile(node *models.DiffNode) {
	w.mu.Lock()
	w.stats.FilesScanned++
	switch node.Status {
	case models.StatusEqual:
		w.stats.Equal++
	case models.StatusModified:
		w.stats.Modified++
	case models.StatusAdded:
		w.stats.Added++
	case models.StatusRemoved:
		w.stats.Removed++
	case models.StatusTypeMismatch:
		w.stats.TypeMismatch++
	}
	w.mu.Unlock()

	if w.onNode != nil {
		w.onNode(node)
	}
}
