package walk

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/semdiff/pkg/compare"
	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
	"github.com/sdejongh/semdiff/pkg/tree"
)

func writeFile(t *testing.T, root, relPath string, content []byte) {
	t.Helper()
	fullPath := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func runWalk(t *testing.T, expectedRoot, actualRoot string, cfg *config.Config) *models.Report {
	t.Helper()
	expected, err := tree.NewLocal(expectedRoot)
	if err != nil {
		t.Fatalf("failed to open expected root: %v", err)
	}
	actual, err := tree.NewLocal(actualRoot)
	if err != nil {
		t.Fatalf("failed to open actual root: %v", err)
	}

	w := New(expected, actual, compare.NewRegistry(), cfg, nil)
	report, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	return report
}

func findNode(root *models.DiffNode, path string) *models.DiffNode {
	var found *models.DiffNode
	root.Walk(func(n *models.DiffNode) {
		if n.Path == path {
			found = n
		}
	})
	return found
}

func TestWalkIdenticalTrees(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	for _, root := range []string{expectedRoot, actualRoot} {
		writeFile(t, root, "readme.txt", []byte("hello\n"))
		writeFile(t, root, "data/config.json", []byte(`{"a": 1}`))
	}

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if report.Status != models.StatusClean {
		t.Errorf("status = %s, want %s", report.Status, models.StatusClean)
	}
	if report.Status.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", report.Status.ExitCode())
	}
	if report.Stats.FilesScanned != 2 || report.Stats.Equal != 2 {
		t.Errorf("stats = %+v, want 2 files all equal", report.Stats)
	}
	if !report.Root.IsEqual() {
		t.Error("root of identical trees should be equal")
	}
}

func TestWalkModifiedFile(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "a.txt", []byte("one\n"))
	writeFile(t, actualRoot, "a.txt", []byte("two\n"))

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if report.Status != models.StatusDifferent {
		t.Errorf("status = %s, want %s", report.Status, models.StatusDifferent)
	}
	if report.Status.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", report.Status.ExitCode())
	}

	node := findNode(report.Root, "a.txt")
	if node == nil {
		t.Fatal("a.txt missing from tree")
	}
	if node.Status != models.StatusModified {
		t.Errorf("node status = %s, want %s", node.Status, models.StatusModified)
	}
	if node.Class != models.ClassText || node.Detail == nil || node.Detail.Text == nil {
		t.Error("modified text node should carry text detail")
	}
}

func TestWalkRenamedFileIsRemovedPlusAdded(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	content := []byte("same content\n")
	writeFile(t, expectedRoot, "old.txt", content)
	writeFile(t, actualRoot, "new.txt", content)

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if report.Stats.Removed != 1 || report.Stats.Added != 1 {
		t.Errorf("stats = %+v, want one removed and one added", report.Stats)
	}
	if report.Stats.Modified != 0 {
		t.Error("a rename must never count as modified")
	}

	if n := findNode(report.Root, "old.txt"); n == nil || n.Status != models.StatusRemoved {
		t.Errorf("old.txt should be removed, got %+v", n)
	}
	if n := findNode(report.Root, "new.txt"); n == nil || n.Status != models.StatusAdded {
		t.Errorf("new.txt should be added, got %+v", n)
	}
}

func TestWalkAddedDirectoryEnumerated(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "base.txt", []byte("x"))
	writeFile(t, actualRoot, "base.txt", []byte("x"))
	writeFile(t, actualRoot, "extra/one.txt", []byte("1"))
	writeFile(t, actualRoot, "extra/sub/two.txt", []byte("2"))

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if report.Stats.Added != 2 {
		t.Errorf("Added = %d, want both nested files", report.Stats.Added)
	}

	dir := findNode(report.Root, "extra")
	if dir == nil || dir.Status != models.StatusAdded || dir.Kind != models.KindDirectory {
		t.Fatalf("extra should be an added directory, got %+v", dir)
	}
	if n := findNode(report.Root, "extra/sub/two.txt"); n == nil || n.Status != models.StatusAdded {
		t.Errorf("nested added file should be enumerated, got %+v", n)
	}
}

func TestWalkDirectoryVersusFile(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "thing/inner.txt", []byte("x"))
	writeFile(t, actualRoot, "thing", []byte("now a file"))

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if report.Stats.TypeMismatch != 1 {
		t.Errorf("TypeMismatch = %d, want 1", report.Stats.TypeMismatch)
	}
	if n := findNode(report.Root, "thing"); n == nil || n.Status != models.StatusTypeMismatch {
		t.Errorf("thing should be a type mismatch, got %+v", n)
	}
}

func TestWalkClassMismatch(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "data.json", []byte(`{"valid": true}`))
	writeFile(t, actualRoot, "data.json", []byte("plain text, not json"))

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if n := findNode(report.Root, "data.json"); n == nil || n.Status != models.StatusTypeMismatch {
		t.Errorf("diverging content classes should be a type mismatch, got %+v", n)
	}
}

func TestWalkDecodeErrorDegrades(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	valid := buf.Bytes()
	truncated := valid[:24] // keeps the PNG signature, drops the pixel data

	writeFile(t, expectedRoot, "pic.png", valid)
	writeFile(t, actualRoot, "pic.png", truncated)
	writeFile(t, expectedRoot, "ok.txt", []byte("fine\n"))
	writeFile(t, actualRoot, "ok.txt", []byte("fine\n"))

	report := runWalk(t, expectedRoot, actualRoot, config.Default())
	if report.Status != models.StatusErrored {
		t.Errorf("status = %s, want %s", report.Status, models.StatusErrored)
	}
	if report.Status.ExitCode() != 2 {
		t.Errorf("exit code = %d, want 2", report.Status.ExitCode())
	}

	node := findNode(report.Root, "pic.png")
	if node == nil || node.Status != models.StatusError {
		t.Fatalf("pic.png should be an error node, got %+v", node)
	}
	if node.Err == nil || node.Err.Kind != models.ErrDecode {
		t.Errorf("error kind = %+v, want %s", node.Err, models.ErrDecode)
	}
	if len(report.Errors) != 1 {
		t.Errorf("report carries %d errors, want 1", len(report.Errors))
	}

	// The sibling must still have been compared
	if n := findNode(report.Root, "ok.txt"); n == nil || n.Status != models.StatusEqual {
		t.Errorf("sibling of an error node should still compare, got %+v", n)
	}
}

func TestWalkErrorsDominateDifferences(t *testing.T) {
	stats := models.Statistics{Modified: 3, Errored: 1}
	if got := models.StatusFor(stats); got != models.StatusErrored {
		t.Errorf("StatusFor = %s, want %s", got, models.StatusErrored)
	}
}

func TestWalkFileSizeLimit(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "big.bin", bytes.Repeat([]byte{0xAB}, 2048))
	writeFile(t, actualRoot, "big.bin", bytes.Repeat([]byte{0xAB}, 2048))

	cfg := config.Default()
	cfg.Performance.MaxFileSizeBytes = 1024

	report := runWalk(t, expectedRoot, actualRoot, cfg)
	node := findNode(report.Root, "big.bin")
	if node == nil || node.Status != models.StatusError {
		t.Fatalf("oversized file should be an error node, got %+v", node)
	}
	if node.Err.Kind != models.ErrResource {
		t.Errorf("error kind = %s, want %s", node.Err.Kind, models.ErrResource)
	}
}

func TestWalkUnreadableRootIsFatal(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, actualRoot, "a.txt", []byte("x"))

	expected, err := tree.NewLocal(expectedRoot)
	if err != nil {
		t.Fatalf("failed to open expected root: %v", err)
	}
	actual, err := tree.NewLocal(actualRoot)
	if err != nil {
		t.Fatalf("failed to open actual root: %v", err)
	}

	// Yank the directory out from under the provider
	if err := os.RemoveAll(expectedRoot); err != nil {
		t.Fatalf("failed to remove root: %v", err)
	}

	w := New(expected, actual, compare.NewRegistry(), config.Default(), nil)
	report, err := w.Run(context.Background())
	if err == nil {
		t.Fatal("an unreadable root should fail the run")
	}
	if report.Status != models.StatusFatal {
		t.Errorf("status = %s, want %s", report.Status, models.StatusFatal)
	}
	if report.Status.ExitCode() != 3 {
		t.Errorf("exit code = %d, want 3", report.Status.ExitCode())
	}
}

func TestWalkCancelledContext(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "a.txt", []byte("x"))
	writeFile(t, actualRoot, "a.txt", []byte("x"))

	expected, _ := tree.NewLocal(expectedRoot)
	actual, _ := tree.NewLocal(actualRoot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(expected, actual, compare.NewRegistry(), config.Default(), nil)
	if _, err := w.Run(ctx); err == nil {
		t.Fatal("a cancelled context should fail the run")
	}
}

func TestWalkNodeCallback(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	writeFile(t, expectedRoot, "a.txt", []byte("x"))
	writeFile(t, expectedRoot, "b.txt", []byte("y"))
	writeFile(t, actualRoot, "a.txt", []byte("x"))
	writeFile(t, actualRoot, "b.txt", []byte("changed"))

	expected, _ := tree.NewLocal(expectedRoot)
	actual, _ := tree.NewLocal(actualRoot)

	w := New(expected, actual, compare.NewRegistry(), config.Default(), nil)
	done := make(chan string, 16)
	w.OnNode(func(n *models.DiffNode) { done <- n.Path })

	if _, err := w.Run(context.Background()); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	close(done)

	paths := make(map[string]bool)
	for p := range done {
		paths[p] = true
	}
	if !paths["a.txt"] || !paths["b.txt"] {
		t.Errorf("callback saw %v, want both files", paths)
	}
}

// brokenListProvider fails to enumerate one subdirectory, standing in
// for a directory that disappears or loses permissions mid-walk
type brokenListProvider struct {
	tree.Provider
	failPath string
}

func (p *brokenListProvider) List(ctx context.Context, relPath string) ([]tree.Entry, error) {
	if relPath == p.failPath {
		return nil, errors.New("permission denied")
	}
	return p.Provider.List(ctx, relPath)
}

func TestWalkDirectoryListFailureCountsAsDirectory(t *testing.T) {
	expectedRoot, actualRoot := t.TempDir(), t.TempDir()
	for _, root := range []string{expectedRoot, actualRoot} {
		writeFile(t, root, "sub/file.txt", []byte("content\n"))
	}

	expected, err := tree.NewLocal(expectedRoot)
	if err != nil {
		t.Fatalf("failed to open expected root: %v", err)
	}
	actual, err := tree.NewLocal(actualRoot)
	if err != nil {
		t.Fatalf("failed to open actual root: %v", err)
	}

	w := New(&brokenListProvider{Provider: expected, failPath: "sub"}, actual,
		compare.NewRegistry(), config.Default(), nil)
	report, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	node := findNode(report.Root, "sub")
	if node == nil {
		t.Fatal("the unreadable directory should still appear in the tree")
	}
	if node.Status != models.StatusError {
		t.Errorf("status = %s, want %s", node.Status, models.StatusError)
	}
	if node.Kind != models.KindDirectory {
		t.Errorf("kind = %s, want %s", node.Kind, models.KindDirectory)
	}

	if report.Stats.Errored != 1 {
		t.Errorf("Errored = %d, want 1", report.Stats.Errored)
	}
	if report.Stats.FilesScanned != 0 {
		t.Errorf("FilesScanned = %d, want 0: a failed directory listing is not a file", report.Stats.FilesScanned)
	}
	if report.Stats.DirsScanned != 2 {
		t.Errorf("DirsScanned = %d, want the root plus the unreadable directory", report.Stats.DirsScanned)
	}
}
