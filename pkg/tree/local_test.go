package tree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/semdiff/pkg/models"
)

func setupLocal(t *testing.T) (*Local, string) {
	t.Helper()

	dir := t.TempDir()
	provider, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return provider, dir
}

func TestNewLocalRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := NewLocal(file); err == nil {
		t.Error("expected error for non-directory root")
	}
	if _, err := NewLocal(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestListSortedByteWise(t *testing.T) {
	provider, dir := setupLocal(t)
	ctx := context.Background()

	// "Z" (0x5A) sorts before "a" (0x61) byte-wise
	for _, name := range []string{"a.txt", "Z.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	entries, err := provider.List(ctx, "")
	if err != nil {
		t.Fatalf("failed to list root: %v", err)
	}

	want := []string{"Z.txt", "a.txt", "b.txt", "sub"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Name, name)
		}
	}
	if entries[3].Kind != models.KindDirectory {
		t.Errorf("sub should be a directory, got %q", entries[3].Kind)
	}
}

func TestListNested(t *testing.T) {
	provider, dir := setupLocal(t)
	ctx := context.Background()

	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "deep.txt"), []byte("deep"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	entries, err := provider.List(ctx, "a/b")
	if err != nil {
		t.Fatalf("failed to list a/b: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	// Relative paths stay slash-separated and rooted at the provider root
	if entries[0].RelativePath != "a/b/deep.txt" {
		t.Errorf("relative path = %q, want %q", entries[0].RelativePath, "a/b/deep.txt")
	}
}

func TestReadAll(t *testing.T) {
	provider, dir := setupLocal(t)
	ctx := context.Background()

	content := []byte("hello semdiff")
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), content, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	got, err := ReadAll(ctx, provider, "file.txt")
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	if _, err := ReadAll(ctx, provider, "missing.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListCancelledContext(t *testing.T) {
	provider, _ := setupLocal(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.List(ctx, ""); err == nil {
		t.Error("expected error for cancelled context")
	}
}
