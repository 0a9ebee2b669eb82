package tree

import (
	"context"
	"io"
	"time"

	"github.com/sdejongh/semdiff/pkg/models"
)

// Entry represents one filesystem node inside a compared root
type Entry struct {
	// RelativePath is the path relative to the provider root,
	// slash-separated on every platform
	RelativePath string

	// Name is the final path segment
	Name string

	// Kind indicates file or directory
	Kind models.EntryKind

	// Size in bytes (files only)
	Size int64

	// ModTime is the last modification time
	ModTime time.Time
}

// Provider supplies a lazily enumerable tree of entries for one root.
// Implementations must not materialize the whole tree up front: List
// yields one directory level at a time and file content is read on demand.
type Provider interface {
	// Root returns the absolute root path this provider serves
	Root() string

	// List returns the immediate children of the given relative directory
	// path, sorted byte-wise by name. Listing the empty path enumerates
	// the root itself.
	List(ctx context.Context, relPath string) ([]Entry, error)

	// Read opens a file for reading
	Read(ctx context.Context, relPath string) (io.ReadCloser, error)

	// Stat returns the entry at the given relative path
	Stat(ctx context.Context, relPath string) (*Entry, error)

	// Close releases any resources held by the provider
	Close() error
}

// ReadAll reads a file's entire content through a provider
func ReadAll(ctx context.Context, p Provider, relPath string) ([]byte, error) {
	r, err := p.Read(ctx, relPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
