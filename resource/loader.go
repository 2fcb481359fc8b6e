// Package resource provides the byte-stream loaders that serialized
// built-in declarations are read from.
package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader opens resources by slash-separated relative path.
// A missing resource is reported with an error wrapping fs.ErrNotExist.
// Implementations MUST be safe for concurrent calls.
type Loader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (io.ReadCloser, error)

// Open calls f(ctx, path).
func (f LoaderFunc) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return f(ctx, path)
}

// ReadAll opens path with l and reads it to the end.
func ReadAll(ctx context.Context, l Loader, path string) ([]byte, error) {
	rc, err := l.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FSLoader reads resources from a file system, such as an embed.FS or a
// txtar archive.
type FSLoader struct {
	FS fs.FS
}

// NewFSLoader returns a loader reading from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{FS: fsys}
}

// Open opens path within the file system.
func (l *FSLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.FS.Open(path)
}

// MemoryLoader serves resources held in memory.
// All operations are thread-safe.
type MemoryLoader struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryLoader creates an empty MemoryLoader.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{
		files: make(map[string][]byte),
	}
}

// Add stores content under path, replacing any previous content.
func (l *MemoryLoader) Add(path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}

	// Copy to prevent external modifications
	contentCopy := make([]byte, len(content))
	copy(contentCopy, content)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.files[path] = contentCopy
	return nil
}

// Remove deletes path.
func (l *MemoryLoader) Remove(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.files, path)
}

// Open returns a reader over the content stored under path.
func (l *MemoryLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	content, ok := l.files[path]
	l.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// CachingLoader reads each path from an underlying loader once. Concurrent
// first reads of the same path share one load.
type CachingLoader struct {
	next  Loader
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewCachingLoader wraps next with a cache.
func NewCachingLoader(next Loader) *CachingLoader {
	return &CachingLoader{
		next:  next,
		cache: make(map[string][]byte),
	}
}

// Open returns the cached content of path, loading it on first use.
// Failed loads are not cached.
func (l *CachingLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	l.mu.RLock()
	content, ok := l.cache[path]
	l.mu.RUnlock()
	if ok {
		return io.NopCloser(bytes.NewReader(content)), nil
	}

	v, err, _ := l.group.Do(path, func() (any, error) {
		data, err := ReadAll(ctx, l.next, path)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[path] = data
		l.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(v.([]byte))), nil
}

// ValidatePath checks that a resource path is relative, uses / as the
// separator, is clean and does not traverse upwards.
func ValidatePath(p string) error {
	if p == "" {
		return errors.New("path is empty")
	}

	if strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return errors.New("absolute paths not allowed")
	}

	// Windows drive letters (C:, D:, etc.)
	if len(p) >= 2 && p[1] == ':' && ((p[0] >= 'A' && p[0] <= 'Z') || (p[0] >= 'a' && p[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.New("path traversal not allowed")
		}
	}

	if cleaned := path.Clean(p); cleaned != p {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, p)
	}

	return nil
}
