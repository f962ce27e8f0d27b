// ABOUTME: Filesystem primitives used by the placement engine
// ABOUTME: OSFS performs real operations; DryRunFS records them without touching the disk

package placement

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// FS is the set of blocking filesystem operations placement relies on
type FS interface {
	Copy(src, dst string) error
	Rename(src, dst string) error
	MkdirAll(path string) error
	Exists(path string) bool
	IsDir(path string) bool
}

// OSFS implements FS on the host filesystem
type OSFS struct{}

// Copy copies src to dst. dst must not exist; a partially written dst is removed.
func (OSFS) Copy(src, dst string) (err error) {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = sourceFile.Close() }()

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination: %w", closeErr)
		}

		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = io.Copy(destFile, sourceFile)

	return err
}

// Rename moves src to dst
func (OSFS) Rename(src, dst string) error {
	return os.Rename(src, dst)
}

// MkdirAll creates path and any missing parents
func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Exists reports whether anything exists at path. A path that cannot be
// inspected is reported as absent so the following write surfaces the error.
func (OSFS) Exists(path string) bool {
	_, err := os.Lstat(path)

	return err == nil
}

// IsDir reports whether path is a directory
func (OSFS) IsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// OpKind identifies a recorded dry-run operation
type OpKind string

// Recorded operation kinds
const (
	OpCopy   OpKind = "copy"
	OpRename OpKind = "rename"
	OpMkdir  OpKind = "mkdir"
)

// Op is one operation recorded by DryRunFS
type Op struct {
	Kind OpKind
	Src  string // empty for mkdir
	Dst  string
}

// DryRunFS answers queries from an underlying FS and records every write.
// Planned copies, renames and directories are visible to later queries.
type DryRunFS struct {
	base FS

	mu      sync.Mutex
	ops     []Op
	planned map[string]bool // path -> is directory
	removed map[string]bool
}

// NewDryRunFS wraps base; base is only queried, never written
func NewDryRunFS(base FS) *DryRunFS {
	return &DryRunFS{
		base:    base,
		planned: map[string]bool{},
		removed: map[string]bool{},
	}
}

// Copy records a copy. Like OSFS it refuses an existing destination,
// checked and recorded under one lock.
func (d *DryRunFS) Copy(src, dst string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.exists(dst) {
		return fmt.Errorf("%s: %w", dst, os.ErrExist)
	}

	d.ops = append(d.ops, Op{Kind: OpCopy, Src: src, Dst: dst})
	d.planned[dst] = false
	delete(d.removed, dst)

	return nil
}

// Rename records a move
func (d *DryRunFS) Rename(src, dst string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ops = append(d.ops, Op{Kind: OpRename, Src: src, Dst: dst})
	d.planned[dst] = false
	d.removed[src] = true
	delete(d.planned, src)

	return nil
}

// MkdirAll records a directory creation when the directory does not exist yet
func (d *DryRunFS) MkdirAll(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if isDir, ok := d.planned[path]; (ok && isDir) || d.base.IsDir(path) {
		return nil
	}

	d.ops = append(d.ops, Op{Kind: OpMkdir, Dst: path})
	d.planned[path] = true

	return nil
}

// Exists consults planned operations first, then the underlying FS
func (d *DryRunFS) Exists(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.exists(path)
}

// exists must be called with mu held
func (d *DryRunFS) exists(path string) bool {
	if _, ok := d.planned[path]; ok {
		return true
	}

	if d.removed[path] {
		return false
	}

	return d.base.Exists(path)
}

// IsDir consults planned operations first, then the underlying FS
func (d *DryRunFS) IsDir(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if isDir, ok := d.planned[path]; ok {
		return isDir
	}

	return d.base.IsDir(path)
}

// Ops returns the recorded operations in order
func (d *DryRunFS) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Op, len(d.ops))
	copy(out, d.ops)

	return out
}
