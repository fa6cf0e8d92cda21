// Package tree implements the in-memory model of a scanned directory
// subtree: a hierarchy of entries with cached per-subtree aggregates
// (size, disk usage, counts, latest mtime) that stay cheap to query
// while an asynchronous scan is still populating the tree.
//
// The package performs no filesystem I/O itself. All mutation entry
// points assume a single logical writer; see internal/scan for the
// population process that serializes its calls through one goroutine.
package tree

import (
	"path/filepath"
	"time"

	"github.com/michaelscutari/dirstat/internal/entry"
)

// Item is one node in the tree: a plain entry (*FileInfo) or a
// directory (*DirInfo). Summary accessors on a plain entry return its
// own attributes; on a directory they return cached subtree aggregates
// and may trigger a recalculation, so they are not read-only with
// respect to internal state.
type Item interface {
	Name() string
	Size() int64
	Blocks() int64
	MTime() time.Time
	Kind() entry.Kind
	IsDir() bool
	IsFile() bool
	Path() string

	Parent() *DirInfo
	Next() Item

	TotalSize() int64
	TotalBlocks() int64
	TotalItems() int64
	TotalSubDirs() int64
	TotalFiles() int64
	LatestMTime() time.Time

	// Dir returns the item as a directory node, or nil for plain entries.
	Dir() *DirInfo

	setParent(p *DirInfo)
	setNext(next Item)
}

// FileInfo is the base node type: one filesystem item with its stat
// attributes and the non-owning linkage into its parent's child list.
type FileInfo struct {
	tree   *Tree
	parent *DirInfo
	next   Item

	name   string
	kind   entry.Kind
	size   int64
	blocks int64
	mtime  time.Time
}

// NewFileInfo creates a plain (non-directory) entry. Directories must
// be created with NewDirInfo so they get a child list and summaries.
func NewFileInfo(t *Tree, parent *DirInfo, meta entry.Meta) *FileInfo {
	return &FileInfo{
		tree:   t,
		parent: parent,
		name:   meta.Name,
		kind:   meta.Kind,
		size:   meta.Size,
		blocks: meta.Blocks,
		mtime:  meta.ModTime,
	}
}

func (f *FileInfo) Name() string       { return f.name }
func (f *FileInfo) Size() int64        { return f.size }
func (f *FileInfo) Blocks() int64      { return f.blocks }
func (f *FileInfo) MTime() time.Time   { return f.mtime }
func (f *FileInfo) Kind() entry.Kind   { return f.kind }
func (f *FileInfo) IsDir() bool        { return f.kind == entry.KindDir }
func (f *FileInfo) IsFile() bool       { return f.kind == entry.KindFile }
func (f *FileInfo) Parent() *DirInfo   { return f.parent }
func (f *FileInfo) Next() Item         { return f.next }
func (f *FileInfo) Tree() *Tree        { return f.tree }

func (f *FileInfo) setParent(p *DirInfo) { f.parent = p }
func (f *FileInfo) setNext(next Item)    { f.next = next }

// Leaf summaries are just the entry's own attributes.

func (f *FileInfo) TotalSize() int64       { return f.size }
func (f *FileInfo) TotalBlocks() int64     { return f.blocks }
func (f *FileInfo) TotalItems() int64      { return 0 }
func (f *FileInfo) TotalSubDirs() int64    { return 0 }
func (f *FileInfo) TotalFiles() int64      { return 0 }
func (f *FileInfo) LatestMTime() time.Time { return f.mtime }

func (f *FileInfo) Dir() *DirInfo { return nil }

// Path reconstructs the item's path from the parent chain. Dot entries
// are transparent: their synthetic "." component is skipped.
func (f *FileInfo) Path() string {
	path := f.name
	for d := f.parent; d != nil; d = d.parent {
		if !d.isDotEntry {
			path = filepath.Join(d.name, path)
		}
	}
	return path
}
