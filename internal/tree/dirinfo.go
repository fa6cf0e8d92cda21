package tree

import (
	"time"

	"github.com/michaelscutari/dirstat/internal/entry"
)

// DotEntryName is the synthetic name of a directory's dot entry, the
// child node holding its non-directory children.
const DotEntryName = "."

// DirInfo is a directory node: an entry that owns an unordered,
// singly-linked list of children plus cached subtree summaries and the
// read-progress bookkeeping for the scan populating it.
type DirInfo struct {
	FileInfo

	firstChild Item
	dotEntry   *DirInfo

	totalSize    int64
	totalBlocks  int64
	totalItems   int64
	totalSubDirs int64
	totalFiles   int64
	latestMTime  time.Time
	summaryDirty bool

	pendingReadJobs int
	readState       ReadState

	isDotEntry     bool
	isMountPoint   bool
	isExcluded     bool
	beingDestroyed bool
}

// NewDirInfo creates a directory node and eagerly creates its dot
// entry, so plain-file children inserted later have somewhere to go.
// Meta.Kind is ignored; the node is always a directory.
func NewDirInfo(t *Tree, parent *DirInfo, meta entry.Meta) *DirInfo {
	d := &DirInfo{
		FileInfo: FileInfo{
			tree:   t,
			parent: parent,
			name:   meta.Name,
			kind:   entry.KindDir,
			size:   meta.Size,
			blocks: meta.Blocks,
			mtime:  meta.ModTime,
		},
	}
	d.init()
	d.dotEntry = newDotEntry(t, d)
	return d
}

// newDotEntry creates the synthetic grouping child. A dot entry never
// owns a further dot entry of its own.
func newDotEntry(t *Tree, parent *DirInfo) *DirInfo {
	d := &DirInfo{
		FileInfo: FileInfo{
			tree:   t,
			parent: parent,
			name:   DotEntryName,
			kind:   entry.KindDir,
		},
	}
	d.init()
	d.isDotEntry = true
	return d
}

func (d *DirInfo) init() {
	d.totalSize = d.size
	d.totalBlocks = d.blocks
	d.latestMTime = d.mtime
	d.readState = DirQueued
}

func (d *DirInfo) Dir() *DirInfo { return d }

// FirstChild returns the head of the child list. List order is
// explicitly unspecified.
func (d *DirInfo) FirstChild() Item { return d.firstChild }

// DotEntry returns the grouping child, or nil once it has been
// collapsed away during finalization.
func (d *DirInfo) DotEntry() *DirInfo { return d.dotEntry }

// IsDotEntry reports whether this node is a synthetic grouping child.
func (d *DirInfo) IsDotEntry() bool { return d.isDotEntry }

// IsBeingDestroyed reports whether this node is currently tearing down
// its owned subtree.
func (d *DirInfo) IsBeingDestroyed() bool { return d.beingDestroyed }

// SetMountPoint marks this directory as a filesystem boundary. The flag
// carries no behavior inside the tree; traversal policy lives with the
// scanner.
func (d *DirInfo) SetMountPoint(mountPoint bool) { d.isMountPoint = mountPoint }

func (d *DirInfo) IsMountPoint() bool { return d.isMountPoint }

// SetExcluded marks this directory as excluded from scanning.
func (d *DirInfo) SetExcluded(excluded bool) { d.isExcluded = excluded }

func (d *DirInfo) IsExcluded() bool { return d.isExcluded }

// InsertChild adds a new child to this directory. Directories are
// linked into this node's own child list; plain entries are forwarded
// to the dot entry so real subdirectories and files stay partitioned.
// Insertion is at the list head, in constant time.
func (d *DirInfo) InsertChild(newChild Item) {
	if newChild == nil {
		return
	}

	if newChild.IsDir() || d.dotEntry == nil || d.isDotEntry {
		// Everything lands here directly when there is no dot entry to
		// forward to, or when this node is itself a dot entry.
		newChild.setNext(d.firstChild)
		d.firstChild = newChild
		newChild.setParent(d)

		d.ChildAdded(newChild)
	} else {
		d.dotEntry.InsertChild(newChild)
	}
}

// UnlinkChild removes a child from the singly-linked list without
// destroying it. A child whose parent pointer disagrees, or that cannot
// be found despite matching parentage, indicates an ownership bug and
// is reported rather than silently ignored.
func (d *DirInfo) UnlinkChild(child Item) {
	if child.Parent() != d {
		d.report(Violation{
			Kind:   NotAChild,
			Op:     "unlinkChild",
			Node:   child.Path(),
			Parent: d.Path(),
		})
		return
	}

	if child == d.firstChild {
		d.firstChild = child.Next()
		return
	}

	for c := d.firstChild; c != nil; c = c.Next() {
		if c.Next() == child {
			c.setNext(child.Next())
			return
		}
	}

	d.report(Violation{
		Kind:   NotInList,
		Op:     "unlinkChild",
		Node:   child.Path(),
		Parent: d.Path(),
	})
}

// Destroy recursively tears down this node's owned subtree: every child
// and the dot entry. The beingDestroyed flag suppresses list surgery in
// DeletingChild while the list itself is going away.
func (d *DirInfo) Destroy() {
	d.beingDestroyed = true

	for child := d.firstChild; child != nil; {
		next := child.Next()
		if sub := child.Dir(); sub != nil {
			sub.Destroy()
		}
		if d.tree != nil {
			d.tree.sendDeletingChild(child)
		}
		d.DeletingChild(child)
		child = next
	}
	d.firstChild = nil

	if d.dotEntry != nil {
		d.dotEntry.Destroy()
		d.dotEntry = nil
	}
}

func (d *DirInfo) report(v Violation) {
	if d.tree != nil {
		d.tree.reportViolation(v)
	}
}
