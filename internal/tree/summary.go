package tree

import "time"

// The six summary accessors share one contract: if the cached summary
// is stale, recalculate the whole subtree first, then return the cached
// field. Between mutations repeated calls are O(1).

func (d *DirInfo) TotalSize() int64 {
	if d.summaryDirty {
		d.recalc()
	}
	return d.totalSize
}

func (d *DirInfo) TotalBlocks() int64 {
	if d.summaryDirty {
		d.recalc()
	}
	return d.totalBlocks
}

func (d *DirInfo) TotalItems() int64 {
	if d.summaryDirty {
		d.recalc()
	}
	return d.totalItems
}

func (d *DirInfo) TotalSubDirs() int64 {
	if d.summaryDirty {
		d.recalc()
	}
	return d.totalSubDirs
}

func (d *DirInfo) TotalFiles() int64 {
	if d.summaryDirty {
		d.recalc()
	}
	return d.totalFiles
}

func (d *DirInfo) LatestMTime() time.Time {
	if d.summaryDirty {
		d.recalc()
	}
	return d.latestMTime
}

// recalc re-derives all summary fields from scratch by walking every
// direct child, with the dot entry iterated as if it were an ordinary
// subdirectory. The dot entry contributes its subtree totals but is
// never itself counted as an item or a subdirectory.
func (d *DirInfo) recalc() {
	d.totalSize = d.size
	d.totalBlocks = d.blocks
	d.totalItems = 0
	d.totalSubDirs = 0
	d.totalFiles = 0
	d.latestMTime = d.mtime

	for it := d.Iterate(DotEntryAsSubDir); it.Item() != nil; it.Advance() {
		child := it.Item()

		d.totalSize += child.TotalSize()
		d.totalBlocks += child.TotalBlocks()
		d.totalSubDirs += child.TotalSubDirs()
		d.totalFiles += child.TotalFiles()

		if sub := child.Dir(); sub != nil && sub.isDotEntry {
			d.totalItems += child.TotalItems()
		} else {
			d.totalItems += child.TotalItems() + 1
			if child.IsDir() {
				d.totalSubDirs++
			}
			if child.IsFile() {
				d.totalFiles++
			}
		}

		if childLatest := child.LatestMTime(); childLatest.After(d.latestMTime) {
			d.latestMTime = childLatest
		}
	}

	d.summaryDirty = false
}

// ChildAdded updates the cached summary for one newly inserted child
// and propagates up the parent chain. A node whose summary is already
// dirty skips the local update (the next recalc covers it) but still
// forwards the call, since an ancestor might not be dirty yet.
func (d *DirInfo) ChildAdded(newChild Item) {
	if !d.summaryDirty {
		d.totalSize += newChild.Size()
		d.totalBlocks += newChild.Blocks()
		d.totalItems++

		if newChild.IsDir() {
			d.totalSubDirs++
		}
		if newChild.IsFile() {
			d.totalFiles++
		}

		if newChild.MTime().After(d.latestMTime) {
			d.latestMTime = newChild.MTime()
		}
	}

	if d.parent != nil {
		d.parent.ChildAdded(newChild)
	}
}

// DeletingChild invalidates the summary here and on every ancestor.
// The removed subtree might hold the current latest mtime, and finding
// the second-latest without a rescan is not affordable, so removal is
// never reflected incrementally. After propagating, the child is
// unlinked from the list unless this node is itself mid-teardown.
func (d *DirInfo) DeletingChild(deletedChild Item) {
	d.summaryDirty = true

	if d.parent != nil {
		d.parent.DeletingChild(deletedChild)
	}

	if !d.beingDestroyed && deletedChild.Parent() == d {
		d.UnlinkChild(deletedChild)
	}
}
