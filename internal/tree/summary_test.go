package tree

import (
	"testing"
	"time"

	"github.com/michaelscutari/dirstat/internal/entry"
)

// refTotals recomputes the six summary fields of d by brute force,
// independent of the cached values.
func refTotals(d *DirInfo) (size, blocks, items, subDirs, files int64, latest time.Time) {
	size = d.size
	blocks = d.blocks
	latest = d.mtime

	var walk func(it Item)
	walk = func(it Item) {
		items++
		if it.IsDir() {
			subDirs++
		}
		if it.IsFile() {
			files++
		}

		if sub := it.Dir(); sub != nil {
			size += sub.size
			blocks += sub.blocks
			if sub.mtime.After(latest) {
				latest = sub.mtime
			}
			for c := sub.firstChild; c != nil; c = c.Next() {
				walk(c)
			}
			if sub.dotEntry != nil {
				for c := sub.dotEntry.firstChild; c != nil; c = c.Next() {
					walk(c)
				}
			}
		} else {
			size += it.Size()
			blocks += it.Blocks()
			if it.MTime().After(latest) {
				latest = it.MTime()
			}
		}
	}

	for c := d.firstChild; c != nil; c = c.Next() {
		walk(c)
	}
	if d.dotEntry != nil {
		for c := d.dotEntry.firstChild; c != nil; c = c.Next() {
			walk(c)
		}
	}
	return
}

func checkAgainstRef(t *testing.T, d *DirInfo) {
	t.Helper()
	size, blocks, items, subDirs, files, latest := refTotals(d)
	if got := d.TotalSize(); got != size {
		t.Fatalf("TotalSize = %d, want %d", got, size)
	}
	if got := d.TotalBlocks(); got != blocks {
		t.Fatalf("TotalBlocks = %d, want %d", got, blocks)
	}
	if got := d.TotalItems(); got != items {
		t.Fatalf("TotalItems = %d, want %d", got, items)
	}
	if got := d.TotalSubDirs(); got != subDirs {
		t.Fatalf("TotalSubDirs = %d, want %d", got, subDirs)
	}
	if got := d.TotalFiles(); got != files {
		t.Fatalf("TotalFiles = %d, want %d", got, files)
	}
	if got := d.LatestMTime(); !got.Equal(latest) {
		t.Fatalf("LatestMTime = %v, want %v", got, latest)
	}
}

func TestInsertOnlyAggregates(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	tr.SetRoot(root)

	metas := []entry.Meta{
		{Name: "f1", Kind: entry.KindFile, Size: 100, Blocks: 512, ModTime: time.Unix(5000, 0)},
		{Name: "f2", Kind: entry.KindFile, Size: 50, Blocks: 512, ModTime: time.Unix(9000, 0)},
		{Name: "l1", Kind: entry.KindSymlink, Size: 12, Blocks: 0, ModTime: time.Unix(100, 0)},
	}

	sub := NewDirInfo(tr, root, dirMeta("sub"))
	root.InsertChild(sub)
	inner := NewDirInfo(tr, sub, dirMeta("inner"))
	sub.InsertChild(inner)

	inserted := int64(2) // sub, inner
	for _, m := range metas {
		root.InsertChild(NewFileInfo(tr, root, m))
		inner.InsertChild(NewFileInfo(tr, inner, m))
		inserted += 2
	}

	if got := root.TotalItems(); got != inserted {
		t.Fatalf("TotalItems = %d, want %d inserted entries", got, inserted)
	}
	if got := root.TotalSubDirs(); got != 2 {
		t.Fatalf("TotalSubDirs = %d, want 2", got)
	}
	if got := root.TotalFiles(); got != 4 {
		t.Fatalf("TotalFiles = %d, want 4", got)
	}
	// 3 dirs own 4096 each, plus two copies of f1/f2/l1.
	wantSize := int64(3*4096 + 2*(100+50+12))
	if got := root.TotalSize(); got != wantSize {
		t.Fatalf("TotalSize = %d, want %d", got, wantSize)
	}
	if got := root.LatestMTime(); !got.Equal(time.Unix(9000, 0)) {
		t.Fatalf("LatestMTime = %v, want %v", got, time.Unix(9000, 0))
	}

	checkAgainstRef(t, root)
	checkAgainstRef(t, sub)
}

func TestRemovalInvalidatesAndRecalcConverges(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	tr.SetRoot(root)

	sub := NewDirInfo(tr, root, dirMeta("sub"))
	root.InsertChild(sub)

	// The file about to be removed carries the latest mtime, so stale
	// incremental math would be observable.
	newest := entry.Meta{Name: "newest", Kind: entry.KindFile, Size: 999, Blocks: 1024, ModTime: time.Unix(99999, 0)}
	victim := NewFileInfo(tr, sub, newest)
	sub.InsertChild(victim)
	sub.InsertChild(NewFileInfo(tr, sub, fileMeta("keep", 10)))

	before := root.TotalSize()
	tr.DeleteSubtree(victim)

	if !root.summaryDirty || !sub.summaryDirty {
		t.Fatalf("removal must mark the whole ancestor chain dirty")
	}

	// One accessor call makes all six fields consistent again.
	if got := root.TotalSize(); got != before-999 {
		t.Fatalf("TotalSize after removal = %d, want %d", got, before-999)
	}
	if root.summaryDirty {
		t.Fatalf("accessor did not clear the dirty flag")
	}
	if got := root.LatestMTime(); got.Equal(time.Unix(99999, 0)) {
		t.Fatalf("LatestMTime still reflects the removed entry")
	}
	checkAgainstRef(t, root)
	checkAgainstRef(t, sub)
}

func TestChildAddedSkipsDirtyNodeButStillPropagates(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	tr.SetRoot(root)
	mid := NewDirInfo(tr, root, dirMeta("mid"))
	root.InsertChild(mid)
	leaf := NewDirInfo(tr, mid, dirMeta("leaf"))
	mid.InsertChild(leaf)

	rootItemsBefore := root.totalItems
	leafItemsBefore := leaf.totalItems

	// Only mid is stale. An insert below it must still reach root.
	mid.summaryDirty = true

	leaf.InsertChild(NewFileInfo(tr, leaf, fileMeta("f", 7)))

	if leaf.totalItems != leafItemsBefore+1 {
		t.Fatalf("leaf cached items = %d, want %d", leaf.totalItems, leafItemsBefore+1)
	}
	if root.totalItems != rootItemsBefore+1 {
		t.Fatalf("propagation stopped at the dirty node: root items = %d, want %d",
			root.totalItems, rootItemsBefore+1)
	}
	if !mid.summaryDirty {
		t.Fatalf("dirty node must stay dirty until recalc")
	}

	// And the dirty node converges on first read.
	checkAgainstRef(t, mid)
	checkAgainstRef(t, root)
}
