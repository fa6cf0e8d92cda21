package tree

// DotEntryPolicy controls how an iteration over a directory's children
// treats the dot entry.
type DotEntryPolicy uint8

const (
	// DotEntryTransparent yields the dot entry's children inline, as if
	// they were direct children of the directory.
	DotEntryTransparent DotEntryPolicy = iota

	// DotEntryAsSubDir yields the dot entry itself, after the real
	// children, like one more subdirectory.
	DotEntryAsSubDir

	// DotEntryIgnore skips the dot entry and its contents entirely.
	DotEntryIgnore
)

// ChildIterator walks a directory's children in list order (which is
// unspecified) with a chosen dot-entry policy. Mutating the child list
// while iterating is not supported.
type ChildIterator struct {
	dir     *DirInfo
	policy  DotEntryPolicy
	current Item
	inDot   bool
	dotDone bool
}

// Iterate returns an iterator over this directory's children.
//
//	for it := d.Iterate(DotEntryTransparent); it.Item() != nil; it.Advance() {
//		...
//	}
func (d *DirInfo) Iterate(policy DotEntryPolicy) *ChildIterator {
	it := &ChildIterator{dir: d, policy: policy, current: d.firstChild}
	it.normalize()
	return it
}

// Item returns the current child, or nil when the iteration is done.
func (it *ChildIterator) Item() Item { return it.current }

// Advance moves to the next child.
func (it *ChildIterator) Advance() {
	if it.current != nil {
		it.current = it.current.Next()
	}
	it.normalize()
}

// normalize crosses from the real child list into the dot entry once
// the list is exhausted, per policy.
func (it *ChildIterator) normalize() {
	if it.current != nil || it.inDot || it.dotDone {
		return
	}

	it.dotDone = true
	dot := it.dir.dotEntry
	if dot == nil {
		return
	}

	switch it.policy {
	case DotEntryTransparent:
		it.inDot = true
		it.current = dot.firstChild
	case DotEntryAsSubDir:
		it.current = dot
	case DotEntryIgnore:
	}
}
