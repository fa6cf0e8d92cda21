package tree

// FinalizeAll runs the one-shot post-population cleanup over this
// subtree: depth-first into every real subdirectory child, then this
// node itself. Children go first because their own dot-entry cleanup
// may reparent entries; were the local step first, a directory without
// subdirectories would get its plain-file children reparented onto
// itself and they would have to be revisited in the loop.
func (d *DirInfo) FinalizeAll() {
	if d.isDotEntry {
		return
	}

	for child := d.firstChild; child != nil; child = child.Next() {
		if sub := child.Dir(); sub != nil && !sub.isDotEntry {
			sub.FinalizeAll()
		}
	}

	// The owner is notified before finalizeLocal so it can observe the
	// stable but not yet collapsed subtree.
	if d.tree != nil {
		d.tree.sendFinalizeLocal(d)
	}
	d.finalizeLocal()
}

func (d *DirInfo) finalizeLocal() {
	d.cleanupDotEntries()
}

// cleanupDotEntries collapses the dot entry once population is done.
// If this directory ended up with no real subdirectory children, the
// file/subdirectory split is redundant and the dot entry's whole chain
// is reparented directly onto this directory. An empty dot entry is
// discarded either way. The collapse is one-way: once gone, a dot
// entry is never recreated.
func (d *DirInfo) cleanupDotEntries() {
	if d.dotEntry == nil || d.isDotEntry {
		return
	}

	if d.firstChild == nil {
		child := d.dotEntry.firstChild
		d.firstChild = child
		d.dotEntry.firstChild = nil

		for ; child != nil; child = child.Next() {
			child.setParent(d)
		}
	}

	if d.dotEntry.firstChild == nil {
		d.dotEntry = nil
	}
}
