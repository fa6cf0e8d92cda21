package tree

import "fmt"

// ViolationKind classifies an ownership or list-integrity problem
// detected during child-list surgery.
type ViolationKind uint8

const (
	// NotAChild: an unlink was requested for an entry whose parent
	// pointer names a different directory.
	NotAChild ViolationKind = iota

	// NotInList: the entry claims this directory as parent but a linear
	// scan of the child list did not find it.
	NotInList
)

func (k ViolationKind) String() string {
	switch k {
	case NotAChild:
		return "not-a-child"
	default:
		return "not-in-list"
	}
}

// Violation describes one detected bookkeeping bug. Violations are
// local and non-fatal: the operation that found one aborts without
// mutating the tree, and the caller decides whether the scan goes on.
type Violation struct {
	Kind   ViolationKind
	Op     string
	Node   string
	Parent string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s in %s: %q under %q", v.Kind, v.Op, v.Node, v.Parent)
}

// Reporter consumes violation reports. The tree never writes to any
// output sink itself; the owner wires a reporter to whatever channel it
// wants violations on.
type Reporter func(Violation)

// Tree owns a scanned subtree: the root directory plus the callbacks
// through which the tree talks back to its owner.
type Tree struct {
	root *DirInfo

	onFinalizeLocal func(*DirInfo)
	onDeletingChild func(Item)
	reporter        Reporter
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// Root returns the tree's root directory, or nil before the first scan.
func (t *Tree) Root() *DirInfo { return t.root }

// SetRoot installs the root directory. An existing root is destroyed
// first.
func (t *Tree) SetRoot(root *DirInfo) {
	if t.root != nil && t.root != root {
		t.root.Destroy()
	}
	t.root = root
}

// OnFinalizeLocal registers a callback fired for each directory right
// before its local finalization, while its dot entry is still intact.
func (t *Tree) OnFinalizeLocal(fn func(*DirInfo)) { t.onFinalizeLocal = fn }

// OnDeletingChild registers a callback fired for each node about to be
// removed, both for explicit removals and during subtree teardown.
func (t *Tree) OnDeletingChild(fn func(Item)) { t.onDeletingChild = fn }

// SetReporter installs the consumer for ownership and list-integrity
// violations.
func (t *Tree) SetReporter(r Reporter) { t.reporter = r }

// DeleteSubtree removes an item and its entire subtree from the tree.
// Ancestor summaries are invalidated, not decremented; the next summary
// read recomputes them.
func (t *Tree) DeleteSubtree(item Item) {
	if item == nil {
		return
	}

	t.sendDeletingChild(item)

	if d := item.Dir(); d != nil {
		d.Destroy()
	}

	if p := item.Parent(); p != nil {
		p.DeletingChild(item)
	}

	if t.root != nil && item == Item(t.root) {
		t.root = nil
	}
}

// Clear destroys the whole tree.
func (t *Tree) Clear() {
	if t.root != nil {
		t.root.Destroy()
		t.root = nil
	}
}

func (t *Tree) sendFinalizeLocal(d *DirInfo) {
	if t.onFinalizeLocal != nil {
		t.onFinalizeLocal(d)
	}
}

func (t *Tree) sendDeletingChild(item Item) {
	if t.onDeletingChild != nil {
		t.onDeletingChild(item)
	}
}

func (t *Tree) reportViolation(v Violation) {
	if t.reporter != nil {
		t.reporter(v)
	}
}
