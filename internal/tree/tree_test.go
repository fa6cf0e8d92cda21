package tree

import (
	"testing"
)

// buildFixture creates /root with two levels of subdirectories and a
// few files parked in dot entries. Returns the tree and entry count.
func buildFixture(tr *Tree) (*DirInfo, int64) {
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	tr.SetRoot(root)

	count := int64(0)
	for _, name := range []string{"a", "b"} {
		sub := NewDirInfo(tr, root, dirMeta(name))
		root.InsertChild(sub)
		count++
		for i := 0; i < 3; i++ {
			sub.InsertChild(NewFileInfo(tr, sub, fileMeta(name+"-file", int64(i+1))))
			count++
		}
		inner := NewDirInfo(tr, sub, dirMeta(name+"-inner"))
		sub.InsertChild(inner)
		count++
		inner.InsertChild(NewFileInfo(tr, inner, fileMeta("deep", 7)))
		count++
	}
	return root, count
}

func TestDestroyIsSafeAndSilent(t *testing.T) {
	tr := New()
	var violations []Violation
	tr.SetReporter(func(v Violation) { violations = append(violations, v) })

	root, _ := buildFixture(tr)

	notified := 0
	tr.OnDeletingChild(func(item Item) {
		notified++
		// The owning directory must be flagged for the whole teardown,
		// so no notification path attempts list surgery on it.
		if p := item.Parent(); p != nil && !p.IsBeingDestroyed() && !p.IsDotEntry() {
			t.Fatalf("parent of %q not flagged as being destroyed", item.Name())
		}
	})

	root.Destroy()

	if len(violations) != 0 {
		t.Fatalf("teardown reported %d violations: %v", len(violations), violations)
	}
	if notified == 0 {
		t.Fatalf("teardown sent no removal notifications")
	}
	if root.FirstChild() != nil || root.DotEntry() != nil {
		t.Fatalf("teardown left dangling child references")
	}
}

func TestDeleteSubtreeUpdatesAncestors(t *testing.T) {
	tr := New()
	var violations []Violation
	tr.SetReporter(func(v Violation) { violations = append(violations, v) })

	root, count := buildFixture(tr)

	if got := root.TotalItems(); got != count {
		t.Fatalf("TotalItems = %d, want %d", got, count)
	}

	// Remove subtree "a": itself + 3 files + inner dir + 1 deep file.
	var a *DirInfo
	for c := root.FirstChild(); c != nil; c = c.Next() {
		if c.Name() == "a" {
			a = c.Dir()
		}
	}
	if a == nil {
		t.Fatalf("fixture missing subtree a")
	}

	tr.DeleteSubtree(a)

	if len(violations) != 0 {
		t.Fatalf("subtree removal reported violations: %v", violations)
	}
	for c := root.FirstChild(); c != nil; c = c.Next() {
		if c == Item(a) {
			t.Fatalf("removed subtree still linked under root")
		}
	}
	if got := root.TotalItems(); got != count-6 {
		t.Fatalf("TotalItems after removal = %d, want %d", got, count-6)
	}
	checkAgainstRef(t, root)
}

func TestDeleteSubtreeOfRootClearsTree(t *testing.T) {
	tr := New()
	root, _ := buildFixture(tr)

	tr.DeleteSubtree(root)
	if tr.Root() != nil {
		t.Fatalf("deleting the root must clear the tree")
	}
}

func TestPathSkipsDotEntries(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	sub := NewDirInfo(tr, root, dirMeta("sub"))
	root.InsertChild(sub)
	file := NewFileInfo(tr, sub, fileMeta("f.txt", 1))
	sub.InsertChild(file)

	if got := file.Path(); got != "/root/sub/f.txt" {
		t.Fatalf("Path = %q, want /root/sub/f.txt", got)
	}
	if file.Parent() != sub.DotEntry() {
		t.Fatalf("fixture expectation: file should live under the dot entry")
	}
}
