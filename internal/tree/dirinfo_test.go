package tree

import (
	"testing"
	"time"

	"github.com/michaelscutari/dirstat/internal/entry"
)

func dirMeta(name string) entry.Meta {
	return entry.Meta{Name: name, Kind: entry.KindDir, Size: 4096, Blocks: 4096, ModTime: time.Unix(1000, 0)}
}

func fileMeta(name string, size int64) entry.Meta {
	return entry.Meta{Name: name, Kind: entry.KindFile, Size: size, Blocks: size, ModTime: time.Unix(2000, 0)}
}

func TestInsertChildRoutingPartition(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	tr.SetRoot(root)

	sub := NewDirInfo(tr, root, dirMeta("sub"))
	root.InsertChild(sub)
	file := NewFileInfo(tr, root, fileMeta("file.txt", 10))
	root.InsertChild(file)

	// The directory lands in the direct child list, never in the dot entry.
	foundDirect := false
	for c := root.FirstChild(); c != nil; c = c.Next() {
		if c == Item(sub) {
			foundDirect = true
		}
		if c == Item(file) {
			t.Fatalf("file inserted into direct child list")
		}
	}
	if !foundDirect {
		t.Fatalf("directory child missing from direct child list")
	}

	// The file lands in the dot entry, nowhere else.
	dot := root.DotEntry()
	if dot == nil {
		t.Fatalf("expected dot entry")
	}
	foundDot := false
	for c := dot.FirstChild(); c != nil; c = c.Next() {
		if c == Item(file) {
			foundDot = true
		}
	}
	if !foundDot {
		t.Fatalf("file missing from dot entry child list")
	}
	if file.Parent() != dot {
		t.Fatalf("file parent = %v, want dot entry", file.Parent())
	}
	if sub.Parent() != root {
		t.Fatalf("sub parent = %v, want root", sub.Parent())
	}
}

func TestInsertChildIntoDotEntryStoresDirectly(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	dot := root.DotEntry()

	if dot.DotEntry() != nil {
		t.Fatalf("dot entry must not own a dot entry of its own")
	}
	if dot.Name() != DotEntryName {
		t.Fatalf("dot entry name = %q, want %q", dot.Name(), DotEntryName)
	}

	file := NewFileInfo(tr, dot, fileMeta("a", 1))
	dot.InsertChild(file)
	if dot.FirstChild() != Item(file) {
		t.Fatalf("dot entry did not store the file directly")
	}
}

func TestUnlinkChild(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))

	a := NewDirInfo(tr, root, dirMeta("a"))
	b := NewDirInfo(tr, root, dirMeta("b"))
	c := NewDirInfo(tr, root, dirMeta("c"))
	root.InsertChild(a)
	root.InsertChild(b)
	root.InsertChild(c)

	// Head insertion means list order is c, b, a.
	root.UnlinkChild(b)
	var names []string
	for ch := root.FirstChild(); ch != nil; ch = ch.Next() {
		names = append(names, ch.Name())
	}
	if len(names) != 2 || names[0] != "c" || names[1] != "a" {
		t.Fatalf("unexpected list after middle unlink: %v", names)
	}

	root.UnlinkChild(c)
	if root.FirstChild() != Item(a) {
		t.Fatalf("head unlink failed")
	}
}

func TestUnlinkChildReportsViolations(t *testing.T) {
	tr := New()
	var got []Violation
	tr.SetReporter(func(v Violation) { got = append(got, v) })

	root := NewDirInfo(tr, nil, dirMeta("/root"))
	other := NewDirInfo(tr, nil, dirMeta("/other"))

	stranger := NewDirInfo(tr, other, dirMeta("stranger"))
	other.InsertChild(stranger)

	// Not this node's child: reported, list untouched.
	root.UnlinkChild(stranger)
	if len(got) != 1 || got[0].Kind != NotAChild {
		t.Fatalf("expected one not-a-child violation, got %v", got)
	}
	if other.FirstChild() != Item(stranger) {
		t.Fatalf("foreign list was mutated")
	}

	// Parent pointer agrees but the entry is not in the list: a prior
	// bookkeeping bug, reported rather than patched over.
	ghost := NewDirInfo(tr, root, dirMeta("ghost"))
	root.UnlinkChild(ghost)
	if len(got) != 2 || got[1].Kind != NotInList {
		t.Fatalf("expected not-in-list violation, got %v", got)
	}
}
