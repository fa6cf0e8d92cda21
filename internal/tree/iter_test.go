package tree

import (
	"sort"
	"testing"
)

func collectNames(d *DirInfo, policy DotEntryPolicy) []string {
	var names []string
	for it := d.Iterate(policy); it.Item() != nil; it.Advance() {
		names = append(names, it.Item().Name())
	}
	sort.Strings(names)
	return names
}

func TestIterateDotEntryPolicies(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))

	root.InsertChild(NewDirInfo(tr, root, dirMeta("sub1")))
	root.InsertChild(NewDirInfo(tr, root, dirMeta("sub2")))
	root.InsertChild(NewFileInfo(tr, root, fileMeta("file1", 1)))
	root.InsertChild(NewFileInfo(tr, root, fileMeta("file2", 2)))

	got := collectNames(root, DotEntryIgnore)
	want := []string{"sub1", "sub2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ignore policy: got %v, want %v", got, want)
	}

	got = collectNames(root, DotEntryTransparent)
	want = []string{"file1", "file2", "sub1", "sub2"}
	if len(got) != len(want) {
		t.Fatalf("transparent policy: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transparent policy: got %v, want %v", got, want)
		}
	}

	got = collectNames(root, DotEntryAsSubDir)
	want = []string{DotEntryName, "sub1", "sub2"}
	if len(got) != len(want) {
		t.Fatalf("as-subdir policy: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("as-subdir policy: got %v, want %v", got, want)
		}
	}
}

func TestIterateAfterCollapse(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))
	root.InsertChild(NewFileInfo(tr, root, fileMeta("a", 1)))
	root.FinalizeAll()

	// No dot entry left: every policy sees the same flat list.
	for _, policy := range []DotEntryPolicy{DotEntryTransparent, DotEntryAsSubDir, DotEntryIgnore} {
		got := collectNames(root, policy)
		if len(got) != 1 || got[0] != "a" {
			t.Fatalf("policy %d after collapse: got %v", policy, got)
		}
	}
}

func TestIterateEmptyDir(t *testing.T) {
	tr := New()
	root := NewDirInfo(tr, nil, dirMeta("/root"))

	if it := root.Iterate(DotEntryTransparent); it.Item() != nil {
		t.Fatalf("empty directory iteration yielded %v", it.Item().Name())
	}
	// The empty dot entry is still yielded as a subdir.
	it := root.Iterate(DotEntryAsSubDir)
	if it.Item() == nil || it.Item().Name() != DotEntryName {
		t.Fatalf("as-subdir policy must yield the dot entry")
	}
	it.Advance()
	if it.Item() != nil {
		t.Fatalf("iteration did not terminate after the dot entry")
	}
}
