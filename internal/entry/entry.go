package entry

import (
	"os"
	"time"
)

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile    Kind = 0
	KindDir     Kind = 1
	KindSymlink Kind = 2
	KindOther   Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from an os.FileMode.
func KindFromMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Meta holds the raw metadata for one discovered filesystem entry,
// as read by the scanner before insertion into the tree.
type Meta struct {
	Name    string
	Kind    Kind
	Size    int64 // Apparent size (st_size)
	Blocks  int64 // Disk usage in bytes (st_blocks * 512)
	ModTime time.Time
	DevID   uint64
	Inode   uint64
}

// ScanError represents an error encountered during scanning.
type ScanError struct {
	Path    string
	Message string
}
