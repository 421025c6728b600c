package walker

import (
	"archive/tar"
	"io"
)

type Kind int

const (
	OPEN Kind = iota
	CLOSE
	LEAF
	IGNORE
	ERROR
	MISSING
)

func (k Kind) String() string {
	switch k {
	case OPEN:
		return "OPEN"
	case CLOSE:
		return "CLOSE"
	case LEAF:
		return "LEAF"
	case IGNORE:
		return "IGNORE"
	case ERROR:
		return "ERROR"
	case MISSING:
		return "MISSING"
	default:
		return "UNKNOWN"
	}
}

// A Frame is one entry on the traversal stack: a currently open
// container. Its Kind is OPEN for as long as it is pushed; popping it
// produces the matching CLOSE.
type Frame struct {
	Pathname string
	Kind     Kind
	Dev      uint64
	Ino      uint64
}

// frame extends the public Frame with the iteration state the engine
// needs to resume exactly where it left off.
type frame struct {
	Frame

	// remaining directory children, already sorted
	children []string
	next     int

	// archive expansion state
	tarReader *tar.Reader
	single    *pendingLeaf
	closers   []io.Closer
}

type pendingLeaf struct {
	pathname string
	handle   io.ReadCloser
}

func (f *frame) close() {
	for i := len(f.closers) - 1; i >= 0; i-- {
		f.closers[i].Close()
	}
	f.closers = nil
}
