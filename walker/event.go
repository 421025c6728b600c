package walker

import (
	"errors"
	"fmt"
	"io"
)

// ErrDone is returned by Next once the traversal is exhausted.
var ErrDone = errors.New("traversal done")

// An Event is one externally visible traversal step. Handle is non-nil
// only for LEAF events whose file was opened (auto-open, or an archive
// member which is always delivered open).
type Event struct {
	Pathname string
	Handle   io.ReadCloser
	Kind     Kind

	// Reason is set on IGNORE events, Message on ERROR/MISSING ones.
	Reason  string
	Message string
}

// A WalkError is how error and missing conditions surface from Next in
// signal-delivery mode. It is recoverable: the caller may keep calling
// Next after handling it.
type WalkError struct {
	Pathname string
	Message  string
	Missing  bool
}

func (e *WalkError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s: not found", e.Pathname)
	}
	return fmt.Sprintf("%s: %s", e.Pathname, e.Message)
}
