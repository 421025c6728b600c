/*
 * Copyright (c) 2021 Gilles Chehade <gilles@poolp.org>
 *
 * Permission to use, copy, modify, and distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package walker

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sderose/powerwalk/events"
	"github.com/sderose/powerwalk/filter"
	"github.com/sderose/powerwalk/logging"
	"github.com/sderose/powerwalk/objects"
	"github.com/sderose/powerwalk/retrieval"
)

// A Walker holds a validated configuration and can start any number of
// traversals; each traversal owns its own state and must be driven by a
// single consumer.
type Walker struct {
	cfg        *Config
	filter     *filter.Filter
	classifier io.Closer
	receiver   *events.Receiver
	logger     *logging.Logger
}

func New(cfg *Config) (*Walker, error) {
	f, cf, err := cfg.compile()
	if err != nil {
		return nil, err
	}
	w := &Walker{
		cfg:      cfg,
		filter:   f,
		receiver: events.New(),
		logger:   logging.Default(),
	}
	if cf != nil {
		w.classifier = cf
	}
	return w, nil
}

// Events exposes the receiver that signal-delivery mode publishes on;
// subscribe before calling Next.
func (w *Walker) Events() *events.Receiver {
	return w.receiver
}

func (w *Walker) Close() error {
	w.receiver.Close()
	if w.classifier != nil {
		return w.classifier.Close()
	}
	return nil
}

// Walk starts a traversal over the given root paths; with no roots the
// current directory is used.
func (w *Walker) Walk(roots ...string) (*Traversal, error) {
	if len(roots) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		roots = []string{cwd}
	}

	normalized := make([]string, 0, len(roots))
	for _, root := range roots {
		if w.cfg.AbsolutePaths {
			abs, err := filepath.Abs(root)
			if err != nil {
				return nil, err
			}
			root = abs
		}
		normalized = append(normalized, filepath.Clean(root))
	}

	traversalID := uuid.New()
	var deliver deliverer
	if w.cfg.Signals {
		deliver = &signalDeliverer{
			containers:  w.cfg.Containers,
			ignorables:  w.cfg.Ignorables,
			errors:      w.cfg.Errors,
			traversalID: traversalID,
			receiver:    w.receiver,
		}
		w.receiver.Send(events.StartEvent(traversalID))
	} else {
		deliver = &valueDeliverer{
			containers: w.cfg.Containers,
			ignorables: w.cfg.Ignorables,
			errors:     w.cfg.Errors,
		}
	}

	w.logger.Trace("walker", "%s: Walk(%v)", traversalID, normalized)
	return &Traversal{
		w:       w,
		state:   newState(traversalID, deliver),
		sampler: filter.NewSampling(w.cfg.SamplePercentage),
		roots:   normalized,
	}, nil
}

// A Traversal is a lazy cursor over the emitted events. It must not be
// driven by more than one goroutine.
type Traversal struct {
	w       *Walker
	state   *state
	sampler *filter.Sampling
	roots   []string
	pending io.Closer
	done    bool
}

func (t *Traversal) Statistics() *Statistics {
	return t.state.stats
}

// Next advances the traversal to the next externally visible event and
// returns it. It returns ErrDone once the traversal is exhausted, and,
// in signal-delivery mode, a *WalkError for recoverable per-item
// failures: the caller may keep calling Next afterwards.
func (t *Traversal) Next() (*Event, error) {
	if t.done {
		return nil, ErrDone
	}
	t.releasePending()

	for {
		if t.w.cfg.MaxLeaves > 0 && t.state.stats.LeavesReturned >= t.w.cfg.MaxLeaves {
			return nil, t.finish()
		}

		var ev *Event
		var err error
		if f := t.state.top(); f == nil {
			if len(t.roots) == 0 {
				return nil, t.finish()
			}
			root := t.roots[0]
			t.roots = t.roots[1:]
			ev, err = t.visit(root, true)
		} else if f.tarReader != nil || f.single != nil {
			ev, err = t.nextArchiveEntry(f)
		} else if f.next < len(f.children) {
			name := f.children[f.next]
			f.next++
			ev, err = t.visit(filepath.Join(f.Pathname, name), false)
		} else {
			ev, err = t.state.closeContainer()
		}

		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
	}
}

// Close abandons the traversal, releasing any handle the engine still
// owns. No events are emitted for frames that were still open.
func (t *Traversal) Close() error {
	if !t.done {
		t.done = true
		t.releasePending()
		for _, f := range t.state.stack {
			f.close()
		}
		t.state.stack = t.state.stack[:0]
	}
	return nil
}

func (t *Traversal) finish() error {
	t.done = true
	t.releasePending()
	for _, f := range t.state.stack {
		f.close()
	}
	t.state.stack = t.state.stack[:0]
	t.state.stats.Duration = time.Since(t.state.stats.Start)
	t.w.logger.Trace("walker", "%s: done, %d leaves", t.state.id, t.state.stats.LeavesReturned)
	t.state.deliver.finished()
	return ErrDone
}

func (t *Traversal) releasePending() {
	if t.pending != nil {
		t.pending.Close()
		t.pending = nil
	}
}

// visit runs the per-path state machine; a nil, nil return means the
// step produced nothing externally visible.
func (t *Traversal) visit(pathname string, top bool) (*Event, error) {
	if t.w.cfg.MaxDepth > 0 && t.state.depth() > t.w.cfg.MaxDepth {
		return nil, nil
	}
	t.state.stats.NodesExamined++

	info, err := objects.Lstat(pathname)
	if err != nil {
		return t.state.failure(pathname, err.Error(), os.IsNotExist(err))
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return t.visitLink(pathname, info, top)
	}
	if info.IsDir() {
		return t.visitDir(pathname, info, top)
	}
	return t.visitFile(pathname, info)
}

func (t *Traversal) visitDir(pathname string, info objects.FileInfo, top bool) (*Event, error) {
	t.state.stats.Directories++

	if eligible, reason := t.w.filter.Directory(pathname, info); !eligible {
		return t.state.ignorable(pathname, reason)
	}

	// a directory named directly as a top-level argument is always
	// expanded, regardless of the recursive flag
	if !t.w.cfg.Recursive && !top {
		return t.state.ignorable(pathname, filter.ReasonDirectory)
	}

	if t.state.onStack(info.Dev(), info.Ino()) {
		t.w.logger.Trace("walker", "%s: cycle at %s", t.state.id, pathname)
		return t.state.failure(pathname, "directory cycle", false)
	}

	entries, err := os.ReadDir(pathname)
	if err != nil {
		return t.state.failure(pathname, err.Error(), false)
	}
	children := sortChildren(pathname, entries, t.w.cfg.Sort, t.w.cfg.Reverse, t.w.cfg.DirGrouping)

	return t.state.openContainer(&frame{
		Frame:    Frame{Pathname: pathname, Dev: info.Dev(), Ino: info.Ino()},
		children: children,
	})
}

func (t *Traversal) visitLink(pathname string, info objects.FileInfo, top bool) (*Event, error) {
	// the link's own metadata is filtered before the disposition is
	// consulted; a followed target is filtered again on its own
	if eligible, reason := t.w.filter.File(pathname, info, t.state.depth()); !eligible {
		return t.state.ignorable(pathname, reason)
	}

	switch t.w.cfg.OnSymlink {
	case LinkReturn:
		return t.visitLeaf(pathname, info, nil, false)
	case LinkFollow:
		resolved, err := filepath.EvalSymlinks(pathname)
		if err != nil {
			return t.state.failure(pathname, err.Error(), os.IsNotExist(err))
		}
		return t.visit(resolved, top)
	default:
		return t.state.ignorable(pathname, filter.ReasonLink)
	}
}

func (t *Traversal) visitFile(pathname string, info objects.FileInfo) (*Event, error) {
	if eligible, reason := t.w.filter.File(pathname, info, t.state.depth()); !eligible {
		return t.state.ignorable(pathname, reason)
	}

	if isWeblink(pathname) {
		switch t.w.cfg.OnWeblink {
		case LinkIgnore:
			return t.state.ignorable(pathname, filter.ReasonWeblink)
		case LinkFollow:
			target, err := weblinkTarget(pathname)
			if err != nil {
				return t.state.failure(pathname, err.Error(), false)
			}
			body, err := retrieval.Fetch(target)
			if err != nil {
				return t.state.failure(pathname, err.Error(), false)
			}
			return t.visitLeaf(pathname, info, body, false)
		}
		// LinkReturn: the pointer file itself is the leaf
	}

	// only a regular file can be an archive; a fifo or device that
	// happens to carry the suffix must not be opened here
	if method := archiveMethod(pathname); method != "" && info.Mode().IsRegular() {
		if !t.w.cfg.archiveEnabled(method) {
			return t.state.ignorable(pathname, method)
		}
		return t.expandArchive(pathname, info.Dev(), info.Ino(), method)
	}

	if !t.sampler.Keep() {
		return t.state.ignorable(pathname, filter.ReasonSample)
	}

	return t.visitLeaf(pathname, info, nil, t.w.cfg.AutoOpen)
}

func (t *Traversal) visitLeaf(pathname string, info objects.FileInfo, handle io.ReadCloser, autoOpen bool) (*Event, error) {
	if handle == nil && autoOpen && info.Mode().IsRegular() {
		fp, err := os.Open(pathname)
		if err != nil {
			return t.state.failure(pathname, err.Error(), false)
		}
		handle = fp
	}
	t.state.stats.LeafBytes += uint64(info.Size())

	ev, err := t.state.leaf(&Event{Pathname: pathname, Handle: handle, Kind: LEAF})
	if err == nil && ev != nil && t.w.cfg.AutoClose && handle != nil {
		// released when the consumer pulls the next item
		t.pending = handle
	}
	return ev, err
}
