package walker

import (
	"github.com/google/uuid"
)

// state owns the traversal stack, the counters and the delivery
// strategy. One state instance belongs to exactly one in-flight
// traversal and is discarded with it.
type state struct {
	id      uuid.UUID
	stack   []*frame
	stats   *Statistics
	deliver deliverer
}

func newState(id uuid.UUID, deliver deliverer) *state {
	return &state{
		id:      id,
		stack:   make([]*frame, 0),
		stats:   NewStatistics(id),
		deliver: deliver,
	}
}

func (s *state) depth() int {
	return len(s.stack)
}

func (s *state) top() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// onStack reports whether the file identity already appears on an open
// frame; when it does, descending again would loop forever.
func (s *state) onStack(dev uint64, ino uint64) bool {
	if ino == 0 {
		return false
	}
	for _, f := range s.stack {
		if f.Dev == dev && f.Ino == ino {
			return true
		}
	}
	return false
}

func (s *state) openContainer(f *frame) (*Event, error) {
	f.Kind = OPEN
	s.stack = append(s.stack, f)
	s.stats.ContainersOpened++
	if depth := uint64(len(s.stack)); depth > s.stats.MaxDepthSeen {
		s.stats.MaxDepthSeen = depth
	}
	return s.deliver.opened(f.Pathname)
}

func (s *state) closeContainer() (*Event, error) {
	f := s.top()
	if f == nil || f.Kind != OPEN {
		panic("closeContainer: top of stack is not an open container")
	}
	s.stack = s.stack[:len(s.stack)-1]
	f.Kind = CLOSE
	f.close()
	return s.deliver.closed(f.Pathname)
}

func (s *state) leaf(ev *Event) (*Event, error) {
	s.stats.LeavesReturned++
	return s.deliver.leaf(ev)
}

func (s *state) ignorable(pathname string, reason string) (*Event, error) {
	s.stats.ignore(reason)
	return s.deliver.ignored(pathname, reason)
}

func (s *state) failure(pathname string, message string, missing bool) (*Event, error) {
	s.stats.Errors++
	return s.deliver.failed(pathname, message, missing)
}
