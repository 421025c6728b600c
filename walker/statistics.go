package walker

import (
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Statistics counters are monotone and never reset mid-traversal; a
// fresh set is created for every traversal.
type Statistics struct {
	TraversalID uuid.UUID     `msgpack:"traversalID"`
	Start       time.Time     `msgpack:"start"`
	Duration    time.Duration `msgpack:"duration"`

	NodesExamined    uint64            `msgpack:"nodesExamined"`
	Directories      uint64            `msgpack:"directories"`
	ContainersOpened uint64            `msgpack:"containersOpened"`
	LeavesReturned   uint64            `msgpack:"leavesReturned"`
	LeafBytes        uint64            `msgpack:"leafBytes"`
	Ignored          uint64            `msgpack:"ignored"`
	IgnoredByReason  map[string]uint64 `msgpack:"ignoredByReason"`
	Errors           uint64            `msgpack:"errors"`
	MaxDepthSeen     uint64            `msgpack:"maxDepthSeen"`
}

func NewStatistics(traversalID uuid.UUID) *Statistics {
	return &Statistics{
		TraversalID:     traversalID,
		Start:           time.Now(),
		IgnoredByReason: make(map[string]uint64),
	}
}

func (s *Statistics) ignore(reason string) {
	s.Ignored++
	s.IgnoredByReason[reason]++
}

// Counters flattens the statistics into a named counter map; per-reason
// ignore counts appear as "ignored:<reason>".
func (s *Statistics) Counters() map[string]uint64 {
	counters := map[string]uint64{
		"nodesExamined":    s.NodesExamined,
		"directories":      s.Directories,
		"containersOpened": s.ContainersOpened,
		"leavesReturned":   s.LeavesReturned,
		"leafBytes":        s.LeafBytes,
		"ignored":          s.Ignored,
		"errors":           s.Errors,
		"maxDepthSeen":     s.MaxDepthSeen,
	}
	for reason, count := range s.IgnoredByReason {
		counters["ignored:"+reason] = count
	}
	return counters
}

func (s *Statistics) ToBytes() ([]byte, error) {
	return msgpack.Marshal(s)
}

func StatisticsFromBytes(data []byte) (*Statistics, error) {
	var s Statistics
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.IgnoredByReason == nil {
		s.IgnoredByReason = make(map[string]uint64)
	}
	return &s, nil
}
