package app

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Stats counts pipeline events. Safe for concurrent use.
type Stats struct {
	lines      atomic.Uint64
	downlinks  atomic.Uint64
	uplinks    atomic.Uint64
	unknown    atomic.Uint64
	decoded    atomic.Uint64
	failed     atomic.Uint64
	sinkErrors atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	Lines      uint64
	Downlinks  uint64
	Uplinks    uint64
	Unknown    uint64
	Decoded    uint64
	Failed     uint64
	SinkErrors uint64
}

// Snapshot returns the current counter values
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Lines:      s.lines.Load(),
		Downlinks:  s.downlinks.Load(),
		Uplinks:    s.uplinks.Load(),
		Unknown:    s.unknown.Load(),
		Decoded:    s.decoded.Load(),
		Failed:     s.failed.Load(),
		SinkErrors: s.sinkErrors.Load(),
	}
}

// Fields renders the snapshot for structured logging
func (s StatsSnapshot) Fields() logrus.Fields {
	fields := logrus.Fields{
		"lines":       s.Lines,
		"downlinks":   s.Downlinks,
		"uplinks":     s.Uplinks,
		"unknown":     s.Unknown,
		"decoded":     s.Decoded,
		"failed":      s.Failed,
		"sink_errors": s.SinkErrors,
	}
	if s.Downlinks > 0 {
		fields["decode_rate"] = float64(s.Decoded) / float64(s.Downlinks) * 100
	}
	return fields
}
