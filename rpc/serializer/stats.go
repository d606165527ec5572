package serializer

import (
	"context"
	"sort"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
)

// Stats tracks codec traffic and cache sizes. A nil *Stats records nothing.
type Stats struct {
	registry     metrics.Registry
	bytesOut     metrics.Meter
	bytesIn      metrics.Meter
	encodeErrors metrics.Counter
	decodeErrors metrics.Counter
}

// NewStats creates the codec statistics for the given type registry
func NewStats(reg *TypeRegistry) *Stats {
	r := metrics.NewRegistry()
	_ = r.Register("serializer.types", metrics.NewFunctionalGauge(func() int64 {
		return int64(reg.Len())
	}))
	_ = r.Register("serializer.schemas", metrics.NewFunctionalGauge(func() int64 {
		return int64(reg.schemas.Size())
	}))

	return &Stats{
		registry:     r,
		bytesOut:     metrics.GetOrRegisterMeter("serializer.bytes.out", r),
		bytesIn:      metrics.GetOrRegisterMeter("serializer.bytes.in", r),
		encodeErrors: metrics.GetOrRegisterCounter("serializer.encode.errors", r),
		decodeErrors: metrics.GetOrRegisterCounter("serializer.decode.errors", r),
	}
}

// Snapshot returns the current value of every metric. Meters and counters report
// their total count.
func (s *Stats) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	if s == nil {
		return out
	}
	s.registry.Each(func(name string, m interface{}) {
		switch m := m.(type) {
		case metrics.Gauge:
			out[name] = m.Value()
		case metrics.Meter:
			out[name] = m.Count()
		case metrics.Counter:
			out[name] = m.Count()
		}
	})
	return out
}

// Monitor logs a snapshot every interval until ctx is done
func (s *Stats) Monitor(ctx context.Context, interval time.Duration, log logger.ILogger) {
	if s == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := s.Snapshot()
			names := make([]string, 0, len(snapshot))
			for name := range snapshot {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				log.Infof("%-26s %d", name, snapshot[name])
			}
		}
	}
}

func (s *Stats) encoded(n int) {
	if s != nil {
		s.bytesOut.Mark(int64(n))
	}
}

func (s *Stats) decoded(n int) {
	if s != nil {
		s.bytesIn.Mark(int64(n))
	}
}

func (s *Stats) encodeFailed() {
	if s != nil {
		s.encodeErrors.Inc(1)
	}
}

func (s *Stats) decodeFailed() {
	if s != nil {
		s.decodeErrors.Inc(1)
	}
}
