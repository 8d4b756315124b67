package zireael

import "sync/atomic"

// Metrics is the engine's counters snapshot (spec §4.J "get_metrics").
// Field order is part of the prefix-copy contract: new fields are always
// appended at the end so an older caller reading a shorter prefix still
// gets a consistent, meaningful subset.
type Metrics struct {
	FramesPresented   uint64
	BytesEmittedTotal uint64
	DirtyRowsTotal    uint64
	DamageCellsTotal  uint64
	SweepFramesTotal  uint64
	ScrollOptHits     uint64
	EventsPolled      uint64
	EventsTruncated   uint64
	DrawlistsAccepted uint64
	DrawlistsRejected uint64
	PresentFailures   uint64
}

// metricsCounters holds the live counters behind Metrics. They are updated
// from the engine-thread methods (PollEvents, SubmitDrawlist, Present);
// atomics let a snapshot read them without a separate lock.
type metricsCounters struct {
	framesPresented   atomic.Uint64
	bytesEmittedTotal atomic.Uint64
	dirtyRowsTotal    atomic.Uint64
	damageCellsTotal  atomic.Uint64
	sweepFramesTotal  atomic.Uint64
	scrollOptHits     atomic.Uint64
	eventsPolled      atomic.Uint64
	eventsTruncated   atomic.Uint64
	drawlistsAccepted atomic.Uint64
	drawlistsRejected atomic.Uint64
	presentFailures   atomic.Uint64
}

func (m *metricsCounters) recordPresent(stats FrameStats, ok bool) {
	if !ok {
		m.presentFailures.Add(1)
		return
	}
	m.framesPresented.Add(1)
	m.bytesEmittedTotal.Add(uint64(stats.BytesEmitted))
	m.dirtyRowsTotal.Add(uint64(stats.DirtyRows))
	m.damageCellsTotal.Add(uint64(stats.DamageCellCount))
	if stats.UsedSweep {
		m.sweepFramesTotal.Add(1)
	}
	m.scrollOptHits.Add(uint64(stats.ScrollOptHits))
}

func (m *metricsCounters) snapshot() Metrics {
	return Metrics{
		FramesPresented:   m.framesPresented.Load(),
		BytesEmittedTotal: m.bytesEmittedTotal.Load(),
		DirtyRowsTotal:    m.dirtyRowsTotal.Load(),
		DamageCellsTotal:  m.damageCellsTotal.Load(),
		SweepFramesTotal:  m.sweepFramesTotal.Load(),
		ScrollOptHits:     m.scrollOptHits.Load(),
		EventsPolled:      m.eventsPolled.Load(),
		EventsTruncated:   m.eventsTruncated.Load(),
		DrawlistsAccepted: m.drawlistsAccepted.Load(),
		DrawlistsRejected: m.drawlistsRejected.Load(),
		PresentFailures:   m.presentFailures.Load(),
	}
}

// writePrefix copies as many whole 8-byte little-endian fields of the
// layout above as fit in out (at most 88 bytes; a trailing partial field is
// not written) and returns the byte count, honoring "get_metrics: prefix-copy semantics
// using caller-supplied size" (spec §4.J) without requiring the caller's
// struct definition to exactly match this build's.
func (m Metrics) writePrefix(out []byte) int {
	full := [11]uint64{
		m.FramesPresented, m.BytesEmittedTotal, m.DirtyRowsTotal, m.DamageCellsTotal,
		m.SweepFramesTotal, m.ScrollOptHits, m.EventsPolled, m.EventsTruncated,
		m.DrawlistsAccepted, m.DrawlistsRejected, m.PresentFailures,
	}
	n := 0
	for _, v := range full {
		if n+8 > len(out) {
			break
		}
		storeU64(out, n, v)
		n += 8
	}
	return n
}
