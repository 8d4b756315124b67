package zireael

import "github.com/google/uuid"

// debugEntry is one recorded diagnostic event in the debug ring (spec
// §6.1 "debug_{enable,disable,query,get_payload,get_stats,export,reset}").
type debugEntry struct {
	SeqNo  uint64
	TimeMs uint64
	Tag    string
	Detail []byte
}

// debugTrace is a fixed-capacity ring of recent diagnostic entries. It is
// always allocated; debug_enable/disable only gates whether new entries
// are recorded, so export() is safe to call at any time.
type debugTrace struct {
	entries  []debugEntry
	head     int
	size     int
	cap      int
	nextSeq  uint64
	enabled  bool
	sessionID uuid.UUID
}

func newDebugTrace(capacity int) *debugTrace {
	return &debugTrace{
		entries:   make([]debugEntry, capacity),
		cap:       capacity,
		sessionID: uuid.New(),
	}
}

func (d *debugTrace) enable()  { d.enabled = true }
func (d *debugTrace) disable() { d.enabled = false }

func (d *debugTrace) record(timeMs uint64, tag string, detail []byte) {
	if !d.enabled || d.cap == 0 {
		return
	}
	idx := (d.head + d.size) % d.cap
	d.entries[idx] = debugEntry{SeqNo: d.nextSeq, TimeMs: timeMs, Tag: tag, Detail: detail}
	d.nextSeq++
	if d.size < d.cap {
		d.size++
	} else {
		d.head = (d.head + 1) % d.cap
	}
}

func (d *debugTrace) reset() {
	d.head, d.size, d.nextSeq = 0, 0, 0
	d.sessionID = uuid.New()
}

// stats mirrors debug_get_stats: how much of the ring is populated and
// how many entries have ever been recorded (nextSeq also counts evicted
// ones, exposing wraparound to the caller).
type debugStats struct {
	Count       int
	Capacity    int
	TotalRecorded uint64
}

func (d *debugTrace) statsSnapshot() debugStats {
	return debugStats{Count: d.size, Capacity: d.cap, TotalRecorded: d.nextSeq}
}

// export serializes the ring into a byte-framed, forward-compatible
// payload: a 16-byte session UUID, then each entry as
// {seq u64, time_ms u64, tag_len u32, detail_len u32, tag bytes, detail
// bytes}, 4-byte aligned, oldest first. The UUID lets an external capture
// tool correlate exports with one trace session; reset generates a new
// UUID, so exports from before and after a debug_reset carry different ids.
func (d *debugTrace) export(buf []byte) (n int, truncated bool) {
	w := newByteWriter(len(buf))
	sid, _ := d.sessionID.MarshalBinary()
	if !w.write(sid) {
		return 0, true
	}
	any := false
	d.forEach(func(e debugEntry) {
		before := w.len
		if !w.writeU64(e.SeqNo) || !w.writeU64(e.TimeMs) ||
			!w.writeU32(uint32(len(e.Tag))) || !w.writeU32(uint32(len(e.Detail))) ||
			!w.writeString(e.Tag) || !w.write(e.Detail) || !w.pad4() {
			w.len = before
			any = true
			return
		}
	})
	copy(buf, w.bytes())
	return w.len, any || w.truncated
}

func (d *debugTrace) forEach(fn func(debugEntry)) {
	for i := 0; i < d.size; i++ {
		fn(d.entries[(d.head+i)%d.cap])
	}
}
