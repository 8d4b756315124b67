package zireael

const (
	eventBatchMagic      uint32 = 0x5645525A
	eventBatchHeaderSize        = 24
	eventRecordHeaderSize       = 20 // {type u32, size u32, time_ms u64, flags u32}

	batchFlagTruncated uint32 = 1
)

// packEventBatch serializes events into the wire event-batch format (spec
// §6.3): a 24-byte header followed by self-framed records, each 4-byte
// aligned. Records that don't fit in buf are simply omitted and the
// TRUNCATED flag is set; this never fails the call (spec §7: "poll_events
// never fails on a full output buffer").
func packEventBatch(events []Event, buf []byte) (n int, truncated bool) {
	w := newByteWriter(len(buf))
	w.skipReserve(eventBatchHeaderSize) // patched once the final size/count are known

	count := 0
	anyTruncated := false
	for _, ev := range events {
		before := w.len
		if !writeEventRecord(w, ev) {
			w.len = before // never emit a partial record
			anyTruncated = true
			break
		}
		count++
	}

	var flags uint32
	if anyTruncated {
		flags = batchFlagTruncated
	}
	header := make([]byte, eventBatchHeaderSize)
	storeU32(header, 0, eventBatchMagic)
	storeU32(header, 4, 1) // version
	storeU32(header, 8, uint32(w.len))
	storeU32(header, 12, uint32(count))
	storeU32(header, 16, flags)
	storeU32(header, 20, 0) // reserved0
	copy(w.buf[:eventBatchHeaderSize], header)

	copy(buf, w.buf[:w.len])
	return w.len, anyTruncated
}

// skipReserve advances len by n zero bytes without bounds-checking against
// content, used only for the fixed batch header which is patched in place
// afterward.
func (w *byteWriter) skipReserve(n int) {
	w.len = n
}

func writeEventRecord(w *byteWriter, ev Event) bool {
	payload := eventPayload(ev)
	size := align4(eventRecordHeaderSize + len(payload))
	if !w.fits(size) {
		w.truncated = true
		return false
	}
	w.writeU32(uint32(ev.Kind))
	w.writeU32(uint32(size))
	w.writeU64(ev.TimeMs)
	w.writeU32(0) // per-record flags, reserved for now
	w.write(payload)
	w.pad4()
	return true
}

// eventPayload returns the type-specific fixed payload (plus, for PASTE
// and USER, the variable trailing bytes) for one event, per spec §6.3.
func eventPayload(ev Event) []byte {
	switch ev.Kind {
	case EventKey:
		b := make([]byte, 16)
		storeU32(b, 0, ev.Key)
		storeU32(b, 4, ev.Modifiers)
		storeU32(b, 8, ev.Action)
		storeU32(b, 12, 0)
		return b
	case EventText:
		b := make([]byte, 8)
		storeU32(b, 0, uint32(ev.Rune))
		storeU32(b, 4, 0)
		return b
	case EventMouse:
		b := make([]byte, 20)
		storeU32(b, 0, ev.MouseButton)
		storeI32(b, 4, ev.MouseX)
		storeI32(b, 8, ev.MouseY)
		storeU32(b, 12, ev.MouseAction)
		storeU32(b, 16, ev.Modifiers)
		return b
	case EventResize:
		b := make([]byte, 8)
		storeI32(b, 0, ev.Cols)
		storeI32(b, 4, ev.Rows)
		return b
	case EventTick:
		return nil
	case EventPaste:
		b := make([]byte, 4+len(ev.Paste))
		storeU32(b, 0, uint32(len(ev.Paste)))
		copy(b[4:], ev.Paste)
		return b
	case EventUser:
		b := make([]byte, 8+len(ev.UserPayload))
		storeU32(b, 0, ev.UserTag)
		storeU32(b, 4, uint32(len(ev.UserPayload)))
		copy(b[8:], ev.UserPayload)
		return b
	case EventFocusIn, EventFocusOut:
		return nil
	default:
		return nil
	}
}

// parsedEventRecord is a decoded batch record as seen by the reference
// decoder (used only by tests/tools; the engine itself only produces
// batches, it never needs to re-parse its own output).
type parsedEventRecord struct {
	Type   uint32
	Size   uint32
	TimeMs uint64
	Flags  uint32
	Body   []byte
}

// parseEventBatch decodes a packed event batch back into records, skipping
// unknown types by size per the forward-compatibility rule (spec §8: "Event
// batches are forward-compatible: advancing by record size traverses the
// entire batch").
func parseEventBatch(b []byte) ([]parsedEventRecord, uint32, error) {
	r := newByteReader(b)
	magic, ok := r.u32()
	if !ok || magic != eventBatchMagic {
		return nil, 0, newErr(ErrFormat, "event batch: bad magic")
	}
	version, ok := r.u32()
	if !ok || version != 1 {
		return nil, 0, newErr(ErrFormat, "event batch: unsupported version")
	}
	totalSize, ok := r.u32()
	if !ok || int(totalSize) != len(b) {
		return nil, 0, newErr(ErrFormat, "event batch: total_size mismatch")
	}
	count, ok := r.u32()
	if !ok {
		return nil, 0, newErr(ErrFormat, "event batch: truncated header")
	}
	flags, ok := r.u32()
	if !ok {
		return nil, 0, newErr(ErrFormat, "event batch: truncated header")
	}
	if _, ok := r.u32(); !ok { // reserved0
		return nil, 0, newErr(ErrFormat, "event batch: truncated header")
	}

	var out []parsedEventRecord
	for i := uint32(0); i < count; i++ {
		typ, ok := r.u32()
		if !ok {
			return nil, 0, newErr(ErrFormat, "event batch: truncated record header")
		}
		size, ok := r.u32()
		if !ok || size < eventRecordHeaderSize || int(size)%4 != 0 {
			return nil, 0, newErr(ErrFormat, "event batch: bad record size")
		}
		timeMs, ok := r.u64()
		if !ok {
			return nil, 0, newErr(ErrFormat, "event batch: truncated record header")
		}
		recFlags, ok := r.u32()
		if !ok {
			return nil, 0, newErr(ErrFormat, "event batch: truncated record header")
		}
		body, ok := r.bytes(int(size) - eventRecordHeaderSize)
		if !ok {
			return nil, 0, newErr(ErrFormat, "event batch: record body overruns buffer")
		}
		out = append(out, parsedEventRecord{Type: typ, Size: size, TimeMs: timeMs, Flags: recFlags, Body: body})
	}
	return out, flags, nil
}
