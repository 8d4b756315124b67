package zireael

import "strconv"

// TerminalState is the engine's belief about what the terminal looks like
// after the last emitted byte (spec §3). It is mutated only by the diff
// emitter as it writes, and reset on platform enter/leave.
type TerminalState struct {
	CursorX, CursorY int
	CursorValid      bool
	Style            Style
	StyleValid       bool
	ScrollTop        int
	ScrollBottom     int
	ColorMode        ColorMode
	SyncUpdateOpen   bool
	CursorHidden     bool
	CursorShape      CursorShape
	CursorBlink      bool
	CursorModeValid  bool
}

// DiffConfig is the renderer's per-call capability and budget input.
type DiffConfig struct {
	SupportsSyncUpdate   bool
	SupportsScrollRegion bool
	OutMaxBytesPerFrame  int
	SGRAttrsSupported    uint32
	ColorMode            ColorMode
}

// FrameStats is the per-frame diagnostics the metrics layer surfaces
// (spec §4.F "Stats").
type FrameStats struct {
	DirtyRows         int
	DirtyCols         int
	BytesEmitted      int
	DamageRectCount   int
	DamageCellCount   int
	UsedSweep         bool
	ScrollOptAttempts int
	ScrollOptHits     int
}

// dirtySpan is a contiguous run of differing columns on one row.
type dirtySpan struct{ start, end int } // [start, end)

// renderDiff computes the minimal terminal byte stream to transform prev
// into next and appends it to a bounded buffer (spec §4.F). It never
// mutates prev or next, but it updates state as it formats. On ErrLimit
// (output budget exceeded), the caller must not swap next into prev and
// must discard those state updates, since none of the bytes reach the
// terminal (spec §4.F "Single-flush contract").
func renderDiff(prev, next *Framebuffer, state *TerminalState, cfg DiffConfig) ([]byte, FrameStats, error) {
	var stats FrameStats
	w := newByteWriter(cfg.OutMaxBytesPerFrame)

	if cfg.SupportsSyncUpdate {
		w.writeString("\x1b[?2026h")
	}

	skip := make([]bool, next.Rows)
	if cfg.SupportsScrollRegion {
		stats.ScrollOptAttempts++
		if shift, ok := detectScrollShift(prev, next); ok {
			stats.ScrollOptHits++
			emitScroll(w, shift, next.Rows)
			for y := shift.top; y <= shift.bottom; y++ {
				skip[y] = true
			}
		}
	}

	for y := 0; y < next.Rows; y++ {
		if skip[y] {
			continue
		}
		if prev.RowHashes[y] == next.RowHashes[y] && !cursorTouchesRow(next, y) {
			continue
		}
		renderRow(w, prev, next, state, cfg, y, &stats)
	}

	emitCursorAndModes(w, next, state, cfg)

	if cfg.SupportsSyncUpdate {
		w.writeString("\x1b[?2026l")
	}

	stats.BytesEmitted = w.len
	if w.truncated {
		return nil, stats, newErr(ErrLimit, "frame output exceeds out_max_bytes_per_frame")
	}
	return w.bytes(), stats, nil
}

// cursorTouchesRow reports whether the cursor's desired position lands on
// row y, which makes renderDiff visit the row even when its hash is
// unchanged. Cursor validity is not consulted here; CUP itself is decided
// by emitCursorAndModes.
func cursorTouchesRow(next *Framebuffer, y int) bool {
	return next.Cursor.Y == y
}

func emitScroll(w *byteWriter, shift scrollShift, rows int) {
	w.writeString("\x1b[")
	w.writeString(strconv.Itoa(shift.top + 1))
	w.writeByte(';')
	w.writeString(strconv.Itoa(shift.bottom + 1))
	w.writeByte('r')
	w.writeString("\x1b[")
	if shift.delta > 0 {
		w.writeString(strconv.Itoa(shift.delta))
		w.writeByte('S')
	} else {
		w.writeString(strconv.Itoa(-shift.delta))
		w.writeByte('T')
	}
	// Scroll region reset so later CUP addressing isn't confined to it.
	w.writeString("\x1b[r")
}

// sweepThreshold is the dirty-cell-density ratio at or above which a row
// is emitted as one full-row sweep instead of per-span damage output
// (Open Question, SPEC_FULL.md §5).
const sweepThreshold = 0.5

func renderRow(w *byteWriter, prev, next *Framebuffer, state *TerminalState, cfg DiffConfig, y int, stats *FrameStats) {
	spans := dirtySpans(prev, next, y)
	if len(spans) == 0 {
		return
	}
	stats.DirtyRows++

	dirtyCells := 0
	for _, s := range spans {
		dirtyCells += s.end - s.start
	}
	stats.DirtyCols += dirtyCells
	stats.DamageRectCount += len(spans)
	stats.DamageCellCount += dirtyCells

	if float64(dirtyCells)/float64(next.Cols) >= sweepThreshold {
		stats.UsedSweep = true
		emitSpan(w, next, state, cfg, y, 0, next.Cols)
		return
	}
	for _, s := range spans {
		emitSpan(w, next, state, cfg, y, s.start, s.end)
	}
}

// dirtySpans finds contiguous differing-column runs on row y, expanding
// any span whose boundary touches a wide-glyph continuation so a wide
// pair always moves atomically, then coalescing adjacent/overlapping
// spans (spec §4.F).
func dirtySpans(prev, next *Framebuffer, y int) []dirtySpan {
	var raw []dirtySpan
	inSpan := false
	var start int
	for x := 0; x < next.Cols; x++ {
		if !prev.at(x, y).equal(next.at(x, y)) {
			if !inSpan {
				inSpan = true
				start = x
			}
		} else if inSpan {
			raw = append(raw, dirtySpan{start, x})
			inSpan = false
		}
	}
	if inSpan {
		raw = append(raw, dirtySpan{start, next.Cols})
	}
	for i := range raw {
		if raw[i].start > 0 && next.at(raw[i].start, y).IsContinuation() {
			raw[i].start--
		}
		if raw[i].end < next.Cols && next.at(raw[i].end, y).IsContinuation() {
			raw[i].end++
		}
	}
	return coalesceSpans(raw)
}

func coalesceSpans(spans []dirtySpan) []dirtySpan {
	if len(spans) < 2 {
		return spans
	}
	out := []dirtySpan{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

func emitSpan(w *byteWriter, next *Framebuffer, state *TerminalState, cfg DiffConfig, y, start, end int) {
	emitCUP(w, state, start, y)
	for x := start; x < end; {
		c := next.at(x, y)
		if c.IsContinuation() {
			x++
			continue
		}
		if !state.StyleValid || state.Style != c.Style {
			appendSGR(w, c.Style, cfg.SGRAttrsSupported, cfg.ColorMode)
			state.Style = c.Style
			state.StyleValid = true
		}
		w.write(c.glyphBytes())
		x++
		state.CursorX = x
		state.CursorY = y
		state.CursorValid = true
	}
}

func emitCUP(w *byteWriter, state *TerminalState, x, y int) {
	w.writeString("\x1b[")
	w.writeString(strconv.Itoa(y + 1))
	w.writeByte(';')
	w.writeString(strconv.Itoa(x + 1))
	w.writeByte('H')
	state.CursorX, state.CursorY, state.CursorValid = x, y, true
}

func emitCursorAndModes(w *byteWriter, next *Framebuffer, state *TerminalState, cfg DiffConfig) {
	desired := next.Cursor
	if !state.CursorValid || state.CursorX != desired.X || state.CursorY != desired.Y {
		emitCUP(w, state, desired.X, desired.Y)
	}
	if !state.CursorModeValid || state.CursorShape != desired.Shape || state.CursorBlink != desired.Blink {
		w.writeString("\x1b[")
		w.writeString(strconv.Itoa(decscusrCode(desired.Shape, desired.Blink)))
		w.writeString(" q")
		state.CursorShape = desired.Shape
		state.CursorBlink = desired.Blink
		state.CursorModeValid = true
	}
	if desired.Visible && state.CursorHidden {
		w.writeString("\x1b[?25h")
		state.CursorHidden = false
	} else if !desired.Visible && !state.CursorHidden {
		w.writeString("\x1b[?25l")
		state.CursorHidden = true
	}
}

// decscusrCode maps a cursor shape/blink pair to its DECSCUSR parameter
// (xterm convention: 1/2 block, 3/4 underline, 5/6 bar; odd = blinking).
func decscusrCode(shape CursorShape, blink bool) int {
	base := map[CursorShape]int{CursorBlock: 1, CursorUnderline: 3, CursorBar: 5}[shape]
	if !blink {
		base++
	}
	return base
}
