package zireael

import "hash/fnv"

// CursorShape selects how the terminal renders the cursor glyph, matching
// the wire-locked `SET_CURSOR` shape enum (spec §6.2).
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// CursorState is the framebuffer's desired cursor position and appearance.
// The dirty field is not read or written anywhere; the diff emitter decides
// whether cursor output is needed by comparing against TerminalState.
type CursorState struct {
	X, Y    int
	Shape   CursorShape
	Visible bool
	Blink   bool
	dirty   bool
}

// Framebuffer is a fixed-size 2-D cell grid plus cursor state and
// per-row content hashes (spec §3). The engine keeps three instances:
// prev (last presented), next (being assembled), staging (execute scratch).
type Framebuffer struct {
	Cols, Rows int
	Cells      []Cell
	Cursor     CursorState
	RowHashes  []uint64
}

// newFramebuffer allocates a blank cols×rows framebuffer.
func newFramebuffer(cols, rows int) *Framebuffer {
	fb := &Framebuffer{
		Cols:      cols,
		Rows:      rows,
		Cells:     make([]Cell, cols*rows),
		RowHashes: make([]uint64, rows),
	}
	for i := range fb.Cells {
		fb.Cells[i] = blankCell
	}
	fb.rehashAll()
	return fb
}

func (fb *Framebuffer) index(x, y int) int {
	return y*fb.Cols + x
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Cols && y >= 0 && y < fb.Rows
}

func (fb *Framebuffer) at(x, y int) Cell {
	return fb.Cells[fb.index(x, y)]
}

// setCell writes a cell at (x,y) and normalizes any wide-pair neighbour
// that this write breaks (spec §4.E): if the overwritten cell was the
// lead of a wide pair, its former continuation neighbour at x+1 becomes a
// blank of the new cell's style; if it was itself a continuation, the
// lead at x-1 (which must be width-2) becomes a blank of the new style.
func (fb *Framebuffer) setCell(x, y int, c Cell) {
	if !fb.inBounds(x, y) {
		return
	}
	old := fb.at(x, y)
	idx := fb.index(x, y)
	fb.Cells[idx] = c
	if old.IsContinuation() {
		if fb.inBounds(x-1, y) {
			fb.Cells[fb.index(x-1, y)].reset(c.Style)
		}
	} else if x+1 < fb.Cols && fb.at(x+1, y).IsContinuation() {
		fb.Cells[fb.index(x+1, y)].reset(c.Style)
	}
}

// setWidePair writes a lead+continuation pair at (x,y)/(x+1,y). Callers
// must have already verified x+1 < fb.Cols (execution clips writes that
// fall outside bounds, per spec §4.D).
func (fb *Framebuffer) setWidePair(x, y int, lead Cell) {
	fb.setCell(x, y, lead)
	cont := Cell{Style: lead.Style, Flags: CellContinuation}
	fb.setCell(x+1, y, cont)
}

// clearAll resets every cell to a blank of the given style (CLEAR opcode).
func (fb *Framebuffer) clearAll(style Style) {
	for i := range fb.Cells {
		fb.Cells[i].reset(style)
	}
}

// rowHash computes the content hash of one row: glyph bytes, style, and
// flags of every cell (spec §4.E). Used both to rebuild RowHashes after a
// bulk mutation and, incrementally, is equivalent to recomputing a single
// row after any cell in it changes.
func (fb *Framebuffer) rowHash(y int) uint64 {
	h := fnv.New64a()
	row := fb.Cells[y*fb.Cols : (y+1)*fb.Cols]
	for _, c := range row {
		h.Write(c.Glyph[:c.GlyphLen])
		var b [13]byte
		storeU32(b[:], 0, c.Style.Fg)
		storeU32(b[:], 4, c.Style.Bg)
		storeU32(b[:], 8, uint32(c.Style.Attrs))
		b[12] = byte(c.Flags)
		h.Write(b[:])
	}
	return h.Sum64()
}

func (fb *Framebuffer) rehashRow(y int) {
	fb.RowHashes[y] = fb.rowHash(y)
}

func (fb *Framebuffer) rehashAll() {
	for y := 0; y < fb.Rows; y++ {
		fb.rehashRow(y)
	}
}

// copyFrom deep-copies src into fb, used when committing staging → next.
func (fb *Framebuffer) copyFrom(src *Framebuffer) {
	fb.Cols, fb.Rows = src.Cols, src.Rows
	if cap(fb.Cells) < len(src.Cells) {
		fb.Cells = make([]Cell, len(src.Cells))
	}
	fb.Cells = fb.Cells[:len(src.Cells)]
	copy(fb.Cells, src.Cells)
	if cap(fb.RowHashes) < len(src.RowHashes) {
		fb.RowHashes = make([]uint64, len(src.RowHashes))
	}
	fb.RowHashes = fb.RowHashes[:len(src.RowHashes)]
	copy(fb.RowHashes, src.RowHashes)
	fb.Cursor = src.Cursor
}
