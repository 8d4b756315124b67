package zireael

const (
	drawlistMagic      = 0x4C44525A // "ZRDL"
	drawlistHeaderSize = 64
)

// Opcode is a drawlist command's tag (spec §6.2). Validation reads the
// framing header, then switches on Opcode to a fixed-size payload struct —
// a sealed variant rather than raw integer dispatch (spec §9).
type Opcode uint16

const (
	OpClear       Opcode = 1
	OpFillRect    Opcode = 2
	OpDrawText    Opcode = 3
	OpPushClip    Opcode = 4
	OpPopClip     Opcode = 5
	OpDrawTextRun Opcode = 6
	OpSetCursor   Opcode = 7
	OpDefString   Opcode = 8
	OpFreeString  Opcode = 9
	OpDefBlob     Opcode = 10
	OpFreeBlob    Opcode = 11
	OpDrawTextRef Opcode = 12
)

// drawlistLimits are the caps enforced during validation (spec §4.D): any
// breach returns ErrLimit, distinct from the ErrFormat/ErrUnsupported paths
// for structural and opcode errors.
type drawlistLimits struct {
	MaxTotalBytes      int
	MaxCmds            int
	MaxStringsCount    int
	MaxStringsBytes    int
	MaxBlobsCount      int
	MaxBlobsBytes      int
	MaxClipDepth       int
	MaxTextRunSegments int
	MaxDamageRects     int
}

func defaultDrawlistLimits() drawlistLimits {
	return drawlistLimits{
		MaxTotalBytes:      16 << 20,
		MaxCmds:            1_000_000,
		MaxStringsCount:    4096,
		MaxStringsBytes:    4 << 20,
		MaxBlobsCount:      4096,
		MaxBlobsBytes:      4 << 20,
		MaxClipDepth:       64,
		MaxTextRunSegments: 4096,
		MaxDamageRects:     1024,
	}
}

// drawlistHeader is the parsed 64-byte header (spec §6.2).
type drawlistHeader struct {
	Version            uint32
	TotalSize          uint32
	CmdOffset          uint32
	CmdBytes           uint32
	CmdCount           uint32
	StringsSpanOffset  uint32
	StringsCount       uint32
	StringsBytesOffset uint32
	StringsBytesLen    uint32
	BlobsSpanOffset    uint32
	BlobsCount         uint32
	BlobsBytesOffset   uint32
	BlobsBytesLen      uint32
}

// parseDrawlistHeader validates and decodes the 64-byte header. Every
// section offset must be 4-byte aligned and every section must fall within
// TotalSize; section lengths need not be aligned. Any violation is
// ErrFormat, matching scenario 5's "wrong magic" case.
func parseDrawlistHeader(b []byte) (*drawlistHeader, error) {
	if len(b) < drawlistHeaderSize {
		return nil, newErr(ErrFormat, "drawlist shorter than header")
	}
	if loadU32(b, 0) != drawlistMagic {
		return nil, newErr(ErrFormat, "bad drawlist magic")
	}
	version := loadU32(b, 4)
	if version != 1 && version != 2 {
		return nil, newErr(ErrFormat, "unsupported drawlist version")
	}
	if loadU32(b, 8) != drawlistHeaderSize {
		return nil, newErr(ErrFormat, "bad drawlist header_size")
	}
	h := &drawlistHeader{
		Version:            version,
		TotalSize:          loadU32(b, 12),
		CmdOffset:          loadU32(b, 16),
		CmdBytes:           loadU32(b, 20),
		CmdCount:           loadU32(b, 24),
		StringsSpanOffset:  loadU32(b, 28),
		StringsCount:       loadU32(b, 32),
		StringsBytesOffset: loadU32(b, 36),
		StringsBytesLen:    loadU32(b, 40),
		BlobsSpanOffset:    loadU32(b, 44),
		BlobsCount:         loadU32(b, 48),
		BlobsBytesOffset:   loadU32(b, 52),
		BlobsBytesLen:      loadU32(b, 56),
	}
	if loadU32(b, 60) != 0 {
		return nil, newErr(ErrFormat, "reserved0 must be zero")
	}
	if int(h.TotalSize) != len(b) {
		return nil, newErr(ErrFormat, "total_size does not match buffer length")
	}
	for _, section := range []struct {
		name        string
		offset, len uint32
	}{
		{"cmd", h.CmdOffset, h.CmdBytes},
		{"strings_span", h.StringsSpanOffset, h.StringsCount * 8},
		{"strings_bytes", h.StringsBytesOffset, h.StringsBytesLen},
		{"blobs_span", h.BlobsSpanOffset, h.BlobsCount * 8},
		{"blobs_bytes", h.BlobsBytesOffset, h.BlobsBytesLen},
	} {
		if section.offset%4 != 0 {
			return nil, newErr(ErrFormat, section.name+" offset not 4-byte aligned")
		}
		end := uint64(section.offset) + uint64(section.len)
		if end > uint64(h.TotalSize) {
			return nil, newErr(ErrFormat, section.name+" section exceeds total_size")
		}
	}
	return h, nil
}

// span is a {off,len} reference into a byte pool (spec §6.2).
type span struct {
	Off, Len uint32
}

func readSpan(b []byte, off int) span {
	return span{Off: loadU32(b, off), Len: loadU32(b, off+4)}
}

// drawlistSession is the ephemeral per-submit_drawlist state (spec §3):
// parser cursor, limits, staging framebuffer, clip stack, resources.
type drawlistSession struct {
	data      []byte
	header    *drawlistHeader
	limits    drawlistLimits
	staging   *Framebuffer
	clips     *clipStack
	resources *resourceTable
}

// executeDrawlist validates and executes data into staging. On any
// failure, staging may be left partially mutated but the caller (engine.go)
// must discard it and leave next untouched — the atomicity boundary is
// "staging vs next", not "within staging" (spec §4.D).
func executeDrawlist(data []byte, limits drawlistLimits, staging *Framebuffer, resources *resourceTable) error {
	if len(data) > limits.MaxTotalBytes {
		return newErr(ErrLimit, "drawlist exceeds max total bytes")
	}
	header, err := parseDrawlistHeader(data)
	if err != nil {
		return err
	}
	if int(header.CmdCount) > limits.MaxCmds {
		return newErr(ErrLimit, "drawlist exceeds max command count")
	}
	if int(header.StringsCount) > limits.MaxStringsCount || int(header.StringsBytesLen) > limits.MaxStringsBytes {
		return newErr(ErrLimit, "drawlist string table exceeds limits")
	}
	if int(header.BlobsCount) > limits.MaxBlobsCount || int(header.BlobsBytesLen) > limits.MaxBlobsBytes {
		return newErr(ErrLimit, "drawlist blob table exceeds limits")
	}

	sess := &drawlistSession{
		data:      data,
		header:    header,
		limits:    limits,
		staging:   staging,
		clips:     newClipStack(limits.MaxClipDepth, clipRect{0, 0, staging.Cols, staging.Rows}),
		resources: resources,
	}
	return sess.run()
}

func (s *drawlistSession) stringSpan(i uint32) ([]byte, error) {
	if i >= s.header.StringsCount {
		return nil, newErr(ErrFormat, "string table index out of range")
	}
	sp := readSpan(s.data, int(s.header.StringsSpanOffset)+int(i)*8)
	pool := s.data[s.header.StringsBytesOffset : s.header.StringsBytesOffset+s.header.StringsBytesLen]
	end := uint64(sp.Off) + uint64(sp.Len)
	if end > uint64(len(pool)) {
		return nil, newErr(ErrFormat, "string span out of bounds")
	}
	return pool[sp.Off : sp.Off+sp.Len], nil
}

func (s *drawlistSession) blobSpan(i uint32) ([]byte, error) {
	if i >= s.header.BlobsCount {
		return nil, newErr(ErrFormat, "blob table index out of range")
	}
	sp := readSpan(s.data, int(s.header.BlobsSpanOffset)+int(i)*8)
	pool := s.data[s.header.BlobsBytesOffset : s.header.BlobsBytesOffset+s.header.BlobsBytesLen]
	end := uint64(sp.Off) + uint64(sp.Len)
	if end > uint64(len(pool)) {
		return nil, newErr(ErrFormat, "blob span out of bounds")
	}
	return pool[sp.Off : sp.Off+sp.Len], nil
}

// run walks the command stream, dispatching each opcode in order.
func (s *drawlistSession) run() error {
	cmds := s.data[s.header.CmdOffset : s.header.CmdOffset+s.header.CmdBytes]
	r := newByteReader(cmds)
	for i := uint32(0); i < s.header.CmdCount; i++ {
		opcodeU16, ok := r.u16()
		if !ok {
			return newErr(ErrFormat, "truncated command framing")
		}
		flags, ok := r.u16()
		if !ok || flags != 0 {
			return newErr(ErrFormat, "command flags must be zero")
		}
		size, ok := r.u32()
		if !ok {
			return newErr(ErrFormat, "truncated command size")
		}
		if size%4 != 0 {
			return newErr(ErrFormat, "command size not 4-byte aligned")
		}
		payloadLen := int(size) - 8
		if payloadLen < 0 {
			return newErr(ErrFormat, "command size smaller than framing")
		}
		payload, ok := r.bytes(payloadLen)
		if !ok {
			return newErr(ErrFormat, "command payload exceeds command stream")
		}
		if err := s.dispatch(Opcode(opcodeU16), payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *drawlistSession) dispatch(op Opcode, payload []byte) error {
	switch op {
	case OpClear:
		return s.execClear(payload)
	case OpFillRect:
		return s.execFillRect(payload)
	case OpDrawText:
		return s.execDrawText(payload)
	case OpPushClip:
		return s.execPushClip(payload)
	case OpPopClip:
		return s.execPopClip(payload)
	case OpDrawTextRun:
		return s.execDrawTextRun(payload)
	case OpSetCursor:
		return s.execSetCursor(payload)
	case OpDefString:
		return s.execDefString(payload)
	case OpFreeString:
		return s.execFreeString(payload)
	case OpDefBlob:
		return s.execDefBlob(payload)
	case OpFreeBlob:
		return s.execFreeBlob(payload)
	case OpDrawTextRef:
		return s.execDrawTextRef(payload)
	default:
		return newErr(ErrUnsupported, "unknown drawlist opcode")
	}
}

func readStyle(b []byte, off int) (Style, error) {
	st := Style{
		Fg:    loadU32(b, off),
		Bg:    loadU32(b, off+4),
		Attrs: StyleAttr(loadU32(b, off+8)),
	}
	if loadU32(b, off+12) != 0 {
		return Style{}, newErr(ErrFormat, "style reserved field must be zero")
	}
	if !validateReservedZero(st.Attrs) {
		return Style{}, newErr(ErrFormat, "reserved style attribute bits must be zero")
	}
	return st, nil
}

func (s *drawlistSession) execClear(payload []byte) error {
	if len(payload) != 0 {
		return newErr(ErrFormat, "CLEAR takes no payload")
	}
	s.staging.clearAll(DefaultStyle)
	return nil
}

func (s *drawlistSession) execFillRect(payload []byte) error {
	if len(payload) != 32 {
		return newErr(ErrFormat, "bad FILL_RECT payload size")
	}
	x, y := int(loadI32(payload, 0)), int(loadI32(payload, 4))
	w, h := int(loadI32(payload, 8)), int(loadI32(payload, 12))
	style, err := readStyle(payload, 16)
	if err != nil {
		return err
	}
	clip := s.clips.current()
	rect := clipRect{x, y, w, h}.intersect(clip)
	for row := rect.Y; row < rect.Y+rect.H; row++ {
		for col := rect.X; col < rect.X+rect.W; col++ {
			s.staging.setCell(col, row, Cell{Style: style, GlyphLen: 1, Glyph: [glyphCap]byte{' '}})
		}
	}
	return nil
}

func (s *drawlistSession) execPushClip(payload []byte) error {
	if len(payload) != 16 {
		return newErr(ErrFormat, "bad PUSH_CLIP payload size")
	}
	r := clipRect{
		X: int(loadI32(payload, 0)),
		Y: int(loadI32(payload, 4)),
		W: int(loadI32(payload, 8)),
		H: int(loadI32(payload, 12)),
	}
	return s.clips.push(r)
}

func (s *drawlistSession) execPopClip(payload []byte) error {
	if len(payload) != 0 {
		return newErr(ErrFormat, "POP_CLIP takes no payload")
	}
	return s.clips.pop()
}

func (s *drawlistSession) execSetCursor(payload []byte) error {
	if len(payload) != 12 {
		return newErr(ErrFormat, "bad SET_CURSOR payload size")
	}
	x, y := int(loadI32(payload, 0)), int(loadI32(payload, 4))
	shape, visible, blink, reserved := payload[8], payload[9], payload[10], payload[11]
	if reserved != 0 {
		return newErr(ErrFormat, "SET_CURSOR reserved byte must be zero")
	}
	if shape > uint8(CursorBar) {
		return newErr(ErrFormat, "invalid cursor shape")
	}
	cur := &s.staging.Cursor
	if x != -1 {
		cur.X = x
	}
	if y != -1 {
		cur.Y = y
	}
	cur.Shape = CursorShape(shape)
	cur.Visible = visible != 0
	cur.Blink = blink != 0
	return nil
}

func (s *drawlistSession) execDefString(payload []byte) error {
	if len(payload) != 12 {
		return newErr(ErrFormat, "bad DEF_STRING payload size")
	}
	id := loadU32(payload, 0)
	sp := readSpan(payload, 4)
	pool := s.data[s.header.StringsBytesOffset : s.header.StringsBytesOffset+s.header.StringsBytesLen]
	if uint64(sp.Off)+uint64(sp.Len) > uint64(len(pool)) {
		return newErr(ErrFormat, "DEF_STRING span out of bounds")
	}
	return s.resources.def(id, pool[sp.Off:sp.Off+sp.Len])
}

func (s *drawlistSession) execFreeString(payload []byte) error {
	if len(payload) != 4 {
		return newErr(ErrFormat, "bad FREE_STRING payload size")
	}
	s.resources.free(loadU32(payload, 0))
	return nil
}

func (s *drawlistSession) execDefBlob(payload []byte) error {
	if len(payload) != 12 {
		return newErr(ErrFormat, "bad DEF_BLOB payload size")
	}
	id := loadU32(payload, 0)
	sp := readSpan(payload, 4)
	pool := s.data[s.header.BlobsBytesOffset : s.header.BlobsBytesOffset+s.header.BlobsBytesLen]
	if uint64(sp.Off)+uint64(sp.Len) > uint64(len(pool)) {
		return newErr(ErrFormat, "DEF_BLOB span out of bounds")
	}
	return s.resources.def(id, pool[sp.Off:sp.Off+sp.Len])
}

func (s *drawlistSession) execFreeBlob(payload []byte) error {
	if len(payload) != 4 {
		return newErr(ErrFormat, "bad FREE_BLOB payload size")
	}
	s.resources.free(loadU32(payload, 0))
	return nil
}

// execDrawText draws a single run of text in one style. idx addresses the
// drawlist's own string span table, not an engine-owned DEF_STRING
// resource — those are drawn via DRAW_TEXT_REF (execDrawTextRef) instead.
func (s *drawlistSession) execDrawText(payload []byte) error {
	if len(payload) != 32 {
		return newErr(ErrFormat, "bad DRAW_TEXT payload size")
	}
	x, y := int(loadI32(payload, 0)), int(loadI32(payload, 4))
	idx := loadU32(payload, 8)
	if loadU32(payload, 12) != 0 {
		return newErr(ErrFormat, "DRAW_TEXT reserved field must be zero")
	}
	style, err := readStyle(payload, 16)
	if err != nil {
		return err
	}
	text, err := s.stringSpan(idx)
	if err != nil {
		return err
	}
	s.drawClusters(x, y, text, style)
	return nil
}

// execDrawTextRef draws a DEF_STRING resource by id instead of a span in
// the drawlist's own string table, so a caller can register a string once
// and redraw it across many frames without re-sending its bytes (spec.md
// §3's DEF_STRING/FREE_STRING resource profile, otherwise only ever
// stored and freed). Same payload shape as DRAW_TEXT except the u32 at
// offset 8 is a resource id, not a string-table index.
func (s *drawlistSession) execDrawTextRef(payload []byte) error {
	if len(payload) != 32 {
		return newErr(ErrFormat, "bad DRAW_TEXT_REF payload size")
	}
	x, y := int(loadI32(payload, 0)), int(loadI32(payload, 4))
	id := loadU32(payload, 8)
	if loadU32(payload, 12) != 0 {
		return newErr(ErrFormat, "DRAW_TEXT_REF reserved field must be zero")
	}
	style, err := readStyle(payload, 16)
	if err != nil {
		return err
	}
	text, ok := s.resources.lookup(id)
	if !ok {
		return newErr(ErrFormat, "DRAW_TEXT_REF: unknown resource id")
	}
	s.drawClusters(x, y, text, style)
	return nil
}

// drawClusters writes text's grapheme clusters starting at (x,y), advancing
// x by each cluster's column width (a zero-width cluster still takes one
// column); writes outside the current clip are skipped but width is still
// consumed (spec §4.D).
func (s *drawlistSession) drawClusters(x, y int, text []byte, style Style) {
	clip := s.clips.current()
	col := x
	iterateClusters(text, func(c Cluster) {
		w := clusterWidth(c, EmojiWide)
		if w == 0 {
			w = 1
		}
		if clip.contains(col, y) {
			var cell Cell
			cell.Style = style
			n := len(c.Bytes)
			if n > glyphCap {
				n = glyphCap
			}
			cell.setGlyph(c.Bytes[:n])
			if w == 2 && col+1 < s.staging.Cols {
				s.staging.setWidePair(col, y, cell)
			} else {
				s.staging.setCell(col, y, cell)
			}
		}
		col += w
	})
}

// textRunSegment is one DRAW_TEXT_RUN blob segment: style plus a text span
// into the blob's own trailing byte pool. The blob is a u32 segment count,
// then count 24-byte segments (16-byte style, u32 text offset, u32 text
// length), then the text pool.
const textRunSegmentSize = 24

func (s *drawlistSession) execDrawTextRun(payload []byte) error {
	if len(payload) != 16 {
		return newErr(ErrFormat, "bad DRAW_TEXT_RUN payload size")
	}
	x, y := int(loadI32(payload, 0)), int(loadI32(payload, 4))
	blobIdx := loadU32(payload, 8)
	blob, err := s.blobSpan(blobIdx)
	if err != nil {
		return err
	}

	// Phase 1: span-table bounds (segment count fits the blob).
	if len(blob) < 4 {
		return newErr(ErrFormat, "text-run blob too small for segment count")
	}
	count := loadU32(blob, 0)
	if int(count) > s.limits.MaxTextRunSegments {
		return newErr(ErrLimit, "text-run exceeds max segments")
	}
	segTableEnd := 4 + uint64(count)*textRunSegmentSize

	// Phase 2: blob framing-size check (segment table plus a text pool).
	if segTableEnd > uint64(len(blob)) {
		return newErr(ErrFormat, "text-run segment table exceeds blob size")
	}
	textPool := blob[segTableEnd:]

	col := x
	for i := uint32(0); i < count; i++ {
		base := int(4 + uint64(i)*textRunSegmentSize)
		style, err := readStyle(blob, base)
		if err != nil {
			return err
		}
		off := loadU32(blob, base+16)
		ln := loadU32(blob, base+20)
		// Phase 3: per-segment slice bounds.
		if uint64(off)+uint64(ln) > uint64(len(textPool)) {
			return newErr(ErrFormat, "text-run segment span out of bounds")
		}
		segText := textPool[off : off+ln]
		newCol := col
		s.drawClustersAdvance(&newCol, y, segText, style)
		col = newCol
	}
	return nil
}

func (s *drawlistSession) drawClustersAdvance(col *int, y int, text []byte, style Style) {
	start := *col
	s.drawClusters(start, y, text, style)
	*col = start + stringClusterWidth(text, EmojiWide)
}
