package zireael

import "testing"

// drawlistBuilder assembles a well-formed drawlist buffer for tests,
// mirroring the wire layout in spec §6.2 without depending on drawlist.go's
// own parser (so a parser bug can't hide a builder bug).
type drawlistBuilder struct {
	cmds        []byte
	stringBytes []byte
	stringSpans []byte
	blobBytes   []byte
	blobSpans   []byte
	cmdCount    uint32
}

func (b *drawlistBuilder) addCmd(op Opcode, payload []byte) {
	var hdr [8]byte
	storeU16(hdr[0:2], 0, uint16(op))
	storeU16(hdr[2:4], 0, 0)
	storeU32(hdr[4:8], 0, uint32(8+len(payload)))
	b.cmds = append(b.cmds, hdr[:]...)
	b.cmds = append(b.cmds, payload...)
	b.cmdCount++
}

func (b *drawlistBuilder) addString(s string) uint32 {
	idx := uint32(len(b.stringSpans) / 8)
	off := uint32(len(b.stringBytes))
	var sp [8]byte
	storeU32(sp[0:4], 0, off)
	storeU32(sp[4:8], 0, uint32(len(s)))
	b.stringSpans = append(b.stringSpans, sp[:]...)
	b.stringBytes = append(b.stringBytes, []byte(s)...)
	return idx
}

func pad4b(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func (b *drawlistBuilder) build(version uint32) []byte {
	cmds := pad4b(append([]byte(nil), b.cmds...))
	stringSpans := pad4b(append([]byte(nil), b.stringSpans...))
	stringBytes := pad4b(append([]byte(nil), b.stringBytes...))
	blobSpans := pad4b(append([]byte(nil), b.blobSpans...))
	blobBytes := pad4b(append([]byte(nil), b.blobBytes...))

	off := uint32(drawlistHeaderSize)
	cmdOffset := off
	off += uint32(len(cmds))
	stringsSpanOffset := off
	off += uint32(len(stringSpans))
	stringsBytesOffset := off
	off += uint32(len(stringBytes))
	blobsSpanOffset := off
	off += uint32(len(blobSpans))
	blobsBytesOffset := off
	off += uint32(len(blobBytes))

	total := off
	buf := make([]byte, total)
	storeU32(buf, 0, drawlistMagic)
	storeU32(buf, 4, version)
	storeU32(buf, 8, drawlistHeaderSize)
	storeU32(buf, 12, total)
	storeU32(buf, 16, cmdOffset)
	storeU32(buf, 20, uint32(len(cmds)))
	storeU32(buf, 24, b.cmdCount)
	storeU32(buf, 28, stringsSpanOffset)
	storeU32(buf, 32, uint32(len(b.stringSpans)/8))
	storeU32(buf, 36, stringsBytesOffset)
	storeU32(buf, 40, uint32(len(b.stringBytes)))
	storeU32(buf, 44, blobsSpanOffset)
	storeU32(buf, 48, uint32(len(b.blobSpans)/8))
	storeU32(buf, 52, blobsBytesOffset)
	storeU32(buf, 56, uint32(len(b.blobBytes)))
	storeU32(buf, 60, 0)

	copy(buf[cmdOffset:], cmds)
	copy(buf[stringsSpanOffset:], stringSpans)
	copy(buf[stringsBytesOffset:], stringBytes)
	copy(buf[blobsSpanOffset:], blobSpans)
	copy(buf[blobsBytesOffset:], blobBytes)
	return buf
}

func stylePayload(style Style) []byte {
	var b [16]byte
	storeU32(b[0:4], 0, style.Fg)
	storeU32(b[4:8], 0, style.Bg)
	storeU32(b[8:12], 0, uint32(style.Attrs))
	storeU32(b[12:16], 0, 0)
	return b[:]
}

func i32Payload(vals ...int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		storeI32(b, i*4, v)
	}
	return b
}

func TestDrawlistBadMagicIsFormat(t *testing.T) {
	b := &drawlistBuilder{}
	data := b.build(1)
	data[0] = 0 // corrupt magic
	fb := newFramebuffer(80, 24)
	err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16))
	if KindOf(err) != ErrFormat {
		t.Fatalf("bad magic: got %v, want ErrFormat", err)
	}
}

func TestDrawlistUnknownOpcodeIsUnsupported(t *testing.T) {
	b := &drawlistBuilder{}
	b.addCmd(Opcode(65535), nil)
	data := b.build(1)
	fb := newFramebuffer(80, 24)
	err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16))
	if KindOf(err) != ErrUnsupported {
		t.Fatalf("unknown opcode: got %v, want ErrUnsupported", err)
	}
}

func TestDrawlistCmdCountOverLimitIsLimit(t *testing.T) {
	b := &drawlistBuilder{}
	b.addCmd(OpClear, nil)
	data := b.build(1)
	limits := defaultDrawlistLimits()
	limits.MaxCmds = 0
	fb := newFramebuffer(80, 24)
	err := executeDrawlist(data, limits, fb, newResourceTable(1024, 16))
	if KindOf(err) != ErrLimit {
		t.Fatalf("over cmd limit: got %v, want ErrLimit", err)
	}
}

func TestDrawlistClearThenFillRectIsDeterministic(t *testing.T) {
	b := &drawlistBuilder{}
	b.addCmd(OpClear, nil)
	style := Style{Fg: 0x00FF0000}
	b.addCmd(OpFillRect, append(i32Payload(0, 0, 80, 24), stylePayload(style)...))
	data := b.build(1)

	fb1 := newFramebuffer(80, 24)
	if err := executeDrawlist(data, defaultDrawlistLimits(), fb1, newResourceTable(1024, 16)); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	fb2 := newFramebuffer(80, 24)
	if err := executeDrawlist(data, defaultDrawlistLimits(), fb2, newResourceTable(1024, 16)); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if !fb1.at(0, 0).equal(fb2.at(0, 0)) {
		t.Fatal("repeated identical drawlist should produce identical framebuffers")
	}
	if fb1.at(0, 0).Style != style {
		t.Fatalf("fill style = %+v want %+v", fb1.at(0, 0).Style, style)
	}
}

func TestDrawlistDrawTextWritesWideGraphemePair(t *testing.T) {
	b := &drawlistBuilder{}
	idx := b.addString(string([]byte{0xE4, 0xB8, 0xAD})) // U+4E2D, width 2
	style := Style{}
	payload := append(i32Payload(0, 0), byte4(idx)...)
	payload = append(payload, byte4(0)...) // reserved
	payload = append(payload, stylePayload(style)...)
	b.addCmd(OpDrawText, payload)
	data := b.build(1)

	fb := newFramebuffer(80, 24)
	if err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fb.at(1, 0).Flags&CellContinuation == 0 {
		t.Fatal("wide grapheme should leave a CONTINUATION cell at (1,0)")
	}
}

func TestDrawlistPopClipOnEmptyStackIsFormat(t *testing.T) {
	b := &drawlistBuilder{}
	b.addCmd(OpPopClip, nil)
	data := b.build(1)
	fb := newFramebuffer(80, 24)
	err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16))
	if KindOf(err) != ErrFormat {
		t.Fatalf("POP_CLIP on empty stack: got %v, want ErrFormat", err)
	}
}

func TestDrawlistSetCursorUnchangedCoordinate(t *testing.T) {
	b := &drawlistBuilder{}
	payload := i32Payload(5, 5)
	payload = append(payload, 0, 1, 0, 0) // shape=block, visible=1, blink=0, reserved=0
	b.addCmd(OpSetCursor, payload)
	payload2 := i32Payload(-1, 9)
	payload2 = append(payload2, 1, 1, 1, 0)
	b.addCmd(OpSetCursor, payload2)
	data := b.build(1)
	fb := newFramebuffer(80, 24)
	if err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fb.Cursor.X != 5 || fb.Cursor.Y != 9 {
		t.Fatalf("cursor = (%d,%d) want (5,9)", fb.Cursor.X, fb.Cursor.Y)
	}
	if fb.Cursor.Shape != CursorUnderline {
		t.Fatalf("cursor shape = %v want underline", fb.Cursor.Shape)
	}
}

func TestDrawlistDefStringThenDrawTextRefDrawsResource(t *testing.T) {
	b := &drawlistBuilder{}
	off := uint32(len(b.stringBytes))
	b.stringBytes = append(b.stringBytes, []byte("hi")...)

	defPayload := append(byte4(42), byte4(off)...)
	defPayload = append(defPayload, byte4(2)...) // len
	b.addCmd(OpDefString, defPayload)

	style := Style{}
	refPayload := append(i32Payload(0, 0), byte4(42)...)
	refPayload = append(refPayload, byte4(0)...) // reserved
	refPayload = append(refPayload, stylePayload(style)...)
	b.addCmd(OpDrawTextRef, refPayload)
	data := b.build(1)

	fb := newFramebuffer(80, 24)
	if err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cell := fb.at(0, 0)
	if cell.GlyphLen != 1 || cell.Glyph[0] != 'h' {
		t.Fatalf("cell = %+v want glyph 'h'", cell)
	}
}

func TestDrawlistDrawTextRefUnknownResourceIsFormat(t *testing.T) {
	b := &drawlistBuilder{}
	style := Style{}
	refPayload := append(i32Payload(0, 0), byte4(99)...)
	refPayload = append(refPayload, byte4(0)...)
	refPayload = append(refPayload, stylePayload(style)...)
	b.addCmd(OpDrawTextRef, refPayload)
	data := b.build(1)

	fb := newFramebuffer(80, 24)
	err := executeDrawlist(data, defaultDrawlistLimits(), fb, newResourceTable(1024, 16))
	if KindOf(err) != ErrFormat {
		t.Fatalf("DRAW_TEXT_REF unknown id: got %v, want ErrFormat", err)
	}
}

func byte4(v uint32) []byte {
	b := make([]byte, 4)
	storeU32(b, 0, v)
	return b
}
