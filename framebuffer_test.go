package zireael

import "testing"

func TestNewFramebufferAllBlank(t *testing.T) {
	fb := newFramebuffer(4, 2)
	for i, c := range fb.Cells {
		if !c.equal(blankCell) {
			t.Fatalf("cell %d not blank: %+v", i, c)
		}
	}
}

func TestSetWidePairNormalizesOnOverwrite(t *testing.T) {
	fb := newFramebuffer(4, 1)
	lead := Cell{Style: Style{Fg: 0xFF0000}}
	lead.setGlyph([]byte{0xE4, 0xB8, 0xAD})
	fb.setWidePair(0, 0, lead)

	if fb.at(1, 0).Flags&CellContinuation == 0 {
		t.Fatal("expected continuation at (1,0)")
	}

	// Overwrite the lead; the former continuation must normalize to a blank
	// of the new style (spec §4.E / scenario 3).
	newStyle := Style{Bg: 0x00FF00}
	fb.setCell(0, 0, Cell{Style: newStyle, GlyphLen: 1, Glyph: [glyphCap]byte{' '}})
	cont := fb.at(1, 0)
	if cont.IsContinuation() {
		t.Fatal("former continuation should no longer be a continuation")
	}
	if cont.Style != newStyle {
		t.Fatalf("former continuation style = %+v want %+v", cont.Style, newStyle)
	}
}

func TestSetCellNormalizesLeadWhenContinuationOverwritten(t *testing.T) {
	fb := newFramebuffer(4, 1)
	lead := Cell{Style: Style{Fg: 1}}
	lead.setGlyph([]byte{0xE4, 0xB8, 0xAD})
	fb.setWidePair(0, 0, lead)

	newStyle := Style{Bg: 9}
	fb.setCell(1, 0, Cell{Style: newStyle, GlyphLen: 1, Glyph: [glyphCap]byte{' '}})
	leadCell := fb.at(0, 0)
	if leadCell.IsContinuation() {
		t.Fatal("lead must not become a continuation")
	}
	if leadCell.Style != newStyle {
		t.Fatalf("lead style after neighbour overwrite = %+v want %+v", leadCell.Style, newStyle)
	}
}

func TestRowHashStableAcrossEqualContent(t *testing.T) {
	a := newFramebuffer(3, 1)
	b := newFramebuffer(3, 1)
	a.rehashAll()
	b.rehashAll()
	if a.RowHashes[0] != b.RowHashes[0] {
		t.Fatal("identical blank rows should hash identically")
	}
	a.setCell(1, 0, Cell{Style: Style{Fg: 5}, GlyphLen: 1, Glyph: [glyphCap]byte{'x'}})
	a.rehashRow(0)
	if a.RowHashes[0] == b.RowHashes[0] {
		t.Fatal("differing row content should hash differently")
	}
}

func TestCopyFromDeepCopies(t *testing.T) {
	src := newFramebuffer(2, 2)
	src.setCell(0, 0, Cell{Style: Style{Fg: 7}, GlyphLen: 1, Glyph: [glyphCap]byte{'z'}})
	src.rehashRow(0)
	dst := newFramebuffer(2, 2)
	dst.copyFrom(src)
	if !dst.at(0, 0).equal(src.at(0, 0)) {
		t.Fatal("copyFrom should replicate cell content")
	}
	src.setCell(0, 0, Cell{Style: Style{Fg: 8}, GlyphLen: 1, Glyph: [glyphCap]byte{'q'}})
	if dst.at(0, 0).equal(src.at(0, 0)) {
		t.Fatal("copyFrom must be a deep copy, not aliasing src's backing array")
	}
}
