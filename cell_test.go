package zireael

import "testing"

func TestBlankCellIsSpace(t *testing.T) {
	if blankCell.GlyphLen != 1 || blankCell.Glyph[0] != ' ' {
		t.Fatalf("blankCell = %+v, want single space", blankCell)
	}
}

func TestSetGlyphAndEqual(t *testing.T) {
	var c1, c2 Cell
	c1.setGlyph([]byte{0xE4, 0xB8, 0xAD})
	c2.setGlyph([]byte{0xE4, 0xB8, 0xAD})
	if !c1.equal(c2) {
		t.Fatal("cells with identical glyph/style/flags should be equal")
	}
	c2.Style.Fg = 0xFF0000
	if c1.equal(c2) {
		t.Fatal("cells with differing style must not be equal")
	}
}

func TestMakeContinuation(t *testing.T) {
	lead := Style{Fg: 0x00FF00}
	var c Cell
	c.setGlyph([]byte("x"))
	c.makeContinuation(lead)
	if !c.IsContinuation() {
		t.Fatal("expected continuation flag set")
	}
	if c.GlyphLen != 0 {
		t.Fatalf("continuation cell must have empty glyph, got len %d", c.GlyphLen)
	}
	if c.Style != lead {
		t.Fatalf("continuation cell should copy lead style, got %+v", c.Style)
	}
}

func TestResetClearsContinuationAndGlyph(t *testing.T) {
	var c Cell
	c.makeContinuation(Style{Fg: 1})
	fill := Style{Bg: 2}
	c.reset(fill)
	if c.IsContinuation() {
		t.Fatal("reset must clear continuation flag")
	}
	if c.Style != fill {
		t.Fatalf("reset should apply fill style, got %+v", c.Style)
	}
	if c.GlyphLen != 1 || c.Glyph[0] != ' ' {
		t.Fatal("reset should restore blank glyph")
	}
}
