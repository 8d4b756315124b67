package zireael

import "testing"

func freshState() *TerminalState {
	return &TerminalState{ColorMode: Color256}
}

func TestRenderDiffIdenticalFramesAfterFirstPresentIsEmpty(t *testing.T) {
	prev := newFramebuffer(10, 4)
	next := newFramebuffer(10, 4)
	state := freshState()
	cfg := DiffConfig{OutMaxBytesPerFrame: 4096, ColorMode: Color256}

	// First present establishes cursor/style baseline in state.
	if _, _, err := renderDiff(prev, next, state, cfg); err != nil {
		t.Fatalf("first renderDiff: %v", err)
	}
	prev.copyFrom(next)

	out, stats, err := renderDiff(prev, next, state, cfg)
	if err != nil {
		t.Fatalf("second renderDiff: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("identical frames should emit zero bytes, got %q", out)
	}
	if stats.DirtyRows != 0 {
		t.Fatalf("stats.DirtyRows = %d want 0", stats.DirtyRows)
	}
}

func TestRenderDiffRowHashMatchSkipsRow(t *testing.T) {
	prev := newFramebuffer(5, 2)
	next := newFramebuffer(5, 2)
	next.setCell(0, 1, Cell{Style: Style{Fg: 1}, GlyphLen: 1, Glyph: [glyphCap]byte{'x'}})
	next.rehashRow(1)
	state := freshState()
	cfg := DiffConfig{OutMaxBytesPerFrame: 4096, ColorMode: Color256}

	_, stats, err := renderDiff(prev, next, state, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DirtyRows != 1 {
		t.Fatalf("DirtyRows = %d want 1 (only row 1 changed)", stats.DirtyRows)
	}
}

func TestRenderDiffSingleCellChangeEmitsGlyph(t *testing.T) {
	prev := newFramebuffer(20, 3)
	next := newFramebuffer(20, 3)
	next.setCell(10, 1, Cell{Style: Style{Fg: 0x00FF0000}, GlyphLen: 1, Glyph: [glyphCap]byte{'A'}})
	next.rehashRow(1)
	state := freshState()
	cfg := DiffConfig{OutMaxBytesPerFrame: 4096, ColorMode: Color256}

	out, stats, err := renderDiff(prev, next, state, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DirtyRows != 1 || stats.DamageCellCount != 1 {
		t.Fatalf("stats = %+v, want 1 dirty row and 1 dirty cell", stats)
	}
	if !containsBytes(out, []byte("A")) {
		t.Fatalf("output should contain the glyph 'A': %q", out)
	}
	if !containsBytes(out, []byte("\x1b[2;11H")) {
		t.Fatalf("output should CUP to row 2 col 11 (1-indexed): %q", out)
	}
}

func TestRenderDiffOutputBudgetExceededReturnsLimit(t *testing.T) {
	prev := newFramebuffer(80, 24)
	next := newFramebuffer(80, 24)
	next.clearAll(Style{Fg: 1})
	next.rehashAll()
	state := freshState()
	cfg := DiffConfig{OutMaxBytesPerFrame: 4, ColorMode: Color256}

	_, _, err := renderDiff(prev, next, state, cfg)
	if KindOf(err) != ErrLimit {
		t.Fatalf("tiny budget: got %v, want ErrLimit", err)
	}
}

func TestDirtySpansExpandsAcrossContinuation(t *testing.T) {
	prev := newFramebuffer(6, 1)
	next := newFramebuffer(6, 1)
	wide := Cell{Style: Style{Fg: 2}}
	wide.setGlyph([]byte{0xE4, 0xB8, 0xAD})
	next.setWidePair(2, 0, wide)
	spans := dirtySpans(prev, next, 0)
	if len(spans) != 1 || spans[0].start != 2 || spans[0].end != 4 {
		t.Fatalf("spans = %+v, want one span [2,4)", spans)
	}
}

func containsBytes(haystack, needle []byte) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
