package zireael

import "strconv"

// ColorMode selects how 24-bit styles degrade to the terminal's actual
// colour capability (spec §4.F).
type ColorMode int

const (
	ColorUnknown ColorMode = iota
	Color16
	Color256
	ColorRGB
)

// clampColorMode applies "requested color_mode is clamped to detected
// (min)" (spec §6.5): UNKNOWN means "use detected".
func clampColorMode(requested, detected ColorMode) ColorMode {
	if requested == ColorUnknown {
		return detected
	}
	if requested < detected {
		return requested
	}
	return detected
}

// attrOrder is the deterministic SGR attribute emission order (Open
// Question, SPEC_FULL.md §5): the same order as Style's bit layout
// (bold, italic, underline, reverse, dim, strike).
var attrOrder = []struct {
	attr StyleAttr
	code int
}{
	{AttrBold, 1},
	{AttrItalic, 3},
	{AttrUnderline, 4},
	{AttrReverse, 7},
	{AttrDim, 2},
	{AttrStrike, 9},
}

// appendSGR writes an absolute reset-then-set SGR sequence for style:
// "CSI 0" then any attrs allowed by attrsSupported in attrOrder, then fg,
// then bg — a single semicolon-joined sequence terminated by 'm' (spec
// §4.F: "deterministic v1 policy").
func appendSGR(w *byteWriter, style Style, attrsSupported uint32, mode ColorMode) {
	w.writeString("\x1b[0")
	for _, a := range attrOrder {
		if style.has(a.attr) && uint32(a.attr)&attrsSupported != 0 {
			w.writeByte(';')
			w.writeString(strconv.Itoa(a.code))
		}
	}
	appendColor(w, style.Fg, mode, true)
	appendColor(w, style.Bg, mode, false)
	w.writeByte('m')
}

// appendColor writes one colour's SGR parameters per spec §4.F's
// degradation table: 38/48 forms in RGB and 256-colour modes, and the
// 30-37/90-97 (fg) or 40-47/100-107 (bg) codes in 16-colour mode. Callers
// always supply an explicit colour, so the default-colour codes 39/49 are
// never emitted.
func appendColor(w *byteWriter, c uint32, mode ColorMode, fg bool) {
	base := 38
	if !fg {
		base = 48
	}
	switch mode {
	case ColorRGB:
		r, g, b := rgb(c)
		w.writeByte(';')
		w.writeString(strconv.Itoa(base))
		w.writeString(";2;")
		w.writeString(strconv.Itoa(int(r)))
		w.writeByte(';')
		w.writeString(strconv.Itoa(int(g)))
		w.writeByte(';')
		w.writeString(strconv.Itoa(int(b)))
	case Color256:
		idx := nearestIndex256(c)
		w.writeByte(';')
		w.writeString(strconv.Itoa(base))
		w.writeString(";5;")
		w.writeString(strconv.Itoa(idx))
	default: // Color16, ColorUnknown degrades to 16
		idx := nearestIndex16(c)
		code := ansi16Code(idx, fg)
		w.writeByte(';')
		w.writeString(strconv.Itoa(code))
	}
}

// ansi16Code maps a 0-15 palette index to its SGR code: 30-37/90-97 for
// foreground, 40-47/100-107 for background.
func ansi16Code(idx int, fg bool) int {
	bright := idx >= 8
	base := idx % 8
	switch {
	case fg && !bright:
		return 30 + base
	case fg && bright:
		return 90 + base
	case !fg && !bright:
		return 40 + base
	default:
		return 100 + base
	}
}
