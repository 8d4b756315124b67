package zireael

// ParserCaps gates the optional input protocols the parser recognizes,
// mirroring the platform's detected/negotiated capabilities (spec §4.G:
// bracketed paste and focus events are each "gated by config and
// supports_*").
type ParserCaps struct {
	BracketedPaste bool
	FocusEvents    bool
}

const (
	escByte = 0x1b
)

// inputParser is a byte-oriented streaming parser over the raw input
// stream (spec §4.G). It is hand-written rather than built on a VT
// escape-code library: the available pack libraries (go-ansicode, go-vte,
// go-utf8, go-iterator) parse terminal *output* sequences produced by a
// program for a terminal to render, not input bytes a terminal sends to a
// program, so none of them fit this direction of the wire (see DESIGN.md).
//
// Feed is the only entry point: it appends new bytes to any carried-over
// partial sequence and returns every event that could be fully decoded.
// Bytes that don't yet form a complete sequence are retained in buf for
// the next Feed call, so a CSI sequence split across two non-blocking
// reads still parses correctly once the rest arrives.
type inputParser struct {
	buf []byte

	pasteActive  bool
	pasteData    []byte
	pasteMax     int
	pasteTermPos int // bytes of the closing terminator matched so far
}

var pasteTerminator = []byte{escByte, '[', '2', '0', '1', '~'}

func newInputParser(pasteMax int) *inputParser {
	return &inputParser{pasteMax: pasteMax}
}

// Feed decodes as many complete events as chunk (plus any carried partial
// sequence) contains. nowMs stamps every produced event's TimeMs.
func (p *inputParser) Feed(chunk []byte, nowMs uint64, caps ParserCaps) ([]Event, error) {
	p.buf = append(p.buf, chunk...)
	var out []Event

	for {
		if p.pasteActive {
			done, err := p.drainPaste(nowMs, &out)
			if err != nil {
				return out, err
			}
			if !done {
				break
			}
			continue
		}
		if len(p.buf) == 0 {
			break
		}
		n, ev, ok := p.step(nowMs, caps)
		if !ok {
			break // incomplete sequence at the front; wait for more bytes
		}
		p.buf = p.buf[n:]
		if ev != nil {
			out = append(out, *ev)
		}
	}
	return out, nil
}

// FlushEscape is called when the caller's timeout has elapsed with a lone
// ESC still pending (spec §4.G: "ESC + unterminated: escape literal
// (timeout or alone)"). It resolves that single byte to a KeyEscape event.
func (p *inputParser) FlushEscape(nowMs uint64) (Event, bool) {
	if len(p.buf) != 1 || p.buf[0] != escByte {
		return Event{}, false
	}
	p.buf = p.buf[:0]
	return Event{Kind: EventKey, TimeMs: nowMs, Key: KeyEscape, Action: KeyActionDown}, true
}

// drainPaste consumes raw bytes into the side buffer until the literal
// closing terminator is found, appending the resulting PASTE event to out.
// Returns done=false if the terminator hasn't arrived yet (wait for more).
func (p *inputParser) drainPaste(nowMs uint64, out *[]Event) (bool, error) {
	idx := indexOf(p.buf, pasteTerminator)
	if idx < 0 {
		// Keep enough of the tail to detect a terminator split across
		// feeds; everything before that is safe to commit now.
		safe := len(p.buf) - (len(pasteTerminator) - 1)
		if safe > 0 {
			if err := p.appendPaste(p.buf[:safe]); err != nil {
				p.buf = p.buf[safe:]
				return true, err
			}
			p.buf = p.buf[safe:]
		}
		return false, nil
	}
	if err := p.appendPaste(p.buf[:idx]); err != nil {
		p.buf = p.buf[idx+len(pasteTerminator):]
		p.pasteActive = false
		return true, err
	}
	p.buf = p.buf[idx+len(pasteTerminator):]
	p.pasteActive = false
	*out = append(*out, Event{Kind: EventPaste, TimeMs: nowMs, Paste: p.pasteData})
	p.pasteData = nil
	return true, nil
}

func (p *inputParser) appendPaste(b []byte) error {
	if len(p.pasteData)+len(b) > p.pasteMax {
		return newErr(ErrLimit, "bracketed paste payload exceeds paste buffer")
	}
	p.pasteData = append(p.pasteData, b...)
	return nil
}

func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// step attempts to decode exactly one event (or a no-op control sequence)
// from the front of p.buf. ok=false means the front bytes are an
// incomplete sequence; the caller must wait for more input. n is the
// number of bytes consumed on success; ev is nil for sequences that
// consumed bytes but produced no event (e.g. a CSI this build ignores).
func (p *inputParser) step(nowMs uint64, caps ParserCaps) (n int, ev *Event, ok bool) {
	b := p.buf
	if b[0] != escByte {
		ds := decodeRune(b)
		return ds.size, &Event{Kind: EventText, TimeMs: nowMs, Rune: ds.r}, true
	}
	if len(b) == 1 {
		return 0, nil, false // lone ESC so far; might grow or time out
	}
	switch b[1] {
	case '[':
		return p.stepCSI(b, nowMs, caps)
	case 'O':
		if len(b) < 3 {
			return 0, nil, false
		}
		return 3, ssKeyEvent(b[2], nowMs), true
	default:
		// "ESC + unterminated" with a trailing byte that isn't a known
		// introducer: treat the ESC as a literal key and reprocess the
		// rest on the next step (deterministic progress, never blocks).
		return 1, &Event{Kind: EventKey, TimeMs: nowMs, Key: KeyEscape, Action: KeyActionDown}, true
	}
}

// stepCSI decodes "ESC [ params intermediates final". params bytes are
// 0x30-0x3F, intermediates 0x20-0x2F, final 0x40-0x7E (ECMA-48 framing).
func (p *inputParser) stepCSI(b []byte, nowMs uint64, caps ParserCaps) (int, *Event, bool) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3F {
		i++
	}
	paramEnd := i
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x2F {
		i++
	}
	if i >= len(b) {
		return 0, nil, false // final byte not arrived yet
	}
	final := b[i]
	if final < 0x40 || final > 0x7E {
		// Not a valid final byte at all; drop just the ESC to make
		// progress and let the rest re-parse from ground state.
		return 1, nil, true
	}
	params := b[2:paramEnd]
	total := i + 1

	if len(params) > 0 && params[0] == '<' {
		ev := sgrMouseEvent(params[1:], final, nowMs)
		return total, ev, true
	}
	if final == '~' {
		n, _ := parseTwoParams(params)
		if n == 200 {
			if caps.BracketedPaste {
				p.pasteActive = true
				p.pasteData = nil
			}
			return total, nil, true
		}
		return total, tildeKeyEvent(params, nowMs), true
	}
	if final == 'u' {
		return total, csiUKeyEvent(params, nowMs), true
	}
	switch final {
	case 'A', 'B', 'C', 'D', 'H', 'F':
		return total, arrowKeyEvent(params, final, nowMs), true
	case 'I':
		if caps.FocusEvents {
			return total, &Event{Kind: EventFocusIn, TimeMs: nowMs}, true
		}
		return total, nil, true
	case 'O':
		if caps.FocusEvents {
			return total, &Event{Kind: EventFocusOut, TimeMs: nowMs}, true
		}
		return total, nil, true
	default:
		return total, nil, true // recognized framing, ignored function
	}
}

func ssKeyEvent(final byte, nowMs uint64) *Event {
	key, ok := ssKeyMap[final]
	if !ok {
		return nil
	}
	return &Event{Kind: EventKey, TimeMs: nowMs, Key: key, Action: KeyActionDown}
}

var ssKeyMap = map[byte]uint32{
	'A': KeyUp, 'B': KeyDown, 'C': KeyRight, 'D': KeyLeft,
	'H': KeyHome, 'F': KeyEnd,
	'P': KeyF1, 'Q': KeyF2, 'R': KeyF3, 'S': KeyF4,
}

func arrowKeyEvent(params []byte, final byte, nowMs uint64) *Event {
	key := ssKeyMap[final]
	_, mod := parseTwoParams(params)
	return &Event{Kind: EventKey, TimeMs: nowMs, Key: key, Modifiers: modifierBitsFromParam(mod), Action: KeyActionDown}
}

// tildeTable maps the leading numeric parameter of a "CSI n ~" sequence to
// a named key (spec §4.G: "tilde-terminated function keys (F5..F12,
// insert, delete, ...)").
var tildeTable = map[int]uint32{
	2: KeyInsert, 3: KeyDelete, 5: KeyPageUp, 6: KeyPageDown,
	15: KeyF5, 17: KeyF6, 18: KeyF7, 19: KeyF8,
	20: KeyF9, 21: KeyF10, 23: KeyF11, 24: KeyF12,
}

func tildeKeyEvent(params []byte, nowMs uint64) *Event {
	n, mod := parseTwoParams(params)
	key, ok := tildeTable[n]
	if !ok {
		return nil
	}
	return &Event{Kind: EventKey, TimeMs: nowMs, Key: key, Modifiers: modifierBitsFromParam(mod), Action: KeyActionDown}
}

func csiUKeyEvent(params []byte, nowMs uint64) *Event {
	key, mod := parseTwoParams(params)
	return &Event{Kind: EventKey, TimeMs: nowMs, Key: uint32(key), Modifiers: modifierBitsFromParam(mod), Action: KeyActionDown}
}

// sgrMouseEvent decodes "b;x;y" (final 'M'=press/motion, 'm'=release) per
// spec §4.G: motion without a button (b&32, low 2 bits ==3) is MOUSE_MOVE,
// with a button it's MOUSE_DRAG; bits 64/65 select the wheel.
func sgrMouseEvent(params []byte, final byte, nowMs uint64) *Event {
	b, x, y, ok := parseThreeParams(params)
	if !ok {
		return nil
	}
	ev := &Event{Kind: EventMouse, TimeMs: nowMs, MouseX: int32(x - 1), MouseY: int32(y - 1)}
	motion := b&32 != 0
	buttonBits := b & 3
	switch {
	case b&64 != 0:
		if b&1 != 0 {
			ev.MouseAction = MouseWheelDown
		} else {
			ev.MouseAction = MouseWheelUp
		}
		ev.MouseButton = uint32(buttonBits)
	case motion && buttonBits == 3:
		ev.MouseAction = MouseMove
	case motion:
		ev.MouseAction = MouseDrag
		ev.MouseButton = uint32(buttonBits)
	case final == 'm':
		ev.MouseAction = MouseRelease
		ev.MouseButton = uint32(buttonBits)
	default:
		ev.MouseAction = MousePress
		ev.MouseButton = uint32(buttonBits)
	}
	ev.Modifiers = uint32(b>>2) & (ModShift | ModAlt | ModCtrl)
	return ev
}

// parseTwoParams reads up to two ';'-separated decimal parameters,
// defaulting each to 0 when absent or malformed.
func parseTwoParams(params []byte) (first, second int) {
	parts := splitSemicolon(params)
	if len(parts) > 0 {
		first = atoiSafe(parts[0])
	}
	if len(parts) > 1 {
		second = atoiSafe(parts[1])
	}
	return
}

func parseThreeParams(params []byte) (a, b, c int, ok bool) {
	parts := splitSemicolon(params)
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	return atoiSafe(parts[0]), atoiSafe(parts[1]), atoiSafe(parts[2]), true
}

func splitSemicolon(b []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(b); i++ {
		if i == len(b) || b[i] == ';' {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	return out
}

func atoiSafe(b []byte) int {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}
