package zireael

// EventKind is the record-type tag of the public event model (spec §6.3).
// Values are pinned to the wire record type field, so renumbering is a
// wire-format break.
type EventKind uint32

const (
	EventKey EventKind = iota + 1
	EventText
	EventPaste
	EventMouse
	EventResize
	EventTick
	EventUser
	// EventFocusIn/EventFocusOut resolve the spec's open question ("folded
	// into KEY or separate record types") as separate, stable record types
	// rather than synthetic key codes.
	EventFocusIn
	EventFocusOut
)

// Key modifier bits, xterm CSI parameter convention: the raw modifier
// parameter is 1+sum(bits), so callers decode via modifierBitsFromParam.
const (
	ModShift uint32 = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// Key actions (spec §6.3 KEY payload: "action u32 (down=1,up=2,repeat=3)").
const (
	KeyActionDown uint32 = iota + 1
	KeyActionUp
	KeyActionRepeat
)

// Named key codes for non-printable keys. These live in a private range
// above the maximum Unicode scalar so a KEY event's Key field never
// collides with a TEXT event's decoded rune (matching the "tagged union,
// fixed-size payload" design note rather than overloading one integer
// space for two meanings).
const (
	keyBase uint32 = 0x110000 + iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyBackspace
	KeyTab
	KeyEnter
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Mouse actions.
const (
	MousePress uint32 = iota + 1
	MouseRelease
	MouseMove
	MouseDrag
	MouseWheelUp
	MouseWheelDown
)

// Event is the engine's in-memory representation of one input occurrence.
// Only the fields relevant to Kind are meaningful; eventbatch.go encodes
// the wire-stable subset per record type.
type Event struct {
	Kind   EventKind
	TimeMs uint64

	Key       uint32
	Modifiers uint32
	Action    uint32

	Rune rune

	MouseButton uint32
	MouseX      int32
	MouseY      int32
	MouseAction uint32

	Cols int32
	Rows int32

	Paste []byte

	UserTag     uint32
	UserPayload []byte
}

// modifierBitsFromParam decodes an xterm CSI modifier parameter (1-based:
// raw value is 1 + bitmask) into ModShift/ModAlt/ModCtrl/ModMeta bits. A
// missing or zero parameter means "no modifiers".
func modifierBitsFromParam(param int) uint32 {
	if param <= 1 {
		return 0
	}
	return uint32(param - 1)
}
