package zireael

// rawModeEnterSequence returns the exact, locked byte sequence written on
// entering raw mode (spec §6.4): alt screen, hide cursor, wrap on, then
// the optionally-negotiated protocols in a fixed order.
func rawModeEnterSequence(caps Caps, cfg Config) []byte {
	var w []byte
	w = append(w, "\x1b[?1049h"...)
	w = append(w, "\x1b[?25l"...)
	w = append(w, "\x1b[?7h"...)
	if cfg.EnableBracketedPaste && caps.SupportsBracketedPaste {
		w = append(w, "\x1b[?2004h"...)
	}
	if cfg.EnableFocusEvents && caps.SupportsFocusEvents {
		w = append(w, "\x1b[?1004h"...)
	}
	if cfg.EnableMouse && caps.SupportsMouse {
		w = append(w, "\x1b[?1000h\x1b[?1002h\x1b[?1003h\x1b[?1006h"...)
	}
	return w
}

// rawModeLeaveSequence returns the exact, locked byte sequence written on
// leaving raw mode (spec §6.4): the mirror image of enter, in reverse
// protocol order, followed by scroll-region/SGR/cursor resets.
func rawModeLeaveSequence(caps Caps, cfg Config) []byte {
	var w []byte
	if cfg.EnableMouse && caps.SupportsMouse {
		w = append(w, "\x1b[?1006l\x1b[?1003l\x1b[?1002l\x1b[?1000l"...)
	}
	if cfg.EnableFocusEvents && caps.SupportsFocusEvents {
		w = append(w, "\x1b[?1004l"...)
	}
	if cfg.EnableBracketedPaste && caps.SupportsBracketedPaste {
		w = append(w, "\x1b[?2004l"...)
	}
	w = append(w, "\x1b[r"...)
	w = append(w, "\x1b[0m"...)
	w = append(w, "\x1b[?7h"...)
	w = append(w, "\x1b[?25h"...)
	w = append(w, "\x1b[?1049l"...)
	return w
}
