package zireael

import (
	"os"
	"strconv"
	"strings"
)

// Caps is the backend-detected terminal capability set consumed by the
// diff renderer and input parser (spec §4.I "get_caps").
type Caps struct {
	ColorMode ColorMode

	SupportsMouse               bool
	SupportsBracketedPaste      bool
	SupportsFocusEvents         bool
	SupportsOSC52               bool
	SupportsSyncUpdate          bool
	SupportsScrollRegion        bool
	SupportsCursorShape         bool
	SupportsOutputWaitWritable  bool

	SGRAttrsSupported uint32
}

// platform is the opaque handle boundary of spec §4.I: one small interface
// implemented per OS so engine.go never branches on GOOS directly.
type platform interface {
	enterRaw() error
	leaveRaw() error
	getSize() (cols, rows int)
	getCaps() Caps
	readInput(buf []byte) (int, error) // >0 bytes, 0 none available
	writeOutput(b []byte) error
	wait(timeoutMs int) (int, error) // 1 ready, 0 timeout
	wake()
	waitOutputWritable(timeoutMs int) error
	nowMs() uint64
	close() error
}

// applyCapOverrides mutates caps in place per spec §6.5's
// ZIREAEL_CAP_* environment overrides. Invalid values are ignored (the
// detected value stands); SGR_ATTRS_MASK takes precedence over
// SGR_ATTRS when both are set.
func applyCapOverrides(caps *Caps, getenv func(string) (string, bool)) {
	applyBoolOverride(getenv, "ZIREAEL_CAP_MOUSE", &caps.SupportsMouse)
	applyBoolOverride(getenv, "ZIREAEL_CAP_BRACKETED_PASTE", &caps.SupportsBracketedPaste)
	applyBoolOverride(getenv, "ZIREAEL_CAP_OSC52", &caps.SupportsOSC52)
	applyBoolOverride(getenv, "ZIREAEL_CAP_SYNC_UPDATE", &caps.SupportsSyncUpdate)
	applyBoolOverride(getenv, "ZIREAEL_CAP_SCROLL_REGION", &caps.SupportsScrollRegion)
	applyBoolOverride(getenv, "ZIREAEL_CAP_CURSOR_SHAPE", &caps.SupportsCursorShape)
	applyBoolOverride(getenv, "ZIREAEL_CAP_FOCUS_EVENTS", &caps.SupportsFocusEvents)
	applyBoolOverride(getenv, "ZIREAEL_CAP_OUTPUT_WAIT_WRITABLE", &caps.SupportsOutputWaitWritable)

	if v, ok := getenv("ZIREAEL_CAP_SGR_ATTRS_MASK"); ok {
		if mask, ok := parseU32Env(v); ok {
			caps.SGRAttrsSupported = mask
			return
		}
	}
	if v, ok := getenv("ZIREAEL_CAP_SGR_ATTRS"); ok {
		if mask, ok := parseU32Env(v); ok {
			caps.SGRAttrsSupported = mask
		}
	}
}

func applyBoolOverride(getenv func(string) (string, bool), name string, dst *bool) {
	v, ok := getenv(name)
	if !ok {
		return
	}
	b, ok := parseBoolEnv(v)
	if ok {
		*dst = b
	}
}

func parseBoolEnv(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no", "off":
		return false, true
	case "1", "true", "yes", "on":
		return true, true
	default:
		return false, false
	}
}

// parseU32Env parses a decimal or 0x-prefixed hex unsigned 32-bit value;
// a negative or otherwise malformed value is rejected (spec §6.5:
// "negative/signed rejected").
func parseU32Env(v string) (uint32, bool) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "-") {
		return 0, false
	}
	base := 10
	if strings.HasPrefix(v, "0x") || strings.HasPrefix(v, "0X") {
		base = 16
		v = v[2:]
	}
	n, err := strconv.ParseUint(v, base, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// osEnvLookup adapts os.LookupEnv to the (string) (string, bool) shape
// applyCapOverrides expects, keeping the override logic itself testable
// without touching real process environment.
func osEnvLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// detectCapsFromEnv applies the well-known terminal-identification
// environment variables (spec §4.I "Cap detection reads TERM, COLORTERM,
// TERM_PROGRAM, and well-known terminal markers") to produce a baseline
// Caps before ZIREAEL_CAP_* overrides are layered on.
func detectCapsFromEnv(getenv func(string) (string, bool)) Caps {
	caps := Caps{
		ColorMode:            Color16,
		SupportsScrollRegion: true,
		SupportsCursorShape:  true,
	}

	term, _ := getenv("TERM")
	colorterm, _ := getenv("COLORTERM")
	termProgram, _ := getenv("TERM_PROGRAM")

	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		caps.ColorMode = ColorRGB
	} else if strings.Contains(term, "256color") {
		caps.ColorMode = Color256
	}

	if _, ok := getenv("KITTY_WINDOW_ID"); ok {
		caps.ColorMode = ColorRGB
		caps.SupportsSyncUpdate = true
		caps.SupportsBracketedPaste = true
		caps.SupportsFocusEvents = true
		caps.SupportsMouse = true
	}
	if _, ok := getenv("WEZTERM_PANE"); ok {
		caps.ColorMode = ColorRGB
		caps.SupportsSyncUpdate = true
		caps.SupportsBracketedPaste = true
		caps.SupportsMouse = true
	}
	if _, ok := getenv("WT_SESSION"); ok {
		caps.ColorMode = ColorRGB
		caps.SupportsBracketedPaste = true
		caps.SupportsMouse = true
	}
	if _, ok := getenv("VTE_VERSION"); ok {
		caps.SupportsBracketedPaste = true
		caps.SupportsFocusEvents = true
		caps.SupportsMouse = true
	}
	if termProgram == "iTerm.app" {
		caps.ColorMode = ColorRGB
		caps.SupportsBracketedPaste = true
		caps.SupportsMouse = true
	}
	if strings.Contains(term, "xterm") {
		caps.SupportsBracketedPaste = true
		caps.SupportsFocusEvents = true
		caps.SupportsMouse = true
	}

	caps.SGRAttrsSupported = uint32(AttrBold | AttrItalic | AttrUnderline | AttrReverse | AttrDim | AttrStrike)
	return caps
}
