//go:build windows

package zireael

import (
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// windowsPlatform is the Win32 backend of the platform boundary (spec
// §4.I "Win32 backend"): VT processing enabled on the console handles,
// ReadConsoleInputW translated to the same byte stream the POSIX backend
// would feed inputParser, and a dedicated wake event for WaitForMultipleObjects.
type windowsPlatform struct {
	stdin, stdout windows.Handle
	savedInMode   uint32
	savedOutMode  uint32
	savedCP       uint32
	wakeEvent     windows.Handle
	caps          Caps
}

func newWindowsPlatform(cfg Config) (*windowsPlatform, error) {
	stdin := windows.Handle(os.Stdin.Fd())
	stdout := windows.Handle(os.Stdout.Fd())

	var outMode, inMode uint32
	if err := windows.GetConsoleMode(stdout, &outMode); err != nil {
		return nil, wrapErr(ErrPlatform, "GetConsoleMode(stdout) failed", err)
	}
	if err := windows.GetConsoleMode(stdin, &inMode); err != nil {
		return nil, wrapErr(ErrPlatform, "GetConsoleMode(stdin) failed", err)
	}

	wakeEvent, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return nil, wrapErr(ErrPlatform, "CreateEvent for wake failed", err)
	}

	p := &windowsPlatform{
		stdin: stdin, stdout: stdout,
		savedInMode: inMode, savedOutMode: outMode,
		wakeEvent: wakeEvent,
	}

	baseline := detectCapsFromEnv(osEnvLookup)
	applyCapOverrides(&baseline, osEnvLookup)
	baseline.ColorMode = ColorRGB // modern Windows Terminal / conhost VT both support truecolor
	baseline.SupportsOutputWaitWritable = false
	p.caps = baseline

	return p, nil
}

// enterRaw enables ENABLE_VIRTUAL_TERMINAL_PROCESSING on stdout and
// ENABLE_VIRTUAL_TERMINAL_INPUT on stdin, then walks a ladder of input
// mode candidates to disable line input and echo while keeping VT input
// (spec §4.I: "fall back through a ladder of input-mode candidates").
func (p *windowsPlatform) enterRaw() error {
	outMode := p.savedOutMode | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	if err := windows.SetConsoleMode(p.stdout, outMode); err != nil {
		return wrapErr(ErrPlatform, "SetConsoleMode(stdout) failed", err)
	}

	candidates := []uint32{
		windows.ENABLE_VIRTUAL_TERMINAL_INPUT | windows.ENABLE_WINDOW_INPUT,
		windows.ENABLE_VIRTUAL_TERMINAL_INPUT,
		0,
	}
	var lastErr error
	for _, mode := range candidates {
		if err := windows.SetConsoleMode(p.stdin, mode); err == nil {
			lastErr = nil
			break
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return wrapErr(ErrPlatform, "SetConsoleMode(stdin) failed for all candidate modes", lastErr)
	}

	windows.SetConsoleOutputCP(65001)
	windows.SetConsoleCP(65001)
	return nil
}

func (p *windowsPlatform) leaveRaw() error {
	windows.SetConsoleMode(p.stdout, p.savedOutMode)
	windows.SetConsoleMode(p.stdin, p.savedInMode)
	return nil
}

func (p *windowsPlatform) getSize() (int, int) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(p.stdout, &info); err != nil {
		return 0, 0
	}
	cols := int(info.Window.Right-info.Window.Left) + 1
	rows := int(info.Window.Bottom-info.Window.Top) + 1
	return cols, rows
}

func (p *windowsPlatform) getCaps() Caps { return p.caps }

// readInput translates KEY_EVENT records from ReadConsoleInputW into the
// same VT byte stream the POSIX backend produces, so inputParser stays
// platform-agnostic: VT arrows/esc/tab/backspace, characters re-encoded
// as UTF-8 one UTF-16 code unit at a time, and wRepeatCount honoured.
// Surrogate pairs are not joined, so characters outside the BMP arrive as
// U+FFFD.
func (p *windowsPlatform) readInput(buf []byte) (int, error) {
	var count uint32
	if err := windows.GetNumberOfConsoleInputEvents(p.stdin, &count); err != nil {
		return -1, wrapErr(ErrPlatform, "GetNumberOfConsoleInputEvents failed", err)
	}
	if count == 0 {
		return 0, nil
	}
	records := make([]windows.InputRecord, count)
	var read uint32
	if err := windows.ReadConsoleInput(p.stdin, records, &read); err != nil {
		return -1, wrapErr(ErrPlatform, "ReadConsoleInput failed", err)
	}
	n := 0
	for i := uint32(0); i < read; i++ {
		n += translateInputRecord(records[i], buf[n:])
	}
	return n, nil
}

func (p *windowsPlatform) writeOutput(b []byte) error {
	for len(b) > 0 {
		var written uint32
		if err := windows.WriteFile(p.stdout, b, &written, nil); err != nil {
			return wrapErr(ErrPlatform, "WriteFile failed", err)
		}
		if written == 0 {
			return newErr(ErrPlatform, "WriteFile wrote zero bytes")
		}
		b = b[written:]
	}
	return nil
}

func (p *windowsPlatform) wait(timeoutMs int) (int, error) {
	handles := []windows.Handle{p.stdin, p.wakeEvent}
	timeout := uint32(windows.INFINITE)
	if timeoutMs >= 0 {
		timeout = uint32(timeoutMs)
	}
	ev, err := windows.WaitForMultipleObjects(handles, false, timeout)
	if err != nil {
		return -1, wrapErr(ErrPlatform, "WaitForMultipleObjects failed", err)
	}
	switch {
	case ev == uint32(windows.WAIT_TIMEOUT):
		return 0, nil
	default:
		return 1, nil
	}
}

func (p *windowsPlatform) wake() {
	windows.SetEvent(p.wakeEvent)
}

func (p *windowsPlatform) waitOutputWritable(timeoutMs int) error {
	return newErr(ErrUnsupported, "wait_output_writable not supported on Windows backend")
}

func (p *windowsPlatform) nowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}

func (p *windowsPlatform) close() error {
	p.leaveRaw()
	windows.CloseHandle(p.wakeEvent)
	return nil
}

// translateInputRecord appends the VT byte encoding of one console input
// record into out and returns the number of bytes written (0 for
// non-key/ignored records).
func translateInputRecord(rec windows.InputRecord, out []byte) int {
	if rec.EventType != windows.KEY_EVENT {
		return 0
	}
	ke := rec.KeyEvent
	if ke.KeyDown == 0 {
		return 0
	}
	seq := vtSequenceForVirtualKey(ke.VirtualKeyCode, ke.UnicodeChar)
	n := 0
	for rep := uint16(0); rep < ke.RepeatCount; rep++ {
		if n+len(seq) > len(out) {
			break
		}
		n += copy(out[n:], seq)
	}
	return n
}

// vtSequenceForVirtualKey maps a handful of common virtual-key codes to
// their VT encoding; anything else falls back to the raw UTF-16 code
// unit re-encoded as UTF-8. A surrogate pair arrives as two records, and a
// lone surrogate half is not a valid rune, so each half encodes as U+FFFD.
func vtSequenceForVirtualKey(vk uint16, ch uint16) []byte {
	switch vk {
	case 0x26: // VK_UP
		return []byte("\x1b[A")
	case 0x28: // VK_DOWN
		return []byte("\x1b[B")
	case 0x27: // VK_RIGHT
		return []byte("\x1b[C")
	case 0x25: // VK_LEFT
		return []byte("\x1b[D")
	case 0x24: // VK_HOME
		return []byte("\x1b[H")
	case 0x23: // VK_END
		return []byte("\x1b[F")
	case 0x2D: // VK_INSERT
		return []byte("\x1b[2~")
	case 0x2E: // VK_DELETE
		return []byte("\x1b[3~")
	case 0x21: // VK_PRIOR (page up)
		return []byte("\x1b[5~")
	case 0x22: // VK_NEXT (page down)
		return []byte("\x1b[6~")
	case 0x08: // VK_BACK
		return []byte{0x7f}
	case 0x09: // VK_TAB
		return []byte{'\t'}
	case 0x0D: // VK_RETURN
		return []byte{'\r'}
	case 0x1B: // VK_ESCAPE
		return []byte{0x1b}
	default:
		if ch == 0 {
			return nil
		}
		return []byte(string(rune(ch)))
	}
}
