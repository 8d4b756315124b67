//go:build !windows

package zireael

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// posixPlatform is the POSIX backend of the platform boundary (spec §4.I
// "POSIX backend"). It owns the tty file descriptor, a self-pipe used to
// wake a blocked wait() from another thread, and a SIGWINCH listener.
//
// Go's os/signal.Notify is the idiomatic equivalent of the spec's "chain
// to previous SIGWINCH handler using lock-free atomics": Notify registers
// a channel alongside any other registered signal consumers rather than
// replacing a single C-style handler pointer, so multiple independent
// SIGWINCH listeners in one process already compose safely without this
// backend reimplementing handler chaining itself.
type posixPlatform struct {
	fd       int
	file     *os.File
	ownedTTY bool

	wakeR, wakeW *os.File
	sigwinch     chan os.Signal
	resized      chan struct{}

	savedTermios *unix.Termios
	caps         Caps
}

func newPosixPlatform(cfg Config) (*posixPlatform, error) {
	f := os.Stdin
	owned := false
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return nil, wrapErr(ErrPlatform, "stdin is not a tty and /dev/tty is unavailable", err)
		}
		f = tty
		fd = int(tty.Fd())
		owned = true
	}

	wr, ww, err := os.Pipe()
	if err != nil {
		if owned {
			f.Close()
		}
		return nil, wrapErr(ErrPlatform, "self-pipe creation failed", err)
	}
	if err := unix.SetNonblock(int(wr.Fd()), true); err != nil {
		wr.Close()
		ww.Close()
		if owned {
			f.Close()
		}
		return nil, wrapErr(ErrPlatform, "self-pipe nonblocking setup failed", err)
	}

	p := &posixPlatform{
		fd:       fd,
		file:     f,
		ownedTTY: owned,
		wakeR:    wr,
		wakeW:    ww,
		sigwinch: make(chan os.Signal, 1),
		resized:  make(chan struct{}, 1),
	}

	baseline := detectCapsFromEnv(osEnvLookup)
	applyCapOverrides(&baseline, osEnvLookup)
	if cfg.ColorMode != ColorUnknown {
		baseline.ColorMode = clampColorMode(cfg.ColorMode, baseline.ColorMode)
	}
	baseline.SupportsOutputWaitWritable = true
	p.caps = baseline

	signal.Notify(p.sigwinch, syscall.SIGWINCH)
	go p.watchSIGWINCH()

	return p, nil
}

func (p *posixPlatform) watchSIGWINCH() {
	for range p.sigwinch {
		select {
		case p.resized <- struct{}{}:
		default: // already pending; coalesce (spec §4.J "coalescing of trailing resizes")
		}
		p.wake()
	}
}

// enterRaw installs termios raw mode per the locked flag set (spec §4.I):
// ~(ICANON|ECHO|ISIG|IEXTEN|BRKINT|ICRNL|IXON|INPCK|ISTRIP), ~OPOST, CS8,
// VMIN=0 VTIME=0 for non-blocking reads.
func (p *posixPlatform) enterRaw() error {
	termios, err := unix.IoctlGetTermios(p.fd, ioctlGetTermios)
	if err != nil {
		return wrapErr(ErrPlatform, "tcgetattr failed", err)
	}
	saved := *termios
	raw := saved
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG | unix.IEXTEN
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	p.savedTermios = &saved
	if err := unix.IoctlSetTermios(p.fd, ioctlSetTermios, &raw); err != nil {
		return wrapErr(ErrPlatform, "tcsetattr raw mode failed", err)
	}
	return nil
}

func (p *posixPlatform) leaveRaw() error {
	if p.savedTermios == nil {
		return nil
	}
	if err := unix.IoctlSetTermios(p.fd, ioctlSetTermios, p.savedTermios); err != nil {
		return wrapErr(ErrPlatform, "tcsetattr restore failed", err)
	}
	return nil
}

func (p *posixPlatform) getSize() (int, int) {
	ws, err := unix.IoctlGetWinsize(p.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0
	}
	return int(ws.Col), int(ws.Row)
}

func (p *posixPlatform) getCaps() Caps { return p.caps }

func (p *posixPlatform) readInput(buf []byte) (int, error) {
	n, err := unix.Read(p.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, nil
		}
		if err == unix.EINTR {
			return 0, nil
		}
		return -1, wrapErr(ErrPlatform, "read failed", err)
	}
	return n, nil
}

func (p *posixPlatform) writeOutput(b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(p.fd, b)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				if werr := p.pollWritable(-1); werr != nil {
					return werr
				}
				continue
			}
			if err == unix.EPIPE {
				return newErr(ErrPlatform, "broken pipe on output write")
			}
			return wrapErr(ErrPlatform, "write failed", err)
		}
		b = b[n:]
	}
	return nil
}

// wait blocks on [stdin, wake_read] via poll(2) (spec §4.I: "Self-pipe
// pair for wake; poll([stdin, wake_read])").
func (p *posixPlatform) wait(timeoutMs int) (int, error) {
	select {
	case <-p.resized:
		// The marker is consumed here; the engine's input drain reads the
		// new size through getSize.
		return 1, nil
	default:
	}
	fds := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.wakeR.Fd()), Events: unix.POLLIN},
	}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return -1, wrapErr(ErrPlatform, "poll failed", err)
	}
	if n == 0 {
		return 0, nil
	}
	if fds[1].Revents&unix.POLLIN != 0 {
		drainPipe(p.wakeR)
	}
	return 1, nil
}

func (p *posixPlatform) wake() {
	var b [1]byte
	unix.Write(int(p.wakeW.Fd()), b[:])
}

func (p *posixPlatform) pollWritable(timeoutMs int) error {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLOUT}}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil && err != unix.EINTR {
		return wrapErr(ErrPlatform, "poll(POLLOUT) failed", err)
	}
	if n == 0 && timeoutMs >= 0 {
		return newErr(ErrLimit, "output not writable within timeout")
	}
	return nil
}

func (p *posixPlatform) waitOutputWritable(timeoutMs int) error {
	if !p.caps.SupportsOutputWaitWritable {
		return newErr(ErrUnsupported, "wait_output_writable not supported")
	}
	return p.pollWritable(timeoutMs)
}

func (p *posixPlatform) nowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}

func (p *posixPlatform) close() error {
	signal.Stop(p.sigwinch)
	close(p.sigwinch)
	p.wakeR.Close()
	p.wakeW.Close()
	err := p.leaveRaw()
	if p.ownedTTY {
		p.file.Close()
	}
	return err
}

func drainPipe(f *os.File) {
	var buf [64]byte
	for {
		n, err := unix.Read(int(f.Fd()), buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}
