//go:build linux

package zireael

import "golang.org/x/sys/unix"

// Linux's termios ioctl numbers (TCGETS/TCSETS) differ from BSD/Darwin's
// (TIOCGETA/TIOCSETA); isolating them here keeps platform_posix.go
// GOOS-agnostic.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
