//go:build linux

package serial

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var unixBauds = map[int]uint32{
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

// Open opens device at baud. Reads block for up to one second and return as
// soon as at least one byte is available. Input queued before the call is
// discarded.
func Open(device string, baud int) (io.ReadWriteCloser, error) {
	if err := checkBaud(baud); err != nil {
		return nil, err
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}
	if err := configure(fd, unixBauds[baud]); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("serial: configure %s: %w", device, err)
	}
	return os.NewFile(uintptr(fd), device), nil
}

func configure(fd int, speed uint32) error {
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, rawTermios(speed)); err != nil {
		return err
	}
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
}

// rawTermios is an 8N1 line with no input, output or local processing, so
// binary frames pass through byte for byte.
func rawTermios(speed uint32) *unix.Termios {
	t := &unix.Termios{
		Cflag:  speed | unix.CS8 | unix.CREAD | unix.CLOCAL,
		Ispeed: speed,
		Ospeed: speed,
	}
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 10
	return t
}
