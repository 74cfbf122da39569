//go:build !linux

package serial

import (
	"io"

	goserial "github.com/tarm/goserial"
)

// Open opens device at baud.
func Open(device string, baud int) (io.ReadWriteCloser, error) {
	if err := checkBaud(baud); err != nil {
		return nil, err
	}
	return goserial.OpenPort(&goserial.Config{Name: device, Baud: baud})
}
