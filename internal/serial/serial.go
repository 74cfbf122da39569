// Package serial opens receiver serial ports in raw 8N1 mode.
package serial

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Bauds lists the supported line rates, slowest first.
var Bauds = []int{4800, 9600, 19200, 38400, 57600, 115200, 230400}

// ValidBaud reports whether baud is one of Bauds.
func ValidBaud(baud int) bool {
	for _, b := range Bauds {
		if b == baud {
			return true
		}
	}
	return false
}

var detectPatterns = []string{"/dev/ttyACM*", "/dev/ttyUSB*"}

// AutoDetect returns the first USB serial device present, or "" when there
// is none. ACM devices are preferred over USB-serial adapters.
func AutoDetect() string {
	return detect(detectPatterns)
}

func detect(patterns []string) string {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, p := range matches {
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
	}
	return ""
}

func checkBaud(baud int) error {
	if !ValidBaud(baud) {
		return fmt.Errorf("unsupported baud %d", baud)
	}
	return nil
}
