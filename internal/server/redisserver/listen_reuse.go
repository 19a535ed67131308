//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package redisserver

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl marks the listening socket reusable so a restarted server
// can bind while old connections linger in TIME_WAIT.
func reuseControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
