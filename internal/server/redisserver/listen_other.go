//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package redisserver

import "syscall"

// reuseControl is a no-op where SO_REUSEPORT is unavailable.
func reuseControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
