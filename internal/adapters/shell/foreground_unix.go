//go:build unix

package shell

import (
	"os"

	"golang.org/x/sys/unix"
)

// foregroundProcessGroup returns the process group owning the terminal of ptmx.
func foregroundProcessGroup(ptmx *os.File) (int, error) {
	// SyscallConn keeps the descriptor in non-blocking mode, unlike Fd.
	conn, err := ptmx.SyscallConn()
	if err != nil {
		return 0, err
	}

	var pgrp int
	var ioctlErr error
	if err := conn.Control(func(fd uintptr) {
		pgrp, ioctlErr = unix.IoctlGetInt(int(fd), unix.TIOCGPGRP)
	}); err != nil {
		return 0, err
	}
	return pgrp, ioctlErr
}
