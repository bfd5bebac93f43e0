//go:build linux || darwin

package reactor

import "golang.org/x/sys/unix"

// closeFD, readFD and writeFD are thin wrappers over the raw syscalls,
// grounded on eventloop/fd_unix.go, kept as named helpers so the
// self-wake pipe/eventfd code in wakeup_*.go reads the same on every
// unix platform.
func closeFD(fd int) error {
	return unix.Close(fd)
}

func readFD(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}

func writeFD(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}
