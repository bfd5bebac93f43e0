//go:build darwin

package reactor

import "golang.org/x/sys/unix"

// wakeSignal is the self-wake mechanism used to pull the loop goroutine
// out of a blocking Poll call. Darwin has no eventfd, so this falls back
// to the classic self-pipe trick, as eventloop/wakeup_darwin.go does.
type wakeSignal struct {
	r, w int
}

func newWakeSignal() (*wakeSignal, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	return &wakeSignal{r: fds[0], w: fds[1]}, nil
}

func (w *wakeSignal) readFD() int { return w.r }

func (w *wakeSignal) signal() error {
	_, err := writeFD(w.w, []byte{1})
	return err
}

func (w *wakeSignal) drain() {
	var buf [64]byte
	for {
		if _, err := readFD(w.r, buf[:]); err != nil {
			return
		}
	}
}

func (w *wakeSignal) close() error {
	err1 := closeFD(w.r)
	err2 := closeFD(w.w)
	if err1 != nil {
		return err1
	}
	return err2
}
