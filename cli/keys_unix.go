//go:build unix

package cli

import (
	"errors"
	"os"
	"sync"
	"syscall"
	"time"
)

// keyReader polls a non-blocking input for key bytes. A blocked Read on a
// terminal cannot be interrupted, so polling is what lets stop join the
// goroutine.
type keyReader struct {
	fd       int
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
	nonblock bool
}

// startKeyReader passes every byte read from in to key and calls stop
// when key returns false.
func startKeyReader(in *os.File, key func(byte) bool, stop func()) *keyReader {
	k := &keyReader{
		fd:   int(in.Fd()),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	if err := syscall.SetNonblock(k.fd, true); err != nil {
		close(k.done)
		return k
	}
	k.nonblock = true
	go k.run(key, stop)
	return k
}

func (k *keyReader) run(key func(byte) bool, stop func()) {
	defer close(k.done)
	buf := make([]byte, 16)
	for {
		select {
		case <-k.quit:
			return
		default:
		}

		n, err := syscall.Read(k.fd, buf)
		if n > 0 {
			for _, c := range buf[:n] {
				if !key(c) {
					stop()
					return
				}
			}
		}
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EINTR) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil || n == 0 {
			// Closed input: keep running without keys
			return
		}
	}
}

// stop ends the reader, waits for it and puts the input back into
// blocking mode.
func (k *keyReader) stop() {
	k.once.Do(func() { close(k.quit) })
	<-k.done
	if k.nonblock {
		syscall.SetNonblock(k.fd, false)
		k.nonblock = false
	}
}
