//go:build !unix

package cli

import (
	"os"
	"sync"
	"time"
)

// keyReader reads key bytes with blocking reads. stop can only join the
// goroutine when in supports read deadlines.
type keyReader struct {
	in   *os.File
	done chan struct{}
	once sync.Once
}

func startKeyReader(in *os.File, key func(byte) bool, stop func()) *keyReader {
	k := &keyReader{in: in, done: make(chan struct{})}
	go func() {
		defer close(k.done)
		buf := make([]byte, 16)
		for {
			n, err := in.Read(buf)
			for _, c := range buf[:n] {
				if !key(c) {
					stop()
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return k
}

func (k *keyReader) stop() {
	k.once.Do(func() {
		if k.in.SetReadDeadline(time.Now()) == nil {
			<-k.done
		}
	})
}
