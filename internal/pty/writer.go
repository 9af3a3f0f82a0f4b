package pty

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// outputReader reads the PTY master and keeps a copy of what it read.
type outputReader struct {
	src    io.Reader
	recent *Manager
}

func (r *outputReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		r.recent.record(p[:n])
	}
	if err != nil && isHangup(err) {
		err = io.EOF
	}
	return n, err
}

// isHangup reports whether err is what reading a PTY master returns after
// the child side has closed. Linux reports EIO there rather than EOF.
func isHangup(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}
