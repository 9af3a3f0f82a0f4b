package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxLineLength is the longest line returned by a LineReader. Longer input
// lines are split and the remainder is returned as the next line.
const MaxLineLength = 255

// LineReader splits a byte stream into protocol lines.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// ReadLine returns the next line without its terminator. A final line with
// no trailing newline is still returned; io.EOF follows it.
func (l *LineReader) ReadLine() (string, error) {
	b, err := l.r.ReadSlice('\n')
	switch {
	case err == nil:
		b = b[:len(b)-1]
	case errors.Is(err, bufio.ErrBufferFull):
	case errors.Is(err, io.EOF) && len(b) > 0:
	default:
		return "", err
	}
	return strings.TrimSuffix(string(b), "\r"), nil
}

// Scan calls fn for every line read from r until EOF. It returns nil on
// EOF and the read error otherwise.
func Scan(r io.Reader, fn func(line string)) error {
	lr := NewLineReader(r)
	for {
		line, err := lr.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fn(line)
	}
}
