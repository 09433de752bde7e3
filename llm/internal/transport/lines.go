package transport

import (
	"bufio"
	"bytes"
	"io"
)

// LineReader reads newline terminated lines of any length, without the
// trailing "\r\n" or "\n".
type LineReader struct {
	r *bufio.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns the next line. A final line without terminator is returned
// before io.EOF.
func (l *LineReader) ReadLine() ([]byte, error) {
	line, err := l.r.ReadBytes('\n')
	if err != nil {
		if len(line) > 0 && err == io.EOF {
			return bytes.TrimRight(line, "\r\n"), nil
		}
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// FrameReader yields one vendor frame at a time and io.EOF at the end.
type FrameReader interface {
	Next() ([]byte, error)
}

// SSEReader decodes Server-Sent Events and yields each event's "data:" payload,
// joining multi-line data with "\n". Comments and other fields are skipped.
type SSEReader struct {
	lines *LineReader
	buf   [][]byte
}

func NewSSEReader(l *LineReader) *SSEReader { return &SSEReader{lines: l} }

func (d *SSEReader) Next() ([]byte, error) {
	for {
		line, err := d.lines.ReadLine()
		if err != nil {
			// If we accumulated data before EOF, return it.
			if err == io.EOF && len(d.buf) > 0 {
				return d.flush(), nil
			}
			return nil, err
		}

		if len(line) == 0 {
			if len(d.buf) == 0 {
				continue
			}
			return d.flush(), nil
		}
		if line[0] == ':' {
			continue
		}
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		val := line[len("data:"):]
		if len(val) > 0 && val[0] == ' ' {
			val = val[1:]
		}
		d.buf = append(d.buf, append([]byte(nil), val...))
	}
}

func (d *SSEReader) flush() []byte {
	out := bytes.Join(d.buf, []byte("\n"))
	d.buf = d.buf[:0]
	return out
}
