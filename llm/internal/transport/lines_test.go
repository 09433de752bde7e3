package transport

import (
	"io"
	"strings"
	"testing"
)

func TestSSEReader(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		": keep-alive",
		"event: message_start",
		"data: {\"a\":1}",
		"",
		"data: line1",
		"data:line2",
		"",
		"",
		"data: [DONE]",
	}, "\r\n")

	r := NewSSEReader(NewLineReader(strings.NewReader(in)))
	var got []string
	for {
		f, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, string(f))
	}

	want := []string{`{"a":1}`, "line1\nline2", "[DONE]"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("frames = %q, want %q", got, want)
	}
}

func TestLineReader_LongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200*1024)
	l := NewLineReader(strings.NewReader(long + "\nnext"))
	line, err := l.ReadLine()
	if err != nil || len(line) != len(long) {
		t.Fatalf("ReadLine len = %d, err = %v", len(line), err)
	}
	line, err = l.ReadLine()
	if err != nil || string(line) != "next" {
		t.Fatalf("ReadLine = %q, %v", line, err)
	}
	if _, err := l.ReadLine(); err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}
