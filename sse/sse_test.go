package sse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextEmptyBufferNeedsMore(t *testing.T) {
	s := New()
	res, _ := s.Next(nil)
	require.Equal(t, NeedMore, res)
	require.Equal(t, 0, s.Pos())
}

func TestNextPosClampedToLen(t *testing.T) {
	s := &Scanner{pos: 1000}
	buf := []byte("data: x\n")
	res, _ := s.Next(buf)
	require.Equal(t, NeedMore, res)
	require.Equal(t, len(buf), s.Pos())
}

func TestNextBasicDataLine(t *testing.T) {
	buf := []byte("data: hello\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "hello", string(span.Text(buf)))
	require.Equal(t, len(buf), s.Pos())
}

func TestNextNoSpaceAfterColon(t *testing.T) {
	buf := []byte("data:hello\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "hello", string(span.Text(buf)))
}

func TestNextEmptyPayload(t *testing.T) {
	buf := []byte("data:\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "", string(span.Text(buf)))
}

func TestNextCRLF(t *testing.T) {
	buf := []byte("data: hi\r\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "hi", string(span.Text(buf)))
}

func TestNextSkipsNonDataFields(t *testing.T) {
	buf := []byte("event: message\nid: 10\nretry: 1000\ndata: ok\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "ok", string(span.Text(buf)))
}

func TestNextSkipsCommentsAndBlanks(t *testing.T) {
	buf := []byte(":\n: keepalive\n\ndata: yep\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "yep", string(span.Text(buf)))
}

func TestNextMultipleDataLinesInOrder(t *testing.T) {
	buf := []byte("data: one\ndata: two\n")
	s := New()

	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "one", string(span.Text(buf)))

	res, span = s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "two", string(span.Text(buf)))

	res, _ = s.Next(buf)
	require.Equal(t, NeedMore, res)
}

func TestNextFragmentationMidLineRewindsToLineStart(t *testing.T) {
	buf := []byte("event: x\ndata: he")
	lineStart := len("event: x\n")
	s := New()
	res, _ := s.Next(buf)
	require.Equal(t, NeedMore, res)
	require.Equal(t, lineStart, s.Pos())
}

func TestNextFragmentationMidPrefixRewindsToStart(t *testing.T) {
	buf := []byte("da")
	s := New()
	res, _ := s.Next(buf)
	require.Equal(t, NeedMore, res)
	require.Equal(t, 0, s.Pos())
}

func TestNextLeadingSpaceOnFieldNameIsNotAField(t *testing.T) {
	buf := []byte(" data: nope\ndata: yep\n")
	s := New()
	res, span := s.Next(buf)
	require.Equal(t, Data, res)
	require.Equal(t, "yep", string(span.Text(buf)))
}

func TestNextCommentThenPartialLineResumePoint(t *testing.T) {
	buf := []byte(": keepalive\nda")
	lineStart := len(": keepalive\n")
	s := New()
	res, _ := s.Next(buf)
	require.Equal(t, NeedMore, res)
	require.Equal(t, lineStart, s.Pos())
}

// TestNextResumable exercises the same resumability discipline the core
// parser guarantees: splitting a stream at every byte and growing the
// same backing array must produce the same data lines as one full call.
func TestNextResumable(t *testing.T) {
	full := []byte("event: x\ndata: hello world\ndata: second\n")

	for split := 0; split < len(full); split++ {
		buf := make([]byte, len(full))
		copy(buf, full[:split])

		s := New()
		var got []string
		cur := buf[:split]
		for {
			res, span := s.Next(cur)
			if res == NeedMore {
				if len(cur) == len(full) {
					break
				}
				copy(buf, full)
				cur = buf
				continue
			}
			got = append(got, string(span.Text(cur)))
		}
		require.Equal(t, []string{"hello world", "second"}, got, "split at %d", split)
	}
}
