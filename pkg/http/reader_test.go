package http

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader returns one scripted step per Read call.
type scriptedReader struct {
	steps []readStep
	calls int
}

type readStep struct {
	data string
	err  error
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if r.calls >= len(r.steps) {
		return 0, errors.New("read past end of script")
	}
	step := r.steps[r.calls]
	r.calls++
	n := copy(p, step.data)
	return n, step.err
}

func TestReadMessageShortRead(t *testing.T) {
	r := &scriptedReader{steps: []readStep{
		{data: "GET / HTTP/1.1\r\nHost: a\r\n\r\n"},
	}}
	msg, err := ReadMessage(r, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: a\r\n\r\n", string(msg))
	assert.Equal(t, 1, r.calls)
}

func TestReadMessageFullChunksThenShort(t *testing.T) {
	full := strings.Repeat("a", 8)
	r := &scriptedReader{steps: []readStep{
		{data: full},
		{data: full},
		{data: "tail"},
	}}
	msg, err := ReadMessage(r, ReadOptions{ChunkSize: 8})
	require.NoError(t, err)
	assert.Equal(t, full+full+"tail", string(msg))
	assert.Equal(t, 3, r.calls)
}

// An exact multiple of the chunk size, followed by close, is captured
// whole.
func TestReadMessageExactChunkThenEOF(t *testing.T) {
	head := "POST /upload HTTP/1.1\r\nHost: a\r\n\r\n"
	body := strings.Repeat("b", DefaultChunkSize-len(head))
	raw := head + body
	require.Len(t, raw, DefaultChunkSize)

	msg, err := ReadMessage(strings.NewReader(raw), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, raw, string(msg))

	req, err := ParseRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, body, string(req.Body))
}

func TestReadMessageMultipleChunksExact(t *testing.T) {
	raw := strings.Repeat("x", 3*DefaultChunkSize)
	msg, err := ReadMessage(bytes.NewReader([]byte(raw)), ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, msg, 3*DefaultChunkSize)
}

func TestReadMessageDataWithEOF(t *testing.T) {
	r := &scriptedReader{steps: []readStep{
		{data: "12345678"},
		{data: "last", err: io.EOF},
	}}
	msg, err := ReadMessage(r, ReadOptions{ChunkSize: 8})
	require.NoError(t, err)
	assert.Equal(t, "12345678last", string(msg))
}

func TestReadMessageZeroRead(t *testing.T) {
	r := &scriptedReader{steps: []readStep{
		{data: "12345678"},
		{data: ""},
	}}
	msg, err := ReadMessage(r, ReadOptions{ChunkSize: 8})
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(msg))
	assert.Equal(t, 2, r.calls)
}

func TestReadMessageErrorKeepsBuffered(t *testing.T) {
	reset := errors.New("connection reset by peer")
	r := &scriptedReader{steps: []readStep{
		{data: "12345678"},
		{data: "9", err: reset},
	}}
	msg, err := ReadMessage(r, ReadOptions{ChunkSize: 8})
	assert.ErrorIs(t, err, reset)
	assert.Equal(t, "123456789", string(msg))
}

func TestReadMessageEmptyStream(t *testing.T) {
	msg, err := ReadMessage(strings.NewReader(""), ReadOptions{})
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestReadMessageContentLength(t *testing.T) {
	// Every read is short; short-read framing would stop after the first.
	r := &scriptedReader{steps: []readStep{
		{data: "POST / HTTP/1.1\r\n"},
		{data: "Content-Length: 10\r\n\r\n"},
		{data: "01234"},
		{data: "56789"},
	}}
	msg, err := ReadMessage(r, ReadOptions{ChunkSize: 64, Framing: FramingContentLength})
	require.NoError(t, err)
	assert.Equal(t, 4, r.calls)

	req, err := ParseRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(req.Body))
}

func TestReadMessageContentLengthExactChunk(t *testing.T) {
	head := "POST / HTTP/1.1\r\ncontent-length: 24\r\n\r\n"
	body := strings.Repeat("z", 24)
	raw := head + body
	chunk := len(raw) / 2
	r := &scriptedReader{steps: []readStep{
		{data: raw[:chunk]},
		{data: raw[chunk:]},
	}}
	// The peer keeps the connection open; the declared length ends it.
	msg, err := ReadMessage(r, ReadOptions{ChunkSize: chunk + len(raw)%2, Framing: FramingContentLength})
	require.NoError(t, err)
	assert.Equal(t, raw, string(msg))
	assert.Equal(t, 2, r.calls)
}

func TestReadMessageContentLengthMissing(t *testing.T) {
	r := &scriptedReader{steps: []readStep{
		{data: "GET / HTTP/1.1\r\nHost: a\r\n\r\n"},
	}}
	msg, err := ReadMessage(r, ReadOptions{Framing: FramingContentLength})
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: a\r\n\r\n", string(msg))
}

func TestReadMessageContentLengthEOFEarly(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\nshort"
	msg, err := ReadMessage(strings.NewReader(raw), ReadOptions{Framing: FramingContentLength})
	require.NoError(t, err)
	assert.Equal(t, raw, string(msg))
}

func TestParseFraming(t *testing.T) {
	tests := []struct {
		in      string
		want    Framing
		wantErr bool
	}{
		{"", FramingShortRead, false},
		{"short-read", FramingShortRead, false},
		{"content-length", FramingContentLength, false},
		{"chunked", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFraming(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		if tt.in != "" {
			assert.Equal(t, tt.in, got.String())
		}
	}
	assert.Equal(t, "Framing(7)", Framing(7).String())
}
