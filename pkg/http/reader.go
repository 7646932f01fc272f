package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the size of each read issued by ReadMessage.
const DefaultChunkSize = 512

// Framing selects how ReadMessage decides that a message is complete.
type Framing int

const (
	// FramingShortRead ends the message on the first read that returns
	// fewer bytes than the chunk size, or on end of stream.
	//
	// A message whose size is an exact multiple of the chunk size, sent by
	// a peer that then keeps the connection open, is indistinguishable from
	// one with more data coming: the reader blocks until the peer sends
	// more or closes.
	FramingShortRead Framing = iota
	// FramingContentLength reads until the header boundary has arrived and
	// then until Content-Length body bytes are buffered. Without a usable
	// Content-Length the message ends at the boundary.
	FramingContentLength
)

func (f Framing) String() string {
	switch f {
	case FramingShortRead:
		return "short-read"
	case FramingContentLength:
		return "content-length"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}

// ParseFraming converts a framing name back to a Framing.
func ParseFraming(s string) (Framing, error) {
	switch s {
	case "", "short-read":
		return FramingShortRead, nil
	case "content-length":
		return FramingContentLength, nil
	default:
		return 0, fmt.Errorf("unknown framing %q", s)
	}
}

// ReadOptions configures ReadMessage.
type ReadOptions struct {
	ChunkSize int
	Framing   Framing
}

// ReadMessage drains a message from r into a single buffer.
//
// End of stream is not an error. Any other read error stops the loop and
// is returned together with the bytes buffered so far.
func ReadMessage(r io.Reader, opts ReadOptions) ([]byte, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	var done func([]byte) bool
	if opts.Framing == FramingContentLength {
		done = newLengthTracker().complete
	}

	var msg []byte
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		msg = append(msg, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return msg, nil
			}
			return msg, err
		}
		if n == 0 {
			return msg, nil
		}
		if done != nil {
			if done(msg) {
				return msg, nil
			}
			continue
		}
		if n < chunkSize {
			return msg, nil
		}
	}
}

// lengthTracker remembers where the body starts once the boundary has
// been seen, so every read does not rescan the header section.
type lengthTracker struct {
	bodyStart int
	want      int64
}

func newLengthTracker() *lengthTracker {
	return &lengthTracker{bodyStart: -1}
}

func (t *lengthTracker) complete(msg []byte) bool {
	if t.bodyStart < 0 {
		idx := bytes.Index(msg, []byte(boundary))
		if idx == -1 {
			return false
		}
		t.bodyStart = idx + len(boundary)
		t.want = 0
		head := string(msg[:idx])
		if lineEnd := bytes.Index(msg[:idx], []byte(crlf)); lineEnd != -1 {
			t.want = contentLength(parseHeaderLines(head[lineEnd+len(crlf):]))
		}
		if t.want < 0 {
			t.want = 0
		}
	}
	return int64(len(msg)-t.bodyStart) >= t.want
}
