package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Frame format of the chat stream: newline-delimited lines, each either
// blank or "data: " followed by a JSON payload {content?, error?}. The
// literal payload [DONE] marks normal completion and carries no content.
const (
	framePrefix  = "data:"
	doneSentinel = "[DONE]"
)

// Event is one decoded content-bearing frame of a chat stream.
type Event struct {
	Content string
}

// Stream reads a chat response body frame by frame. It owns the body and
// must be closed by the caller; Close is safe on every exit path and aborts
// the underlying transfer.
//
// Framing rules (per frame line):
//   - blank lines and lines without the recognized prefix are skipped;
//   - the sentinel ends the stream (Next reports io.EOF);
//   - payloads that fail to parse as JSON are skipped silently, since a
//     frame may be split across transport chunks and the remainder arrives
//     as noise;
//   - a payload carrying an error field terminates the stream with a
//     *StreamError;
//   - a trailing line without a final newline is still processed at EOF.
type Stream struct {
	body io.ReadCloser
	r    *bufio.Reader
	done bool
}

// NewStream wraps a response body. Exposed so tests (and fakes) can drive
// the frame parser from any reader, independent of the transport.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, r: bufio.NewReader(body)}
}

// Next returns the next content event. It reports io.EOF on normal
// completion (sentinel or end of body), a *StreamError when the server sent
// an error frame, and a transport error wrapped in ErrUnavailable when the
// read itself fails mid-stream.
func (s *Stream) Next() (Event, error) {
	if s.done {
		return Event{}, io.EOF
	}

	for {
		line, readErr := s.r.ReadString('\n')

		if line != "" {
			switch kind, payload := parseFrame(line); kind {
			case frameDone:
				s.done = true
				return Event{}, io.EOF
			case frameError:
				s.done = true
				return Event{}, &StreamError{Message: payload}
			case frameContent:
				if readErr != nil {
					// the final unterminated line still counts
					s.done = true
				}
				return Event{Content: payload}, nil
			}
		}

		if readErr != nil {
			s.done = true
			if errors.Is(readErr, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, fmt.Errorf("%w: %v", ErrUnavailable, readErr)
		}
	}
}

// Close releases the underlying body. Further Next calls report io.EOF.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

type frameKind int

const (
	frameSkip frameKind = iota
	frameContent
	frameError
	frameDone
)

type framePayload struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

func parseFrame(line string) (frameKind, string) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, framePrefix) {
		return frameSkip, ""
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, framePrefix))
	if payload == doneSentinel {
		return frameDone, ""
	}

	var p framePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		// likely a frame split across chunk boundaries; not an error
		return frameSkip, ""
	}
	if p.Error != "" {
		return frameError, p.Error
	}
	if p.Content == "" {
		return frameSkip, ""
	}
	return frameContent, p.Content
}
