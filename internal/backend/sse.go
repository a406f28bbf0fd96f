package backend

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"ragdesk/internal/domain"
)

// DoneSentinel marks normal completion of a log stream.
const DoneSentinel = "[DONE]"

// eventStream reads server-sent events and yields the data of each
// "message" event until the sentinel. It implements domain.LogStream.
type eventStream struct {
	op       string
	body     io.ReadCloser
	r        *bufio.Reader
	line     string
	err      error
	finished bool
}

func newEventStream(body io.ReadCloser, op string) *eventStream {
	return &eventStream{op: op, body: body, r: bufio.NewReader(body)}
}

func (s *eventStream) Next() bool {
	if s.finished {
		return false
	}
	for {
		data, ok, err := s.readEvent()
		if err != nil {
			s.finish(err)
			return false
		}
		if !ok {
			continue
		}
		if data == DoneSentinel {
			s.finish(nil)
			return false
		}
		s.line = data
		return true
	}
}

func (s *eventStream) Line() string { return s.line }

func (s *eventStream) Err() error { return s.err }

func (s *eventStream) Close() error {
	s.finished = true
	return s.body.Close()
}

func (s *eventStream) finish(err error) {
	s.finished = true
	s.line = ""
	s.err = err
}

// readEvent consumes lines up to the next blank line. ok is false for
// events that must not be dispatched (no data, or a named event type).
func (s *eventStream) readEvent() (data string, ok bool, err error) {
	var (
		buf     strings.Builder
		hasData bool
		event   string
	)
	for {
		raw, rerr := s.r.ReadString('\n')
		if rerr != nil {
			// A partial event at EOF is discarded.
			if errors.Is(rerr, io.EOF) {
				return "", false, domain.ErrStreamInterrupted
			}
			return "", false, &domain.NetworkError{Op: s.op, Err: rerr}
		}
		line := strings.TrimRight(raw, "\r\n")
		if line == "" {
			if !hasData || (event != "" && event != "message") {
				return "", false, nil
			}
			return buf.String(), true, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "data":
			if hasData {
				buf.WriteByte('\n')
			}
			buf.WriteString(value)
			hasData = true
		case "event":
			event = value
		}
	}
}
