package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Alia5/joycore/apitypes"
)

// EventStream is a live subscription to the server's input event feed. The
// server writes one JSON line per event until the stream is closed.
type EventStream struct {
	conn net.Conn
	dec  *json.Decoder
}

// OpenEvents subscribes to the event stream. The caller must Close the
// returned stream. Not supported with a mock transport.
func (c *Client) OpenEvents(ctx context.Context) (*EventStream, error) {
	return c.transport.OpenEvents(ctx)
}

// OpenEvents opens a raw connection, sends the stream request and hands the
// connection over to the returned EventStream.
func (t *Transport) OpenEvents(ctx context.Context) (*EventStream, error) {
	if t.mock != nil {
		return nil, errors.New("streams not supported with mock transport")
	}
	conn, err := t.open(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte("events\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write: %w", err)
	}
	// Streams run until the consumer hangs up; the transport read timeout
	// only applies to one-shot requests.
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})
	return &EventStream{conn: conn, dec: json.NewDecoder(bufio.NewReader(conn))}, nil
}

// Next blocks until the next event arrives or the stream ends.
func (s *EventStream) Next() (*apitypes.Event, error) {
	var ev apitypes.Event
	if err := s.dec.Decode(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// SetReadDeadline bounds the next Next call.
func (s *EventStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close terminates the subscription.
func (s *EventStream) Close() error {
	return s.conn.Close()
}
