package handler

import (
	"encoding/json"
	"log/slog"
	"net"

	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/server/api"
)

// Events returns a stream handler that emits one JSON line per hub event
// until the client disconnects. The subscription is dropped on any write
// error, so a vanished client never backs up the hub.
func Events(h *hub.Hub) api.StreamHandlerFunc {
	return func(conn net.Conn, params map[string]string, logger *slog.Logger) error {
		events, cancel := h.Subscribe()
		defer cancel()

		// A read only ever returns on disconnect; clients send nothing
		// after the request line.
		closed := make(chan struct{})
		go func() {
			buf := make([]byte, 1)
			for {
				if _, err := conn.Read(buf); err != nil {
					close(closed)
					return
				}
			}
		}()

		enc := json.NewEncoder(conn)
		for {
			select {
			case <-closed:
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if err := enc.Encode(ev); err != nil {
					return nil
				}
			}
		}
	}
}
