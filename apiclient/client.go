package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Alia5/joycore/apitypes"
)

// Client provides a high-level interface to the joycore API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the joycore
// API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the joycore server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// ControllerList retrieves all attached controllers with their current
// state, battery level and MAC address.
func (c *Client) ControllerList() (*apitypes.ControllerListResponse, error) {
	return c.ControllerListCtx(context.Background())
}

func (c *Client) ControllerListCtx(ctx context.Context) (*apitypes.ControllerListResponse, error) {
	const path = "controller/list"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.ControllerListResponse](raw)
}

// UnitList retrieves the logical gamepads formed by pairing, with their mode,
// player slot and member controller IDs.
func (c *Client) UnitList() (*apitypes.UnitListResponse, error) {
	return c.UnitListCtx(context.Background())
}

func (c *Client) UnitListCtx(ctx context.Context) (*apitypes.UnitListResponse, error) {
	const path = "unit/list"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.UnitListResponse](raw)
}

// Rumble applies a vibration state to one controller. Frequencies are in
// hertz, amplitude in [0, 1000]. An all-zero request stops rumble.
func (c *Client) Rumble(id int, req apitypes.RumbleRequest) (*apitypes.RumbleResponse, error) {
	return c.RumbleCtx(context.Background(), id, req)
}

func (c *Client) RumbleCtx(ctx context.Context, id int, req apitypes.RumbleRequest) (*apitypes.RumbleResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", id)}
	const path = "controller/{id}/rumble"
	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal rumble request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payloadBytes), pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.RumbleResponse](raw)
}

// Lights sets the player indicator LED pattern of one controller. Bits 0..3
// light LEDs solid, bits 4..7 flash them.
func (c *Client) Lights(id int, pattern byte) (*apitypes.LightsResponse, error) {
	return c.LightsCtx(context.Background(), id, pattern)
}

func (c *Client) LightsCtx(ctx context.Context, id int, pattern byte) (*apitypes.LightsResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", id)}
	const path = "controller/{id}/lights"
	payloadBytes, err := json.Marshal(apitypes.LightsRequest{Pattern: pattern})
	if err != nil {
		return nil, fmt.Errorf("marshal lights request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payloadBytes), pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LightsResponse](raw)
}

// HomeLight sets the home button light intensity (0..15) of one controller.
func (c *Client) HomeLight(id int, intensity byte) (*apitypes.HomeLightResponse, error) {
	return c.HomeLightCtx(context.Background(), id, intensity)
}

func (c *Client) HomeLightCtx(ctx context.Context, id int, intensity byte) (*apitypes.HomeLightResponse, error) {
	pathParams := map[string]string{"id": fmt.Sprintf("%d", id)}
	const path = "controller/{id}/homelight"
	payloadBytes, err := json.Marshal(apitypes.HomeLightRequest{Intensity: intensity})
	if err != nil {
		return nil, fmt.Errorf("marshal home light request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payloadBytes), pathParams)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.HomeLightResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
