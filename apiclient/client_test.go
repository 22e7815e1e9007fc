package apiclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Alia5/joycore/apiclient"
	"github.com/Alia5/joycore/apitypes"

	"github.com/stretchr/testify/assert"
)

// testClient constructs a client backed by a simple in-memory responder.
// responses maps route patterns (before path param substitution) to raw JSON
// payloads. If err is non-nil, every request returns that error, simulating
// dial failures.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(responses map[string]string) (err error)
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name: "ping success",
			setup: func(responses map[string]string) error {
				responses["ping"] = `{"server":"joycore","version":"0.1.0"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any) {
				resp, ok := got.(*apitypes.PingResponse)
				assert.True(t, ok, "expected *apitypes.PingResponse type")
				assert.Equal(t, "joycore", resp.Server)
			},
		},
		{
			name: "controller list",
			setup: func(responses map[string]string) error {
				responses["controller/list"] = `{"controllers":[{"id":1,"kind":"joycon-left","state":"streaming","mac":"98:B6:E9:00:11:22","battery":"full","charging":false}]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.ControllerList() },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.ControllerListResponse)
				assert.Len(t, resp.Controllers, 1)
				assert.Equal(t, "joycon-left", resp.Controllers[0].Kind)
			},
		},
		{
			name: "unit list empty",
			setup: func(responses map[string]string) error {
				responses["unit/list"] = `{"units":[]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.UnitList() },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.UnitListResponse)
				assert.Len(t, resp.Units, 0)
			},
		},
		{
			name: "rumble success",
			setup: func(responses map[string]string) error {
				responses["controller/{id}/rumble"] = `{"id":2}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.Rumble(2, apitypes.RumbleRequest{LowFreq: 160, HighFreq: 320, Amp: 500})
			},
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.RumbleResponse)
				assert.Equal(t, 2, resp.ID)
			},
		},
		{
			name: "rumble unknown controller",
			setup: func(responses map[string]string) error {
				responses["controller/{id}/rumble"] = `{"status":404,"title":"Not Found","detail":"controller 9: no such controller"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.Rumble(9, apitypes.RumbleRequest{})
			},
			wantErr: "404 Not Found: controller 9: no such controller",
		},
		{
			name:    "transport failure",
			setup:   func(responses map[string]string) error { return errors.New("dial fail") },
			call:    func(c *apiclient.Client) (any, error) { return c.ControllerList() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			setup:   func(responses map[string]string) error { return nil },
			call:    func(c *apiclient.Client) (any, error) { return c.UnitList() },
			wantErr: "empty response",
		},
		{
			name: "lights success",
			setup: func(responses map[string]string) error {
				responses["controller/{id}/lights"] = `{"id":1}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Lights(1, 0x01) },
			assertFunc: func(t *testing.T, got any) {
				resp := got.(*apitypes.LightsResponse)
				assert.Equal(t, 1, resp.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			errInject := error(nil)
			if tt.setup != nil {
				if e := tt.setup(responses); e != nil {
					errInject = e
				}
			}
			c := testClient(responses, errInject)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	c := apiclient.WithTransport(apiclient.NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.PingCtx(ctx)
	assert.Error(t, err)
}

func TestStrictJSONDecode(t *testing.T) {
	responses := map[string]string{}
	responses["unit/list"] = `{"units":[],"extra":true}` // extra field should cause decode error
	c := testClient(responses, nil)
	_, err := c.UnitList()
	assert.Error(t, err)
}
