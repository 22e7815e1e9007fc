package api_test

import (
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/joycore/internal/server/api"
)

func TestRouterMatch(t *testing.T) {
	r := api.NewRouter()
	r.Register("ping", func(req *api.Request, res *api.Response, logger *slog.Logger) error { return nil })
	r.Register("controller/{id}/rumble", func(req *api.Request, res *api.Response, logger *slog.Logger) error { return nil })

	tests := []struct {
		name       string
		path       string
		wantMatch  bool
		wantParams map[string]string
	}{
		{name: "literal", path: "ping", wantMatch: true, wantParams: map[string]string{}},
		{name: "uppercase path", path: "PING", wantMatch: true, wantParams: map[string]string{}},
		{name: "placeholder", path: "controller/3/rumble", wantMatch: true, wantParams: map[string]string{"id": "3"}},
		{name: "wrong segment count", path: "controller/3", wantMatch: false},
		{name: "wrong literal", path: "controller/3/lights", wantMatch: false},
		{name: "unknown", path: "nope", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, params := r.Match(tt.path)
			if !tt.wantMatch {
				assert.Nil(t, h)
				return
			}
			require.NotNil(t, h)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestRouterStreamRoutesAreSeparate(t *testing.T) {
	r := api.NewRouter()
	r.RegisterStream("events", func(conn net.Conn, params map[string]string, logger *slog.Logger) error {
		return nil
	})

	h, _ := r.Match("events")
	assert.Nil(t, h)
	sh, params := r.MatchStream("events")
	require.NotNil(t, sh)
	assert.Equal(t, map[string]string{}, params)
}
