package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/server/api"
)

// Ping returns a trivial liveness handler.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: "joycore", Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
