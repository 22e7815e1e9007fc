package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/server/api"
)

// UnitList returns a handler that lists paired logical gamepads.
func UnitList(h *hub.Hub) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		payload := apitypes.UnitListResponse{Units: h.Units()}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
