package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/server/api"
)

// ControllerList returns a handler that lists attached controllers.
// Error logging is centralized in the API server.
func ControllerList(h *hub.Hub) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		payload := apitypes.ControllerListResponse{Controllers: h.Controllers()}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
