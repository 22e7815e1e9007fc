package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/server/api"
	"github.com/Alia5/joycore/internal/server/api/apierror"
)

// Lights returns a handler that sets the player indicator LEDs of one
// controller.
func Lights(h *hub.Hub) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		id, err := controllerID(req)
		if err != nil {
			return err
		}
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var lightsReq apitypes.LightsRequest
		if err := json.Unmarshal([]byte(req.Payload), &lightsReq); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		if err := h.SetLights(id, lightsReq.Pattern); err != nil {
			if errors.Is(err, hub.ErrNoController) {
				return apierror.ErrNotFound(err.Error())
			}
			return apierror.ErrInternal(fmt.Sprintf("set lights failed: %v", err))
		}
		b, err := json.Marshal(apitypes.LightsResponse{ID: id})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
