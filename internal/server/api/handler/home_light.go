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

// HomeLight returns a handler that sets the home button light intensity of
// one controller. Left Joy-Cons have no home light; the subcommand is still
// acknowledged by the device, so no kind check happens here.
func HomeLight(h *hub.Hub) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		id, err := controllerID(req)
		if err != nil {
			return err
		}
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var hlReq apitypes.HomeLightRequest
		if err := json.Unmarshal([]byte(req.Payload), &hlReq); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		if hlReq.Intensity > 0x0F {
			return apierror.ErrBadRequest("intensity out of range (0..15)")
		}
		if err := h.SetHomeLight(id, hlReq.Intensity); err != nil {
			if errors.Is(err, hub.ErrNoController) {
				return apierror.ErrNotFound(err.Error())
			}
			return apierror.ErrInternal(fmt.Sprintf("set home light failed: %v", err))
		}
		b, err := json.Marshal(apitypes.HomeLightResponse{ID: id})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
