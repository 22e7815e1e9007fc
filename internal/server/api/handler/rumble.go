package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/internal/hub"
	"github.com/Alia5/joycore/internal/server/api"
	"github.com/Alia5/joycore/internal/server/api/apierror"
)

// controllerID parses the {id} route parameter.
func controllerID(req *api.Request) (int, error) {
	idStr, ok := req.Params["id"]
	if !ok {
		return 0, apierror.ErrBadRequest("missing id parameter")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, apierror.ErrBadRequest(fmt.Sprintf("invalid controller id: %v", err))
	}
	return id, nil
}

// Rumble returns a handler that applies a vibration state to one controller.
func Rumble(h *hub.Hub) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		id, err := controllerID(req)
		if err != nil {
			return err
		}
		if req.Payload == "" {
			return apierror.ErrBadRequest("missing payload")
		}
		var rumbleReq apitypes.RumbleRequest
		if err := json.Unmarshal([]byte(req.Payload), &rumbleReq); err != nil {
			return apierror.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		if err := h.Rumble(id, rumbleReq); err != nil {
			if errors.Is(err, hub.ErrNoController) {
				return apierror.ErrNotFound(err.Error())
			}
			return apierror.ErrInternal(fmt.Sprintf("rumble failed: %v", err))
		}
		b, err := json.Marshal(apitypes.RumbleResponse{ID: id})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
