package routes

import (
	"errors"

	"github.com/Nandhana895/Agri-backend-sub000/services"
	"github.com/Nandhana895/Agri-backend-sub000/utils"
	"github.com/Nandhana895/Agri-backend-sub000/ws"

	"github.com/kataras/iris/v12"
)

// gateway shares one event fan-out (and one set of services) between the
// websocket handler and the REST fallback, so both transports broadcast and
// gate identically.
var gateway = ws.NewGateway(ws.Main)

// handleServiceError maps the service error taxonomy onto HTTP responses.
// RequiresApproval is a distinguishable outcome, not a generic failure, so
// clients can offer to send a chat request instead.
func handleServiceError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "invalid request")
	case errors.Is(err, services.ErrForbidden):
		utils.CreateForbidden(ctx)
	case errors.Is(err, services.ErrNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, services.ErrRequiresApproval):
		utils.JSONError(ctx, iris.StatusForbidden, "requires_approval", "an approved chat request is required to message this expert")
	default:
		utils.CreateInternalServerError(ctx)
	}
}
