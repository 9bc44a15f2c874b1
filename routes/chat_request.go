package routes

import (
	"github.com/Nandhana895/Agri-backend-sub000/services"
	"github.com/Nandhana895/Agri-backend-sub000/utils"

	"github.com/kataras/iris/v12"
)

var chatRequests = services.NewChatRequestService()

type createChatRequestInput struct {
	ExpertID uint   `json:"expertID" validate:"required"`
	Note     string `json:"note" validate:"lte=500"`
}

// CreateChatRequest lets a farmer request (or re-request) a chat with an
// expert. Re-requesting refreshes the note only; status stays whatever the
// expert last decided.
func CreateChatRequest(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	if claims.Role != "farmer" {
		utils.CreateForbidden(ctx)
		return
	}

	var input createChatRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	request, err := chatRequests.Request(claims.ID, input.ExpertID, input.Note)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(request)
}

type decideChatRequestInput struct {
	Note string `json:"note" validate:"lte=500"`
}

// ApproveChatRequest is callable only by the expert named on the record.
func ApproveChatRequest(ctx iris.Context) {
	decideChatRequest(ctx, true)
}

// RejectChatRequest is callable only by the expert named on the record.
// Rejecting a previously approved pair revokes the farmer's send ability.
func RejectChatRequest(ctx iris.Context) {
	decideChatRequest(ctx, false)
}

func decideChatRequest(ctx iris.Context, approve bool) {
	claims := utils.GetClaims(ctx)
	requestID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "invalid request id")
		return
	}

	var input decideChatRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var request interface{}
	if approve {
		request, err = chatRequests.Approve(requestID, claims.ID, input.Note)
	} else {
		request, err = chatRequests.Reject(requestID, claims.ID, input.Note)
	}
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(request)
}

// ListPendingChatRequests returns the expert's open requests.
func ListPendingChatRequests(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	requests, err := chatRequests.ListPendingForExpert(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"requests": requests})
}

// ListMyChatRequests returns every request the farmer has made.
func ListMyChatRequests(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	requests, err := chatRequests.ListMineForFarmer(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"requests": requests})
}

// ListApprovedPeers returns the counterpart emails the caller may freely message.
func ListApprovedPeers(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	emails, err := chatRequests.ApprovedPeers(claims.ID, claims.Role)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"emails": emails})
}
