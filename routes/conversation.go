package routes

import (
	"github.com/Nandhana895/Agri-backend-sub000/services"
	"github.com/Nandhana895/Agri-backend-sub000/utils"
	"github.com/Nandhana895/Agri-backend-sub000/ws"

	"github.com/kataras/iris/v12"
)

var conversations = services.NewConversationService()

// ListConversations returns the caller's conversations, most recent first,
// with the peer's identity and live presence attached.
func ListConversations(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	limit := ctx.URLParamIntDefault("limit", 0)

	list, err := conversations.ListFor(claims.ID, limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	entries := make([]iris.Map, 0, len(list))
	for i := range list {
		conversation := &list[i]
		peerID, peerEmail := conversation.PeerOf(claims.ID)

		peerMap := iris.Map{
			"id":     peerID,
			"email":  peerEmail,
			"online": ws.Main.Online(ws.UserRoom(peerID)) || ws.Main.Online(ws.EmailRoom(peerEmail)),
		}
		if peer, err := services.FindUserByID(peerID); err == nil {
			peerMap["firstName"] = peer.FirstName
			peerMap["lastName"] = peer.LastName
			peerMap["lastActiveAt"] = peer.LastActiveAt
		}
		entries = append(entries, iris.Map{
			"conversation": conversation,
			"peer":         peerMap,
		})
	}
	ctx.JSON(iris.Map{"conversations": entries})
}

type resolveConversationInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResolveConversation finds or creates the conversation with the peer given by
// email, subject to the access gate.
func ResolveConversation(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input resolveConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	peer, err := services.FindUserByEmail(input.Email)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if peer.ID == claims.ID {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "cannot start a conversation with yourself")
		return
	}

	decision, err := services.CanSend(chatRequests, claims.Role, claims.ID, peer.Role, peer.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if decision == services.RequiresApproval {
		handleServiceError(ctx, services.ErrRequiresApproval)
		return
	}

	caller, err := services.FindUserByID(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	conversation, err := conversations.Resolve(caller, peer)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(conversation)
}

type pinMessageInput struct {
	Pinned *bool `json:"pinned" validate:"required"`
}

// PinMessage pins or unpins one message in a conversation the caller
// participates in.
func PinMessage(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "invalid conversation id")
		return
	}
	messageID, err := ctx.Params().GetUint("messageID")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "invalid message id")
		return
	}

	var input pinMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	conversation, err := conversations.GetForUser(conversationID, claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	message, err := conversations.TogglePin(conversation.ID, messageID, *input.Pinned)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(message)
}

// Typing sets the caller's short-lived typing flag; the websocket typing event
// writes the same key, so either transport's flag is visible to pollers.
func Typing(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "invalid conversation id")
		return
	}

	conversation, err := conversations.GetForUser(conversationID, claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	services.SetTyping(ctx, conversation.ID, claims.ID)
	ctx.JSON(iris.Map{"success": true})
}

// PeerTyping reports whether the other party is currently typing.
func PeerTyping(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	conversationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_argument", "invalid conversation id")
		return
	}

	conversation, err := conversations.GetForUser(conversationID, claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	peerID, _ := conversation.PeerOf(claims.ID)
	ctx.JSON(iris.Map{"typing": services.PeerTyping(ctx, conversation.ID, peerID)})
}
