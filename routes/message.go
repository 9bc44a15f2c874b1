package routes

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/services"
	"github.com/Nandhana895/Agri-backend-sub000/storage"
	"github.com/Nandhana895/Agri-backend-sub000/utils"

	"github.com/kataras/iris/v12"
)

var messages = services.NewMessageService(conversations)

// ListConversationMessages returns one ascending page of messages ending at
// the cursor (or at now).
func ListConversationMessages(ctx iris.Context) {
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

	cursor := ctx.URLParamIntDefault("cursor", 0)
	limit := ctx.URLParamIntDefault("limit", 0)

	page, nextCursor, err := messages.ListPage(conversation.ID, uint(cursor), limit)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"messages": page, "nextCursor": nextCursor})
}

type sendMessageInput struct {
	Text string `json:"text" validate:"lte=2000"`
}

// SendConversationMessage is the non-live send path. JSON bodies carry text
// only; multipart bodies may add attachments. Both run through the same gate
// and append as the websocket path, and a persisted message is broadcast to
// the recipient's rooms if any are live.
func SendConversationMessage(ctx iris.Context) {
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
	recipient, err := services.FindUserByID(peerID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	decision, err := services.CanSend(chatRequests, claims.Role, claims.ID, recipient.Role, recipient.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if decision == services.RequiresApproval {
		handleServiceError(ctx, services.ErrRequiresApproval)
		return
	}

	sender, err := services.FindUserByID(claims.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	var text string
	var attachments []models.Attachment
	if strings.HasPrefix(ctx.GetContentTypeRequested(), "multipart/form-data") {
		text = ctx.FormValue("text")
		attachments, err = saveUploadedAttachments(ctx)
		if err != nil {
			handleServiceError(ctx, err)
			return
		}
	} else {
		var input sendMessageInput
		if err := ctx.ReadJSON(&input); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}
		text = input.Text
	}

	message, err := messages.Append(conversation, sender, recipient, text, attachments)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	gateway.DeliverMessage(message)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(message)
}

// saveUploadedAttachments streams the multipart files into the blob store,
// enforcing the count, size and MIME caps before anything is written.
func saveUploadedAttachments(ctx iris.Context) ([]models.Attachment, error) {
	form := ctx.Request().MultipartForm
	if form == nil {
		if err := ctx.Request().ParseMultipartForm(utils.MaxAttachmentSize); err != nil {
			return nil, services.ErrInvalidArgument
		}
		form = ctx.Request().MultipartForm
	}
	files := form.File["attachments"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > utils.MaxAttachmentsPerMessage {
		return nil, services.ErrInvalidArgument
	}

	attachments := make([]models.Attachment, 0, len(files))
	for _, header := range files {
		if header.Size > utils.MaxAttachmentSize {
			return nil, services.ErrInvalidArgument
		}
		mimeType := header.Header.Get("Content-Type")
		if !utils.AllowedAttachmentType(mimeType) {
			return nil, services.ErrInvalidArgument
		}

		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		objectName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), utils.GenerateShortToken(8), filepath.Ext(header.Filename))
		path, err := storage.SaveAttachment(ctx, objectName, file, header.Size, mimeType)
		file.Close()
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, models.Attachment{
			FileName:     objectName,
			OriginalName: header.Filename,
			StoragePath:  path,
			MimeType:     mimeType,
			Size:         header.Size,
		})
	}
	return attachments, nil
}

// MarkConversationRead stamps every unread message addressed to the caller
// and notifies each sender's rooms. Idempotent; a second call is a no-op.
func MarkConversationRead(ctx iris.Context) {
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

	bySender, err := messages.MarkRead(conversation.ID, claims.ID, time.Now())
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	gateway.NotifyRead(conversation, claims.ID, bySender)

	read := 0
	for _, ids := range bySender {
		read += len(ids)
	}
	ctx.JSON(iris.Map{"success": true, "read": read})
}

// SearchConversationMessages runs a case-insensitive text search within one
// conversation. An empty query returns an empty list.
func SearchConversationMessages(ctx iris.Context) {
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

	results, err := messages.Search(conversation.ID, ctx.URLParam("q"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"messages": results})
}

// ExportConversation returns the full transcript for external rendering.
func ExportConversation(ctx iris.Context) {
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

	transcript, err := messages.ExportAll(conversation.ID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(transcript)
}
