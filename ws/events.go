package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/services"
)

// Inbound event types.
const (
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventMarkRead    = "mark_read"
)

// Outbound event types.
const (
	EventAck            = "ack"
	EventReceiveMessage = "receive_message"
	EventMessagesRead   = "messages_read"
	EventPresence       = "presence"
)

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type sendMessagePayload struct {
	ToUserID uint   `json:"toUserID"`
	ToEmail  string `json:"toEmail"`
	Text     string `json:"text"`
}

type typingPayload struct {
	ToUserID uint   `json:"toUserID"`
	ToEmail  string `json:"toEmail"`
}

type markReadPayload struct {
	ConversationID uint `json:"conversationID"`
}

type ackPayload struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Message *models.Message `json:"message,omitempty"`
}

type presencePayload struct {
	Email  string `json:"email"`
	Online bool   `json:"online"`
}

type messagesReadPayload struct {
	ConversationID uint   `json:"conversationID"`
	ReaderID       uint   `json:"readerID"`
	MessageIDs     []uint `json:"messageIDs"`
}

// Gateway wires websocket events to the same services the REST handlers use.
// Every inbound event runs in its own goroutine so a slow database call never
// stalls the connection's read loop.
type Gateway struct {
	hub           *Hub
	requests      *services.ChatRequestService
	conversations *services.ConversationService
	messages      *services.MessageService
	notifications *services.NotificationService
}

func NewGateway(hub *Hub) *Gateway {
	conversations := services.NewConversationService()
	return &Gateway{
		hub:           hub,
		requests:      services.NewChatRequestService(),
		conversations: conversations,
		messages:      services.NewMessageService(conversations),
		notifications: services.NewNotificationService(),
	}
}

func (g *Gateway) handle(ctx context.Context, c *Client, ev inboundEvent) {
	switch ev.Type {
	case EventSendMessage:
		g.handleSendMessage(ctx, c, ev.Data)
	case EventTyping:
		g.handleTyping(ctx, c, ev.Data)
	case EventMarkRead:
		g.handleMarkRead(c, ev.Data)
	default:
		g.ack(c, ackPayload{OK: false, Error: "unknown_event"})
	}
}

func (g *Gateway) ack(c *Client, payload ackPayload) {
	g.hub.Push(c, Event{Type: EventAck, Data: payload})
}

// resolveRecipient fills in whichever identifier side the payload omitted.
func resolveRecipient(toUserID uint, toEmail string) (*models.User, error) {
	if toUserID > 0 {
		return services.FindUserByID(toUserID)
	}
	if toEmail != "" {
		return services.FindUserByEmail(toEmail)
	}
	return nil, services.ErrInvalidArgument
}

func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, raw json.RawMessage) {
	if c.UserID == 0 {
		g.ack(c, ackPayload{OK: false, Error: "unauthorized"})
		return
	}

	var payload sendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.ack(c, ackPayload{OK: false, Error: "invalidPayload"})
		return
	}
	if err := services.ValidateMessageInput(payload.Text, 0); err != nil {
		g.ack(c, ackPayload{OK: false, Error: "invalidPayload"})
		return
	}

	recipient, err := resolveRecipient(payload.ToUserID, payload.ToEmail)
	if err != nil {
		g.ack(c, ackPayload{OK: false, Error: "recipientNotFound"})
		return
	}
	if recipient.ID == c.UserID {
		g.ack(c, ackPayload{OK: false, Error: "invalidPayload"})
		return
	}

	decision, err := services.CanSend(g.requests, c.Role, c.UserID, recipient.Role, recipient.ID)
	if err != nil {
		g.ack(c, ackPayload{OK: false, Error: "internal"})
		return
	}
	if decision == services.RequiresApproval {
		g.ack(c, ackPayload{OK: false, Error: "requiresApproval"})
		return
	}

	sender, err := services.FindUserByID(c.UserID)
	if err != nil {
		g.ack(c, ackPayload{OK: false, Error: "internal"})
		return
	}

	conversation, err := g.conversations.Resolve(sender, recipient)
	if err != nil {
		g.ack(c, ackPayload{OK: false, Error: "internal"})
		return
	}

	message, err := g.messages.Append(conversation, sender, recipient, payload.Text, nil)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			g.ack(c, ackPayload{OK: false, Error: "invalidPayload"})
		} else {
			log.Printf("ws: message append failed: %v", err)
			g.ack(c, ackPayload{OK: false, Error: "internal"})
		}
		return
	}

	g.DeliverMessage(message)
	g.ack(c, ackPayload{OK: true, Message: message})
}

// DeliverMessage broadcasts a persisted message to the recipient's rooms and
// falls back to a push notification when no connection holds either room.
// Shared with the REST send path.
func (g *Gateway) DeliverMessage(message *models.Message) {
	userRoom := UserRoom(message.ToUserID)
	emailRoom := EmailRoom(message.ToEmail)

	ev := Event{Type: EventReceiveMessage, Data: message}
	g.hub.Broadcast(userRoom, ev)
	g.hub.Broadcast(emailRoom, ev)

	if !g.hub.Online(userRoom) && !g.hub.Online(emailRoom) {
		sender := message.FromEmail
		if u, err := services.FindUserByID(message.FromUserID); err == nil {
			sender = u.FirstName + " " + u.LastName
		}
		preview := services.Preview(message.Text, len(message.AttachmentList()))
		go g.notifications.SendMessageNotification(message.ToUserID, message.ConversationID, message.FromUserID, sender, preview)
	}
}

func (g *Gateway) handleTyping(ctx context.Context, c *Client, raw json.RawMessage) {
	if c.UserID == 0 {
		return
	}

	var payload typingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	recipient, err := resolveRecipient(payload.ToUserID, payload.ToEmail)
	if err != nil {
		return
	}

	// Ephemeral and best effort: no gate check, nothing persisted.
	ev := Event{Type: EventTyping, Data: map[string]interface{}{
		"fromUserID": c.UserID,
		"fromEmail":  c.Email,
	}}
	g.hub.Broadcast(UserRoom(recipient.ID), ev)
	g.hub.Broadcast(EmailRoom(recipient.Email), ev)

	// Mirror into the redis typing key so polling clients see it too.
	if conversation, err := g.conversations.FindByPair(c.UserID, recipient.ID); err == nil {
		services.SetTyping(ctx, conversation.ID, c.UserID)
	}
}

func (g *Gateway) handleMarkRead(c *Client, raw json.RawMessage) {
	if c.UserID == 0 {
		g.ack(c, ackPayload{OK: false, Error: "unauthorized"})
		return
	}

	var payload markReadPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		g.ack(c, ackPayload{OK: false, Error: "invalidPayload"})
		return
	}

	conversation, err := g.conversations.GetForUser(payload.ConversationID, c.UserID)
	if err != nil {
		g.ack(c, ackPayload{OK: false, Error: "notFound"})
		return
	}

	bySender, err := g.messages.MarkRead(conversation.ID, c.UserID, time.Now())
	if err != nil {
		g.ack(c, ackPayload{OK: false, Error: "internal"})
		return
	}

	g.NotifyRead(conversation, c.UserID, bySender)
	g.ack(c, ackPayload{OK: true})
}

// NotifyRead emits a messages_read event to each affected sender's rooms.
// Shared with the REST mark-read path.
func (g *Gateway) NotifyRead(conversation *models.Conversation, readerID uint, bySender map[uint][]uint) {
	for senderID, messageIDs := range bySender {
		ev := Event{Type: EventMessagesRead, Data: messagesReadPayload{
			ConversationID: conversation.ID,
			ReaderID:       readerID,
			MessageIDs:     messageIDs,
		}}
		g.hub.Broadcast(UserRoom(senderID), ev)
		if peerID, peerEmail := conversation.PeerOf(readerID); peerID == senderID {
			g.hub.Broadcast(EmailRoom(peerEmail), ev)
		}
	}
}
