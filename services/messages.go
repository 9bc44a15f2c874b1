package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"

	"gorm.io/datatypes"
)

const (
	MaxMessageTextLen  = 2000
	DefaultMessagePage = 200
	searchLimit        = 200
)

// MessageService is the append-mostly message log. Ordering within a
// conversation comes solely from server-assigned ids and timestamps; clients
// never supply sequence numbers.
type MessageService struct {
	conversations *ConversationService
}

func NewMessageService(conversations *ConversationService) *MessageService {
	return &MessageService{conversations: conversations}
}

// Preview is the denormalized conversation summary text for a message.
func Preview(text string, attachmentCount int) string {
	if text != "" {
		return text
	}
	return fmt.Sprintf("[%d attachment(s)]", attachmentCount)
}

// ValidateMessageInput enforces the append preconditions shared by both
// transports: some content must exist and text is capped at 2000 characters.
// The cap counts runes, not bytes, so multibyte text gets the full 2000.
func ValidateMessageInput(text string, attachmentCount int) error {
	if strings.TrimSpace(text) == "" && attachmentCount == 0 {
		return ErrInvalidArgument
	}
	if utf8.RuneCountInString(text) > MaxMessageTextLen {
		return ErrInvalidArgument
	}
	return nil
}

// Append persists a message and refreshes the conversation summary. The
// returned message carries the server-assigned id and timestamp that establish
// conversation order.
func (s *MessageService) Append(conversation *models.Conversation, from, to *models.User, text string, attachments []models.Attachment) (*models.Message, error) {
	if err := ValidateMessageInput(text, len(attachments)); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(attachments)
	if err != nil {
		return nil, err
	}
	if attachments == nil {
		encoded = []byte("[]")
	}

	message := models.Message{
		ConversationID: conversation.ID,
		FromUserID:     from.ID,
		ToUserID:       to.ID,
		FromEmail:      strings.ToLower(from.Email),
		ToEmail:        strings.ToLower(to.Email),
		Text:           text,
		Attachments:    datatypes.JSON(encoded),
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		return nil, err
	}

	// The message is durable at this point; a stale conversation summary is
	// not a send failure.
	if err := s.conversations.Touch(conversation.ID, message.CreatedAt, Preview(text, len(attachments))); err != nil {
		log.Printf("messages: summary refresh failed for conversation %d: %v", conversation.ID, err)
	}
	return &message, nil
}

// ListPage returns one page of messages in ascending chronological order.
// The fetch runs newest-first below the cursor and is reversed, so the page is
// a contiguous window ending at the cursor (or at "now" when cursor is zero).
func (s *MessageService) ListPage(conversationID, beforeCursor uint, limit int) ([]models.Message, uint, error) {
	if limit <= 0 || limit > DefaultMessagePage {
		limit = DefaultMessagePage
	}

	q := storage.DB.Where("conversation_id = ?", conversationID)
	if beforeCursor > 0 {
		q = q.Where("id < ?", beforeCursor)
	}
	var messages []models.Message
	if err := q.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	var nextCursor uint
	if len(messages) > 0 {
		nextCursor = messages[0].ID
	}
	return messages, nextCursor, nil
}

// MarkRead stamps readAt on every unread message addressed to the reader and
// returns the affected ids grouped by sender, so the transport can notify each
// sender's rooms individually. Already-read messages are never restamped,
// which makes the call idempotent.
func (s *MessageService) MarkRead(conversationID, readerID uint, at time.Time) (map[uint][]uint, error) {
	var unread []models.Message
	err := storage.DB.Select("id", "from_user_id").
		Where("conversation_id = ? AND to_user_id = ? AND read_at IS NULL", conversationID, readerID).
		Find(&unread).Error
	if err != nil {
		return nil, err
	}

	bySender := make(map[uint][]uint)
	ids := make([]uint, 0, len(unread))
	for _, m := range unread {
		bySender[m.FromUserID] = append(bySender[m.FromUserID], m.ID)
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return bySender, nil
	}

	err = storage.DB.Model(&models.Message{}).
		Where("id IN ? AND read_at IS NULL", ids).
		Update("read_at", at).Error
	if err != nil {
		return nil, err
	}
	return bySender, nil
}

// Search runs a case-insensitive substring match over message text, ascending,
// capped. An empty query is an empty result, not an error.
func (s *MessageService) Search(conversationID uint, query string) ([]models.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Message{}, nil
	}

	var messages []models.Message
	err := storage.DB.
		Where("conversation_id = ? AND text ILIKE ?", conversationID, "%"+query+"%").
		Order("id ASC").
		Limit(searchLimit).
		Find(&messages).Error
	return messages, err
}

// Transcript is the full export of a conversation for external rendering.
type Transcript struct {
	ParticipantEmails []string         `json:"participantEmails"`
	Messages          []models.Message `json:"messages"`
}

// ExportAll returns every message in ascending order plus the participant
// emails. Rendering the transcript is the caller's concern.
func (s *MessageService) ExportAll(conversationID uint) (*Transcript, error) {
	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		return nil, err
	}

	var messages []models.Message
	err := storage.DB.Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return &Transcript{
		ParticipantEmails: []string{conversation.UserAEmail, conversation.UserBEmail},
		Messages:          messages,
	}, nil
}
