package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultConversationLimit = 100

// ConversationService resolves participant pairs to their single canonical
// conversation and maintains the denormalized last-message summary.
type ConversationService struct{}

func NewConversationService() *ConversationService {
	return &ConversationService{}
}

// PairKey canonicalizes an unordered user pair into the unique lookup key.
// Both Resolve callers and tests rely on PairKey(a,b) == PairKey(b,a).
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Resolve finds or creates the conversation for the pair. Creation goes
// through an insert-on-conflict-do-nothing against the unique pair key, so
// two concurrent first messages converge on one row instead of racing a
// find-then-create.
func (s *ConversationService) Resolve(a, b *models.User) (*models.Conversation, error) {
	first, second := a, b
	if first.ID > second.ID {
		first, second = second, first
	}

	conversation := models.Conversation{
		PairKey:    PairKey(a.ID, b.ID),
		UserAID:    first.ID,
		UserBID:    second.ID,
		UserAEmail: first.Email,
		UserBEmail: second.Email,
		// epoch sentinel: conversations without messages sort last
		LastMessageAt:  time.Unix(0, 0),
		PinnedMessages: datatypes.JSON("[]"),
	}
	err := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&conversation).Error
	if err != nil {
		return nil, err
	}

	var current models.Conversation
	if err := storage.DB.Where("pair_key = ?", conversation.PairKey).First(&current).Error; err != nil {
		return nil, err
	}
	return &current, nil
}

// FindByPair looks up the pair's conversation without creating one.
func (s *ConversationService) FindByPair(a, b uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := storage.DB.Where("pair_key = ?", PairKey(a, b)).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// GetForUser loads a conversation the user participates in. A conversation
// that exists but does not include the user reports not found, same as one
// that does not exist at all.
func (s *ConversationService) GetForUser(conversationID, userID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, ErrNotFound
	}
	return &conversation, nil
}

// ListFor returns the user's conversations, most recent message first.
func (s *ConversationService) ListFor(userID uint, limit int) ([]models.Conversation, error) {
	if limit <= 0 || limit > defaultConversationLimit {
		limit = defaultConversationLimit
	}
	var conversations []models.Conversation
	err := storage.DB.
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

// Touch refreshes the conversation's last-message summary after an append.
// The preview cap cuts on a rune boundary so the stored text stays valid UTF-8.
func (s *ConversationService) Touch(conversationID uint, at time.Time, preview string) error {
	if runes := []rune(preview); len(runes) > 256 {
		preview = string(runes[:256])
	}
	return storage.DB.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_at":   at,
			"last_message_text": preview,
		}).Error
}

// TogglePin pins or unpins a message, mirroring the flag onto the message row
// and the id into the conversation's pinned set.
func (s *ConversationService) TogglePin(conversationID, messageID uint, pinned bool) (*models.Message, error) {
	var message models.Message
	err := storage.DB.Where("id = ? AND conversation_id = ?", messageID, conversationID).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).Where("id = ?", messageID).Update("pinned", pinned).Error; err != nil {
			return err
		}
		// The pinned set is a projection of the per-message flags. Rebuilding
		// it from them inside the transaction means two toggles on different
		// messages cannot drop each other's ids.
		pinnedIDs := []uint{}
		err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND pinned = ?", conversationID, true).
			Order("id ASC").
			Pluck("id", &pinnedIDs).Error
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(pinnedIDs)
		if err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("pinned_messages", datatypes.JSON(encoded)).Error
	})
	if err != nil {
		return nil, err
	}

	message.Pinned = pinned
	return &message, nil
}
