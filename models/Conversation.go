package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation is the canonical 2-party thread between one pair of users.
// UserA always holds the smaller user id so the pair key is order-independent;
// the unique index on PairKey is what makes concurrent find-or-create converge
// on a single row.
type Conversation struct {
	gorm.Model
	PairKey         string         `json:"-" gorm:"uniqueIndex;size:64;not null"`
	UserAID         uint           `json:"-" gorm:"not null;index"`
	UserBID         uint           `json:"-" gorm:"not null;index"`
	UserAEmail      string         `json:"-" gorm:"size:256"`
	UserBEmail      string         `json:"-" gorm:"size:256"`
	LastMessageAt   time.Time      `json:"lastMessageAt"`
	LastMessageText string         `json:"lastMessageText" gorm:"size:256"`
	PinnedMessages  datatypes.JSON `json:"pinnedMessages"`
}

// HasParticipant reports whether the given user is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// PeerOf returns the id and email of the other party.
func (c *Conversation) PeerOf(userID uint) (uint, string) {
	if c.UserAID == userID {
		return c.UserBID, c.UserBEmail
	}
	return c.UserAID, c.UserAEmail
}

// Custom JSON marshaling: expose the pair as parallel participant arrays and
// the pinned id set as a plain array.
func (c *Conversation) MarshalJSON() ([]byte, error) {
	type Alias Conversation
	aux := &struct {
		Participants      []uint   `json:"participants"`
		ParticipantEmails []string `json:"participantEmails"`
		PinnedMessages    []uint   `json:"pinnedMessages"`
		*Alias
	}{
		Participants:      []uint{c.UserAID, c.UserBID},
		ParticipantEmails: []string{c.UserAEmail, c.UserBEmail},
		PinnedMessages:    []uint{},
		Alias:             (*Alias)(c),
	}

	if c.PinnedMessages != nil {
		var pinned []uint
		if err := json.Unmarshal(c.PinnedMessages, &pinned); err == nil {
			aux.PinnedMessages = pinned
		}
	}

	return json.Marshal(aux)
}
