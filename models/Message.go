package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attachment describes one stored file on a message. StoragePath addresses the
// blob store; the server never interprets file contents.
type Attachment struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	StoragePath  string `json:"storagePath"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// Message is immutable after creation except for ReadAt and Pinned. Emails are
// denormalized from the users so real-time routing can address email rooms
// without a lookup.
type Message struct {
	gorm.Model
	ConversationID uint           `json:"conversationID" gorm:"not null;index"`
	FromUserID     uint           `json:"fromUserID" gorm:"not null;index"`
	ToUserID       uint           `json:"toUserID" gorm:"not null;index"`
	FromEmail      string         `json:"fromEmail" gorm:"size:256"`
	ToEmail        string         `json:"toEmail" gorm:"size:256"`
	Text           string         `json:"text" gorm:"type:text"`
	Attachments    datatypes.JSON `json:"attachments"`
	ReadAt         *time.Time     `json:"readAt"`
	Pinned         bool           `json:"pinned" gorm:"default:false"`
}

// AttachmentList decodes the attachments JSON column.
func (m *Message) AttachmentList() []Attachment {
	var list []Attachment
	if m.Attachments != nil {
		_ = json.Unmarshal(m.Attachments, &list)
	}
	return list
}

// Custom JSON marshaling so attachments render as an array, never raw JSON bytes
func (m *Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	aux := &struct {
		Attachments []Attachment `json:"attachments"`
		*Alias
	}{
		Attachments: []Attachment{},
		Alias:       (*Alias)(m),
	}

	if m.Attachments != nil {
		var list []Attachment
		if err := json.Unmarshal(m.Attachments, &list); err == nil {
			aux.Attachments = list
		}
	}

	return json.Marshal(aux)
}
